package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists the column names declared by a struct's "db" tags,
// recursing into embedded structs. Called once per repository at construction.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

type fieldPlan struct {
	index    int
	dbTag    string
	embedded bool
}

var planCache sync.Map // reflect.Type -> []fieldPlan

func planFor(t reflect.Type) []fieldPlan {
	if cached, ok := planCache.Load(t); ok {
		return cached.([]fieldPlan)
	}

	var plan []fieldPlan
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			plan = append(plan, fieldPlan{index: i, embedded: true})
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		plan = append(plan, fieldPlan{index: i, dbTag: tag})
	}

	planCache.Store(t, plan)
	return plan
}

// StructToMap converts a struct to a column->value map using "db" tags.
// Field layout is cached per type so repeated calls skip the tag walk.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	plan := planFor(rv.Type())
	res := make(map[string]any, len(plan))
	for _, fp := range plan {
		if fp.embedded {
			for k, val := range StructToMap(rv.Field(fp.index).Interface()) {
				res[k] = val
			}
			continue
		}
		res[fp.dbTag] = rv.Field(fp.index).Interface()
	}
	return res
}
