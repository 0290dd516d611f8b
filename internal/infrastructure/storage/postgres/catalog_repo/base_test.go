package catalog_repo

import (
	"testing"

	"msana/internal/core/apperror"
)

func testRepo() *baseCatalogRepo[any] {
	return newBaseCatalogRepo[any](nil, "test_table", []string{"id", "name", "stock", "created_at"}, func() any { return nil })
}

func TestParseOrderBy(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to newest first", orderBy: "", want: "created_at DESC"},
		{name: "plain field is ascending", orderBy: "name", want: "name ASC"},
		{name: "dash prefix is descending", orderBy: "-stock", want: "stock DESC"},
		{name: "surrounding whitespace is tolerated", orderBy: "name ", want: "name ASC"},
		{name: "unknown column is rejected", orderBy: "password", wantErr: true},
		{name: "injection attempt is rejected", orderBy: "name; DROP TABLE test_table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseOrderBy(%q) expected error, got %q", tt.orderBy, got)
				}
				if _, ok := apperror.AsAppError(err); !ok {
					t.Errorf("expected AppError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy(%q) failed: %v", tt.orderBy, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderBy(%q) = %q, want %q", tt.orderBy, got, tt.want)
			}
		})
	}
}

func TestBaseSelect(t *testing.T) {
	repo := testRepo()

	sql, _, err := repo.baseSelect().ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	want := "SELECT id, name, stock, created_at FROM test_table"
	if sql != want {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", want, sql)
	}
}
