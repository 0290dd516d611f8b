package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"msana/internal/core/apperror"
	"msana/internal/domain/settings"
)

const settingsTable = "sys_settings"

// settingsRowID pins the singleton row.
const settingsRowID = 1

var _ settings.Repository = (*SettingsRepo)(nil)

// SettingsRepo implements settings.Repository over a single-row table.
type SettingsRepo struct {
	tx   *TxManager
	cols []string
}

// NewSettingsRepo creates a settings repository.
func NewSettingsRepo(tx *TxManager) *SettingsRepo {
	return &SettingsRepo{
		tx:   tx,
		cols: ExtractDBColumns[settings.Settings](),
	}
}

func (r *SettingsRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Get returns the settings row.
func (r *SettingsRepo) Get(ctx context.Context) (*settings.Settings, error) {
	q := r.builder().
		Select(r.cols...).
		From(settingsTable).
		Where(squirrel.Eq{"row_id": settingsRowID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	s := &settings.Settings{}
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("settings", settingsRowID)
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// Save upserts the settings row.
func (r *SettingsRepo) Save(ctx context.Context, s *settings.Settings) error {
	data := StructToMap(s)
	data["row_id"] = settingsRowID

	cols := make([]string, 0, len(data))
	values := make([]any, 0, len(data))
	for col, val := range data {
		cols = append(cols, col)
		values = append(values, val)
	}

	q := r.builder().
		Insert(settingsTable).
		Columns(cols...).
		Values(values...).
		Suffix("ON CONFLICT (row_id) DO UPDATE SET").
		SuffixExpr(upsertSet(data))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// upsertSet renders "col = EXCLUDED.col" pairs for every non-key column.
func upsertSet(data map[string]any) squirrel.Sqlizer {
	clause := ""
	for col := range data {
		if col == "row_id" {
			continue
		}
		if clause != "" {
			clause += ", "
		}
		clause += col + " = EXCLUDED." + col
	}
	return squirrel.Expr(clause)
}
