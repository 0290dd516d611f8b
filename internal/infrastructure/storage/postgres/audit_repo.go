package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"msana/internal/domain"
	"msana/internal/domain/audit"
)

const auditTable = "sys_audit_log"

// compressionAlgo marks how the details payload is stored.
type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// detailsCompressThreshold is the payload size above which details are stored
// zstd-compressed instead of as plain jsonb.
const detailsCompressThreshold = 10 * 1024

var _ audit.Repository = (*AuditRepo)(nil)

// auditRow is the storage shape of an audit entry. Details travel either as
// plain JSON or compressed, never both.
type auditRow struct {
	audit.Entry

	Details           json.RawMessage `db:"details"`
	DetailsCompressed []byte          `db:"details_compressed"`
	CompressionAlgo   compressionAlgo `db:"compression_algo"`
}

// AuditRepo implements audit.Repository.
type AuditRepo struct {
	tx      *TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	cols    []string
}

// NewAuditRepo creates an audit repository.
func NewAuditRepo(tx *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		tx:      tx,
		encoder: encoder,
		decoder: decoder,
		cols:    ExtractDBColumns[auditRow](),
	}, nil
}

func (r *AuditRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create persists an audit entry, compressing oversized detail payloads.
func (r *AuditRepo) Create(ctx context.Context, e *audit.Entry) error {
	row := auditRow{Entry: *e, CompressionAlgo: compressionNone}

	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		if len(raw) > detailsCompressThreshold {
			row.DetailsCompressed = r.encoder.EncodeAll(raw, nil)
			row.CompressionAlgo = compressionZstd
		} else {
			row.Details = raw
		}
	}

	q := r.builder().
		Insert(auditTable).
		SetMap(StructToMap(&row))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List retrieves audit entries with filtering and pagination, newest first.
func (r *AuditRepo) List(ctx context.Context, filter audit.ListFilter) (domain.ListResult[*audit.Entry], error) {
	filter.Normalize()
	result := domain.ListResult[*audit.Entry]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.cols...).
		From(auditTable)

	if filter.Action != "" {
		q = q.Where(squirrel.Eq{"action": filter.Action})
	}
	if filter.UserID != nil {
		q = q.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.ResourceType != "" {
		q = q.Where(squirrel.Eq{"resource_type": filter.ResourceType})
	}
	if filter.ResourceID != nil {
		q = q.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"user_name": pattern},
			squirrel.ILike{"user_email": pattern},
		})
	}

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []*auditRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list audit entries: %w", err)
	}

	result.Items = make([]*audit.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := r.toEntry(row)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, entry)
	}
	return result, nil
}

func (r *AuditRepo) toEntry(row *auditRow) (*audit.Entry, error) {
	entry := row.Entry

	raw := []byte(row.Details)
	if row.CompressionAlgo == compressionZstd {
		decoded, err := r.decoder.DecodeAll(row.DetailsCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress details: %w", err)
		}
		raw = decoded
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entry.Details); err != nil {
			return nil, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return &entry, nil
}

// CountByAction aggregates entry counts per action for the given window.
func (r *AuditRepo) CountByAction(ctx context.Context, from, to *time.Time) ([]audit.ActionCount, error) {
	q := r.builder().
		Select("action", "COUNT(*) AS count").
		From(auditTable).
		GroupBy("action").
		OrderBy("count DESC")

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"created_at": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var counts []audit.ActionCount
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &counts, sql, args...); err != nil {
		return nil, fmt.Errorf("count by action: %w", err)
	}
	return counts, nil
}
