package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"msana/internal/domain/stockalert"
)

const notificationTable = "sys_notification_log"

var _ stockalert.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implements stockalert.NotificationRepository.
type NotificationRepo struct {
	tx *TxManager
}

// NewNotificationRepo creates a notification log repository.
func NewNotificationRepo(tx *TxManager) *NotificationRepo {
	return &NotificationRepo{tx: tx}
}

// Create persists one delivery attempt.
func (r *NotificationRepo) Create(ctx context.Context, entry *stockalert.NotificationLog) error {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert(notificationTable).
		SetMap(StructToMap(entry))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}
