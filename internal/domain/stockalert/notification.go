package stockalert

import (
	"context"
	"time"

	"msana/internal/core/id"
)

// DeliveryStatus is the outcome of one alert dispatch.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliveryPending DeliveryStatus = "pending"
)

// NotificationLog records one dispatch attempt to one recipient.
type NotificationLog struct {
	ID        id.ID          `db:"id" json:"id"`
	Message   string         `db:"message" json:"message"`
	ProductID *id.ID         `db:"product_id" json:"productId,omitempty"`
	Type      Kind           `db:"type" json:"type"`
	Status    DeliveryStatus `db:"status" json:"status"`
	ChatID    string         `db:"chat_id" json:"chatId,omitempty"`
	ErrorMsg  string         `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// NotificationRepository persists dispatch outcomes.
type NotificationRepository interface {
	Create(ctx context.Context, entry *NotificationLog) error
}
