// Package audit provides the audit trail: who did what, to which resource.
package audit

import (
	"context"
	"time"

	"msana/internal/core/id"
	"msana/internal/domain"
)

// Action identifies the audited operation.
type Action string

const (
	ActionUserCreated     Action = "USER_CREATED"
	ActionUserUpdated     Action = "USER_UPDATED"
	ActionUserDeleted     Action = "USER_DELETED"
	ActionInvoiceCreated  Action = "INVOICE_CREATED"
	ActionInvoiceUpdated  Action = "INVOICE_UPDATED"
	ActionInvoiceDeleted  Action = "INVOICE_DELETED"
	ActionProductCreated  Action = "PRODUCT_CREATED"
	ActionProductUpdated  Action = "PRODUCT_UPDATED"
	ActionProductDeleted  Action = "PRODUCT_DELETED"
	ActionSettingsUpdated Action = "SETTINGS_UPDATED"
	ActionLoginSuccess    Action = "LOGIN_SUCCESS"
	ActionLoginFailed     Action = "LOGIN_FAILED"
	ActionLogout          Action = "LOGOUT"
)

// ResourceType identifies the audited resource kind.
type ResourceType string

const (
	ResourceUser     ResourceType = "User"
	ResourceInvoice  ResourceType = "Invoice"
	ResourceProduct  ResourceType = "Product"
	ResourceSettings ResourceType = "Settings"
	ResourceAuth     ResourceType = "Auth"
)

// Entry is a single audit record.
type Entry struct {
	ID        id.ID  `db:"id" json:"id"`
	Action    Action `db:"action" json:"action"`
	UserID    id.ID  `db:"user_id" json:"userId"`
	UserName  string `db:"user_name" json:"userName"`
	UserEmail string `db:"user_email" json:"userEmail"`

	ResourceType ResourceType `db:"resource_type" json:"resourceType,omitempty"`
	ResourceID   *id.ID       `db:"resource_id" json:"resourceId,omitempty"`

	Details map[string]any `db:"-" json:"details,omitempty"`

	IPAddress string `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent string `db:"user_agent" json:"userAgent,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ListFilter narrows audit log queries.
type ListFilter struct {
	domain.ListFilter

	Action       Action
	UserID       *id.ID
	ResourceType ResourceType
	ResourceID   *id.ID
	From         *time.Time
	To           *time.Time
}

// ActionCount is an aggregation bucket for audit stats.
type ActionCount struct {
	Action Action `db:"action" json:"action"`
	Count  int64  `db:"count" json:"count"`
}

// Repository defines persistence operations for audit entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Entry], error)
	CountByAction(ctx context.Context, from, to *time.Time) ([]ActionCount, error)
}
