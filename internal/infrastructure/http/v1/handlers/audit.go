package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"msana/internal/core/id"
	"msana/internal/domain/audit"
	"msana/internal/infrastructure/http/v1/dto"
)

// AuditHandler handles audit trail endpoints. Routes are admin-only; the
// guard is applied at registration.
type AuditHandler struct {
	*BaseHandler
	repo audit.Repository
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, repo audit.Repository) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		repo:        repo,
	}
}

// List handles GET /audit-logs
func (h *AuditHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := audit.ListFilter{
		ListFilter:   q.ToFilter(),
		Action:       audit.Action(c.Query("action")),
		ResourceType: audit.ResourceType(c.Query("resourceType")),
	}
	if raw := c.Query("userId"); raw != "" {
		if userID, err := id.Parse(raw); err == nil {
			filter.UserID = &userID
		}
	}
	if raw := c.Query("resourceId"); raw != "" {
		if resourceID, err := id.Parse(raw); err == nil {
			filter.ResourceID = &resourceID
		}
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		filter.From = &from
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		filter.To = &to
	}

	result, err := h.repo.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Stats handles GET /audit-logs/stats
func (h *AuditHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var from, to *time.Time
	if f, ok := parseDateQuery(c, "from"); ok {
		from = &f
	}
	if t, ok := parseDateQuery(c, "to"); ok {
		to = &t
	}

	counts, err := h.repo.CountByAction(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, counts)
}

// RegisterRoutes registers audit routes.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit-logs", h.List)
	rg.GET("/audit-logs/stats", h.Stats)
}

func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
