package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"msana/internal/core/apperror"
	"msana/internal/domain/reports"
)

// ReportHandler handles report endpoints.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Sales handles GET /reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, err := h.dateRange(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	buckets, err := h.service.SalesByDay(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, buckets)
}

// TopProducts handles GET /reports/top-products
func (h *ReportHandler) TopProducts(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, err := h.dateRange(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	limit := h.ParseIntQuery(c, "limit", 20)

	items, err := h.service.TopProducts(ctx, from, to, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// Inventory handles GET /reports/inventory
func (h *ReportHandler) Inventory(c *gin.Context) {
	ctx := c.Request.Context()

	valuation, err := h.service.InventoryValuation(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, valuation)
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	dashboard, err := h.service.Dashboard(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dashboard)
}

// dateRange parses from/to query dates. The range defaults to the last 30
// days; to is exclusive at day granularity.
func (h *ReportHandler) dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, apperror.NewValidation("invalid from date").WithDetail("from", raw)
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, apperror.NewValidation("invalid to date").WithDetail("to", raw)
		}
		// Make the bound inclusive of the named day.
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")

	reports.GET("/sales", h.Sales)
	reports.GET("/top-products", h.TopProducts)
	reports.GET("/inventory", h.Inventory)
	reports.GET("/dashboard", h.Dashboard)
}
