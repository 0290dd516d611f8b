package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"msana/internal/core/id"
	"msana/internal/domain/auth"
	"msana/internal/domain/catalogs/product"
	"msana/internal/infrastructure/http/v1/dto"
	"msana/internal/infrastructure/http/v1/middleware"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := product.ListFilter{
		ListFilter: q.ToFilter(),
		LowStock:   c.Query("lowStock") == "true",
		Schedule:   product.Schedule(c.Query("schedule")),
		ActiveOnly: c.Query("includeInactive") != "true",
	}
	if raw := c.Query("supplierId"); raw != "" {
		supplierID, err := id.Parse(raw)
		if err == nil {
			filter.SupplierID = &supplierID
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(p)
	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustStock handles POST /products/:id/stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.AdjustStock(ctx, productID, req.Operation, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// LowStock handles GET /products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.LowStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// Expiring handles GET /products/expiring
func (h *ProductHandler) Expiring(c *gin.Context) {
	ctx := c.Request.Context()

	days := h.ParseIntQuery(c, "days", 90)

	items, err := h.service.Expiring(ctx, days)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// Import handles POST /products/import with a CSV body.
func (h *ProductHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		// Fall back to a raw CSV body when no multipart file is attached.
		result, impErr := h.service.BulkImportCSV(ctx, c.Request.Body)
		if impErr != nil {
			h.Error(c, impErr)
			return
		}
		h.OK(c, result)
		return
	}
	defer file.Close()

	result, err := h.service.BulkImportCSV(ctx, file)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")

	products.GET("", h.List)
	products.GET("/low-stock", h.LowStock)
	products.GET("/expiring", h.Expiring)
	products.GET("/:id", h.Get)
	products.POST("", h.Create)
	products.PUT("/:id", h.Update)
	products.POST("/:id/stock", h.AdjustStock)

	admin := middleware.RequireRole(string(auth.RoleAdmin))
	products.DELETE("/:id", admin, h.Delete)
	products.POST("/import", admin, h.Import)
}
