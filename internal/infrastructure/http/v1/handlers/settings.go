package handlers

import (
	"github.com/gin-gonic/gin"

	"msana/internal/domain/auth"
	"msana/internal/domain/settings"
	"msana/internal/infrastructure/http/v1/middleware"
)

// SettingsHandler handles the business settings endpoints.
type SettingsHandler struct {
	*BaseHandler
	service *settings.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Get handles GET /settings
func (h *SettingsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	s, err := h.service.Get(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, s)
}

// Update handles PUT /settings
func (h *SettingsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var next settings.Settings
	if !h.BindJSON(c, &next) {
		return
	}

	updated, err := h.service.Update(ctx, &next)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// RegisterRoutes registers settings routes.
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.Get)
	rg.PUT("/settings", middleware.RequireRole(string(auth.RoleAdmin)), h.Update)
}
