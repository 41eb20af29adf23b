package handler

import (
	"github.com/gin-gonic/gin"

	messagingapp "github.com/dropship/backend/internal/application/messaging"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
)

// TemplateHandler handles message template administration
type TemplateHandler struct {
	BaseHandler
	templateService *messagingapp.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *messagingapp.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create creates a new message template
func (h *TemplateHandler) Create(c *gin.Context) {
	var req messagingapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.templateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one template by ID
func (h *TemplateHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	resp, err := h.templateService.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns all templates
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, templates)
}

// SetActiveRequest toggles a template's active flag
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive activates or deactivates a template
func (h *TemplateHandler) SetActive(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.templateService.SetActive(c.Request.Context(), uri.ID, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a template
func (h *TemplateHandler) Delete(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), uri.ID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers the template admin routes
func (h *TemplateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	templates := rg.Group("/templates")
	{
		templates.POST("", h.Create)
		templates.GET("", h.List)
		templates.GET("/:id", h.Get)
		templates.PUT("/:id/active", h.SetActive)
		templates.DELETE("/:id", h.Delete)
	}
}
