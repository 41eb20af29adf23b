package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
)

// LinehaulHandler handles consolidated freight endpoints
type LinehaulHandler struct {
	BaseHandler
	linehaulService *fulfillmentapp.LinehaulService
}

// NewLinehaulHandler creates a new LinehaulHandler
func NewLinehaulHandler(linehaulService *fulfillmentapp.LinehaulService) *LinehaulHandler {
	return &LinehaulHandler{linehaulService: linehaulService}
}

// Create registers a new linehaul shipment
func (h *LinehaulHandler) Create(c *gin.Context) {
	var req fulfillmentapp.CreateLinehaulRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.linehaulService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByReference returns a linehaul shipment by its reference
func (h *LinehaulHandler) GetByReference(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		h.BadRequest(c, "Reference is required")
		return
	}

	resp, err := h.linehaulService.GetByReference(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateWeight updates the chargeable weight and recomputes the fee
func (h *LinehaulHandler) UpdateWeight(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid linehaul ID")
		return
	}

	var req fulfillmentapp.UpdateLinehaulWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.linehaulService.UpdateWeight(c.Request.Context(), uri.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Sync refreshes the linehaul record from the provider
func (h *LinehaulHandler) Sync(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid linehaul ID")
		return
	}

	resp, err := h.linehaulService.SyncFromProvider(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers the linehaul admin routes
func (h *LinehaulHandler) RegisterRoutes(rg *gin.RouterGroup) {
	linehauls := rg.Group("/linehauls")
	{
		linehauls.POST("", h.Create)
		linehauls.GET("/reference/:reference", h.GetByReference)
		linehauls.PUT("/:id/weight", h.UpdateWeight)
		linehauls.POST("/:id/sync", h.Sync)
	}
}
