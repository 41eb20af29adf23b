package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
)

// Maximum tracking batch payload size
const maxTrackingBatchSize = 1 << 20

// FulfillmentHandler handles admin fulfillment endpoints: dispatching orders
// to the provider and reconciling shipment tracking.
type FulfillmentHandler struct {
	BaseHandler
	dispatchService *fulfillmentapp.DispatchService
	trackingService *fulfillmentapp.TrackingService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(
	dispatchService *fulfillmentapp.DispatchService,
	trackingService *fulfillmentapp.TrackingService,
) *FulfillmentHandler {
	return &FulfillmentHandler{
		dispatchService: dispatchService,
		trackingService: trackingService,
	}
}

// DispatchRequest carries optional dispatch overrides
type DispatchRequest struct {
	LogisticName    string `json:"logistic_name"`
	FromCountryCode string `json:"from_country_code"`
	Remark          string `json:"remark"`
}

func (r DispatchRequest) toOptions() fulfillmentapp.DispatchOptions {
	return fulfillmentapp.DispatchOptions{
		LogisticName:    r.LogisticName,
		FromCountryCode: r.FromCountryCode,
		Remark:          r.Remark,
	}
}

// Dispatch sends one paid order to the fulfillment provider
func (h *FulfillmentHandler) Dispatch(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req DispatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	resp, err := h.dispatchService.DispatchOrder(c.Request.Context(), uri.ID, req.toOptions())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DispatchAwaitingRequest controls the dispatch sweep
type DispatchAwaitingRequest struct {
	Limit int `json:"limit"`
	DispatchRequest
}

// DispatchAwaiting sweeps paid orders still awaiting fulfillment
func (h *FulfillmentHandler) DispatchAwaiting(c *gin.Context) {
	var req DispatchAwaitingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	dispatched, err := h.dispatchService.DispatchAwaiting(c.Request.Context(), req.Limit, req.toOptions())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"dispatched": dispatched})
}

// IngestTracking applies a raw JSON batch of tracking updates. The payload
// is validated as a whole before any write.
func (h *FulfillmentHandler) IngestTracking(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTrackingBatchSize))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.trackingService.IngestBatch(c.Request.Context(), raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PollTrackingRequest controls the provider poll
type PollTrackingRequest struct {
	Limit int `json:"limit"`
}

// PollTracking refreshes active shipments from the provider
func (h *FulfillmentHandler) PollTracking(c *gin.Context) {
	var req PollTrackingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	refreshed, err := h.trackingService.PollProvider(c.Request.Context(), req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"refreshed": refreshed})
}

// GetShipment returns one shipment with its tracking log
func (h *FulfillmentHandler) GetShipment(c *gin.Context) {
	trackingNumber := c.Param("trackingNumber")
	if trackingNumber == "" {
		h.BadRequest(c, "Tracking number is required")
		return
	}

	resp, err := h.trackingService.GetShipment(c.Request.Context(), trackingNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SetExceptionRequest classifies a shipment problem
type SetExceptionRequest struct {
	ExceptionCode string `json:"exception_code"`
}

// SetException sets or clears a shipment's exception code
func (h *FulfillmentHandler) SetException(c *gin.Context) {
	trackingNumber := c.Param("trackingNumber")
	if trackingNumber == "" {
		h.BadRequest(c, "Tracking number is required")
		return
	}

	var req SetExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.trackingService.SetException(c.Request.Context(), trackingNumber, order.ExceptionCode(req.ExceptionCode))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers the fulfillment admin routes
func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fulfillment := rg.Group("/fulfillment")
	{
		fulfillment.POST("/orders/:id/dispatch", h.Dispatch)
		fulfillment.POST("/dispatch-awaiting", h.DispatchAwaiting)
		fulfillment.POST("/tracking/ingest", h.IngestTracking)
		fulfillment.POST("/tracking/poll", h.PollTracking)
		fulfillment.GET("/shipments/:trackingNumber", h.GetShipment)
		fulfillment.PUT("/shipments/:trackingNumber/exception", h.SetException)
	}
}
