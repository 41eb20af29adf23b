package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/dropship/backend/internal/application/payment"
	"github.com/dropship/backend/internal/domain/payment"
	"github.com/dropship/backend/internal/interfaces/http/dto"
)

// Maximum webhook payload size (64KB - gateway webhooks are small)
const maxWebhookPayloadSize = 65536

// PaymentHandler handles checkout initiation and the Korapay webhook.
// The webhook endpoint is called by the gateway and is not authenticated
// beyond its HMAC signature.
type PaymentHandler struct {
	BaseHandler
	chargeService  *paymentapp.ChargeService
	webhookService *paymentapp.WebhookService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(chargeService *paymentapp.ChargeService, webhookService *paymentapp.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		chargeService:  chargeService,
		webhookService: webhookService,
	}
}

// KorapayWebhookResponse represents the response for the Korapay webhook
type KorapayWebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CreateCheckout initiates a hosted checkout charge for an order
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.chargeService.CreateCheckout(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// HandleKorapayWebhook receives and processes webhook events from Korapay.
// The raw body is needed for signature verification, so it is read before
// any JSON decoding.
func (h *PaymentHandler) HandleKorapayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, KorapayWebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, KorapayWebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("x-korapay-signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, KorapayWebhookResponse{
			Received: false,
			Message:  "Missing x-korapay-signature header",
		})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, KorapayWebhookResponse{
				Received: false,
				Message:  "Webhook signature verification failed",
			})
			return
		}
		if errors.Is(err, payment.ErrMalformedPayload) {
			c.JSON(http.StatusBadRequest, KorapayWebhookResponse{
				Received: false,
				Message:  "Malformed webhook payload",
			})
			return
		}

		// Transient failures get a 500 so the gateway redelivers. The
		// idempotency mark was already removed, so the retry is clean.
		c.JSON(http.StatusInternalServerError, KorapayWebhookResponse{
			Received: false,
			Message:  "Webhook processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, KorapayWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		Duplicate: result.Duplicate,
		Message:   "Webhook processed successfully",
	})
}

// RegisterRoutes registers the public payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/korapay", h.HandleKorapayWebhook)
	rg.POST("/orders/:id/checkout", h.CreateCheckout)
}
