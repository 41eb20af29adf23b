package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/payment"
	"github.com/dropship/backend/internal/domain/shared"
)

// CheckoutResponse carries the hosted checkout URL for an order
type CheckoutResponse struct {
	OrderNumber string `json:"order_number"`
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
}

// ChargeService initiates hosted checkout charges for unpaid orders
type ChargeService struct {
	gateway   payment.Gateway
	orderRepo order.Repository
	logger    *zap.Logger
}

// NewChargeService creates a new charge service
func NewChargeService(gateway payment.Gateway, orderRepo order.Repository, logger *zap.Logger) *ChargeService {
	return &ChargeService{
		gateway:   gateway,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// CreateCheckout initiates a charge for the order's grand total. Each call
// issues a fresh charge reference; the gateway treats abandoned checkouts as
// expired, so re-initiating is safe.
func (s *ChargeService) CreateCheckout(ctx context.Context, orderID string) (*CheckoutResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus == order.PaymentStatusPaid {
		return nil, shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}

	req := &payment.ChargeRequest{
		Reference:     fmt.Sprintf("%s-%s", o.OrderNumber, uuid.NewString()[:8]),
		OrderNumber:   o.OrderNumber,
		Amount:        o.GrandTotal,
		Currency:      o.Currency,
		CustomerName:  o.ShippingAddr.Name,
		CustomerEmail: o.CustomerEmail,
	}

	resp, err := s.gateway.InitCharge(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout charge initiated",
		zap.String("order_number", o.OrderNumber),
		zap.String("reference", resp.Reference),
	)

	return &CheckoutResponse{
		OrderNumber: o.OrderNumber,
		Reference:   resp.Reference,
		CheckoutURL: resp.CheckoutURL,
	}, nil
}
