package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/order"
)

// CheckoutRequest represents a storefront checkout
type CheckoutRequest struct {
	CustomerID    *uuid.UUID          `json:"customer_id"`
	CustomerEmail string              `json:"customer_email" binding:"required,email"`
	Currency      string              `json:"currency" binding:"required,len=3"`
	Address       CheckoutAddress     `json:"address" binding:"required"`
	Items         []CheckoutItemInput `json:"items" binding:"required,min=1"`
}

// CheckoutAddress is the consignee address captured at checkout
type CheckoutAddress struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	CountryCode string `json:"country_code" binding:"required,len=2"`
	Province    string `json:"province"`
	City        string `json:"city" binding:"required"`
	Street      string `json:"street" binding:"required"`
	PostalCode  string `json:"postal_code"`
}

// CheckoutItemInput represents one purchased line in a checkout
type CheckoutItemInput struct {
	VariantID    string          `json:"variant_id" binding:"required"`
	ProductName  string          `json:"product_name" binding:"required,min=1,max=200"`
	ProviderCode string          `json:"provider_code"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
}

// RefundRequest represents a refund of a paid order
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required,min=1,max=500"`
}

// ItemResponse represents one order line
type ItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	VariantID         string          `json:"variant_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	FulfillmentStatus string          `json:"fulfillment_status"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerEmail     string          `json:"customer_email"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"payment_status"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	Currency          string          `json:"currency"`
	Address           CheckoutAddress `json:"address"`
	Items             []ItemResponse  `json:"items"`
	ProviderOrderID   string          `json:"provider_order_id,omitempty"`
	ProviderAmountDue decimal.Decimal `json:"provider_amount_due"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	RefundedAt        *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToOrderResponse maps a domain order to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ID:                item.ID,
			VariantID:         item.VariantID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			Amount:            item.Amount,
			FulfillmentStatus: string(item.FulfillmentStatus),
		})
	}

	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		GrandTotal:    o.GrandTotal,
		Currency:      o.Currency,
		Address: CheckoutAddress{
			Name:        o.ShippingAddr.Name,
			Phone:       o.ShippingAddr.Phone,
			Email:       o.ShippingAddr.Email,
			CountryCode: o.ShippingAddr.CountryCode,
			Province:    o.ShippingAddr.Province,
			City:        o.ShippingAddr.City,
			Street:      o.ShippingAddr.Street,
			PostalCode:  o.ShippingAddr.PostalCode,
		},
		Items:             items,
		ProviderOrderID:   o.ProviderOrderID,
		ProviderAmountDue: o.ProviderAmountDue,
		PaidAt:            o.PaidAt,
		RefundedAt:        o.RefundedAt,
		CreatedAt:         o.CreatedAt,
	}
}

// toDomainAddress maps the checkout address to the domain value
func (a CheckoutAddress) toDomainAddress() order.Address {
	return order.Address{
		Name:        a.Name,
		Phone:       a.Phone,
		Email:       a.Email,
		CountryCode: a.CountryCode,
		Province:    a.Province,
		City:        a.City,
		Street:      a.Street,
		PostalCode:  a.PostalCode,
	}
}
