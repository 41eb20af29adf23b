package dropship

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/dropship"
)

// cjEnvelope is the provider's response wrapper. Every endpoint returns it;
// Data holds the endpoint-specific payload.
type cjEnvelope struct {
	Result    bool            `json:"result"`
	Code      json.Number     `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
}

// cjCreateOrderProduct is one product line in an order-create request
type cjCreateOrderProduct struct {
	VID      string `json:"vid"`
	Quantity int    `json:"quantity"`
}

// cjCreateOrderRequest is the body for createOrderV2 and createOrderV3.
// Both interface versions accept the same shape.
type cjCreateOrderRequest struct {
	OrderNumber     string                 `json:"orderNumber"`
	ShippingZip     string                 `json:"shippingZip,omitempty"`
	ShippingCountry string                 `json:"shippingCountryCode"`
	ShippingProvince string                `json:"shippingProvince,omitempty"`
	ShippingCity    string                 `json:"shippingCity"`
	ShippingAddress string                 `json:"shippingAddress"`
	ShippingCustomerName string            `json:"shippingCustomerName"`
	ShippingPhone   string                 `json:"shippingPhone,omitempty"`
	LogisticName    string                 `json:"logisticName,omitempty"`
	FromCountryCode string                 `json:"fromCountryCode,omitempty"`
	Remark          string                 `json:"remark,omitempty"`
	Products        []cjCreateOrderProduct `json:"products"`
}

// newCJCreateOrderRequest builds the wire payload from a dispatch request.
// Both v2 and v3 receive this identical payload.
func newCJCreateOrderRequest(req *dropship.DispatchRequest) *cjCreateOrderRequest {
	products := make([]cjCreateOrderProduct, len(req.Items))
	for i, item := range req.Items {
		products[i] = cjCreateOrderProduct{
			VID:      item.VariantID,
			Quantity: item.Quantity,
		}
	}
	return &cjCreateOrderRequest{
		OrderNumber:          req.OrderNumber,
		ShippingZip:          req.ShippingZip,
		ShippingCountry:      req.ShippingCountryCode,
		ShippingProvince:     req.ShippingProvince,
		ShippingCity:         req.ShippingCity,
		ShippingAddress:      req.ShippingAddress,
		ShippingCustomerName: req.ConsigneeName,
		ShippingPhone:        req.ConsigneePhone,
		LogisticName:         req.LogisticName,
		FromCountryCode:      req.FromCountryCode,
		Remark:               req.Remark,
		Products:             products,
	}
}

// cjCreateOrderData is the payload under data for order creation. All fields
// are read from the nested data object only; there is no alternate path.
type cjCreateOrderData struct {
	OrderID         string          `json:"orderId"`
	ShipmentOrderID string          `json:"shipmentOrderId"`
	OrderAmount     decimal.Decimal `json:"orderAmount"`
	PaymentStatus   string          `json:"paymentStatus"`
}

// toDispatchResult converts the creation payload into the domain result
func (d *cjCreateOrderData) toDispatchResult(interfaceVersion string) *dropship.DispatchResult {
	return &dropship.DispatchResult{
		ProviderOrderID:  d.OrderID,
		ShipmentOrderID:  d.ShipmentOrderID,
		AmountDue:        d.OrderAmount,
		PaymentPending:   d.PaymentStatus != "PAID",
		InterfaceVersion: interfaceVersion,
	}
}

// cjOrderDetailData is the payload under data for order queries
type cjOrderDetailData struct {
	OrderID        string          `json:"orderId"`
	OrderStatus    string          `json:"orderStatus"`
	OrderAmount    decimal.Decimal `json:"orderAmount"`
	PostageAmount  decimal.Decimal `json:"postageAmount"`
	StorageID      string          `json:"storageId"`
	TrackNumber    string          `json:"trackNumber"`
}

// toProviderOrderStatus converts the detail payload into the domain status.
// The raw payload is retained for snapshot storage.
func (d *cjOrderDetailData) toProviderOrderStatus(raw json.RawMessage) (*dropship.ProviderOrderStatus, error) {
	status := &dropship.ProviderOrderStatus{
		ProviderOrderID: d.OrderID,
		Status:          d.OrderStatus,
		OrderAmount:     d.OrderAmount,
		PostageAmount:   d.PostageAmount,
		StorageID:       d.StorageID,
		TrackingNumber:  d.TrackNumber,
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &status.Raw); err != nil {
			return nil, err
		}
	}
	return status, nil
}

// cjTrackPoint is one tracking entry in the provider's log
type cjTrackPoint struct {
	TrackingStatus string `json:"trackingStatus"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Date           string `json:"date"`
}

// cjTrackData is the payload under data for /logistics/track
type cjTrackData struct {
	TrackingNumber string         `json:"trackingNumber"`
	LogisticName   string         `json:"logisticName"`
	DeliveryStatus string         `json:"deliveryStatus"`
	TrackingList   []cjTrackPoint `json:"trackingList"`
}

// cjTrackTimeLayouts are the timestamp formats observed in tracking payloads
var cjTrackTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// toTrackingInfo converts the tracking payload into the domain structure.
// Entries with unparseable dates keep a zero OccurredAt rather than failing
// the whole batch.
func (d *cjTrackData) toTrackingInfo() *dropship.TrackingInfo {
	info := &dropship.TrackingInfo{
		TrackingNumber: d.TrackingNumber,
		Carrier:        d.LogisticName,
		DeliveryStatus: d.DeliveryStatus,
		Points:         make([]dropship.TrackPoint, 0, len(d.TrackingList)),
	}
	for _, p := range d.TrackingList {
		point := dropship.TrackPoint{
			StatusCode:  p.TrackingStatus,
			Description: p.Description,
			Location:    p.Location,
		}
		for _, layout := range cjTrackTimeLayouts {
			if t, err := time.Parse(layout, p.Date); err == nil {
				point.OccurredAt = t
				break
			}
		}
		info.Points = append(info.Points, point)
	}
	return info
}

// cjAccessTokenData is the payload under data for authentication
type cjAccessTokenData struct {
	AccessToken string `json:"accessToken"`
}

// cjDispute is one entry in the provider's dispute list
type cjDispute struct {
	DisputeID   string `json:"disputeId"`
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	CreateDate  string `json:"createDate"`
}

// cjDisputeListData is the payload under data for the dispute list endpoint
type cjDisputeListData struct {
	List  []cjDispute `json:"list"`
	Total int         `json:"total"`
}
