package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

// providerTimeLayouts are the timestamp formats seen in CJ order payloads.
// Unparseable values are ignored rather than rejected: a bad date in a bulk
// payload must not block the rest of the merge.
var providerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LinehaulShipment is a consolidated freight record aggregating multiple
// order items before last-mile delivery. It snapshots provider fields from
// the raw CJ order payload alongside typed columns.
type LinehaulShipment struct {
	shared.BaseAggregateRoot
	Reference   string
	Origin      string
	Destination string

	// Fee inputs; TotalFee is recomputed whenever any of them change
	BaseFee   decimal.Decimal
	WeightKg  decimal.Decimal
	PerKgRate decimal.Decimal
	TotalFee  decimal.Decimal

	// Typed columns merged from the provider payload
	ProviderOrderID  string
	OrderAmount      decimal.Decimal
	PostageAmount    decimal.Decimal
	StorageID        string
	ProviderSnapshot json.RawMessage

	// First-write-wins: once set these are never overwritten by later merges
	DispatchedAt *time.Time
	ArrivedAt    *time.Time
}

// NewLinehaulShipment creates a new linehaul shipment record
func NewLinehaulShipment(reference, origin, destination string, baseFee, weightKg, perKgRate decimal.Decimal) (*LinehaulShipment, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Linehaul reference cannot be empty")
	}
	if baseFee.IsNegative() || weightKg.IsNegative() || perKgRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee inputs cannot be negative")
	}

	l := &LinehaulShipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		Origin:            origin,
		Destination:       destination,
		BaseFee:           baseFee,
		WeightKg:          weightKg,
		PerKgRate:         perKgRate,
		OrderAmount:       decimal.Zero,
		PostageAmount:     decimal.Zero,
	}
	l.recalculateTotalFee()

	return l, nil
}

// UpdateWeight updates the chargeable weight and recomputes the total fee
func (l *LinehaulShipment) UpdateWeight(weightKg decimal.Decimal) error {
	if weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	l.WeightKg = weightKg
	l.recalculateTotalFee()
	l.UpdatedAt = time.Now()
	return nil
}

// ApplyProviderOrder merges a raw CJ order payload into the typed columns
// and stores the full payload as a JSON snapshot. Date fields are parsed
// leniently (invalid values are skipped) and dispatched/arrived timestamps
// are first-write-wins.
func (l *LinehaulShipment) ApplyProviderOrder(payload map[string]any) error {
	if len(payload) == 0 {
		return shared.NewDomainError("EMPTY_PAYLOAD", "Provider payload cannot be empty")
	}

	if v, ok := payloadString(payload, "orderId"); ok {
		l.ProviderOrderID = v
	}
	if v, ok := payloadDecimal(payload, "orderAmount"); ok {
		l.OrderAmount = v
	}
	if v, ok := payloadDecimal(payload, "postageAmount"); ok {
		l.PostageAmount = v
	}
	if v, ok := payloadString(payload, "storageId"); ok {
		l.StorageID = v
	}

	if l.DispatchedAt == nil {
		if t, ok := payloadTime(payload, "dispatchedAt"); ok {
			l.DispatchedAt = &t
		}
	}
	if l.ArrivedAt == nil {
		if t, ok := payloadTime(payload, "arrivedAt"); ok {
			l.ArrivedAt = &t
		}
	}

	if raw, err := json.Marshal(payload); err == nil {
		l.ProviderSnapshot = raw
	}

	l.recalculateTotalFee()
	l.UpdatedAt = time.Now()

	return nil
}

func (l *LinehaulShipment) recalculateTotalFee() {
	l.TotalFee = l.BaseFee.Add(l.WeightKg.Mul(l.PerKgRate))
}

func payloadString(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func payloadDecimal(payload map[string]any, key string) (decimal.Decimal, bool) {
	v, ok := payload[key]
	if !ok {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d, true
		}
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func payloadTime(payload map[string]any, key string) (time.Time, bool) {
	s, ok := payloadString(payload, key)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range providerTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
