package dropship

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDispatchRequest() *DispatchRequest {
	return &DispatchRequest{
		OrderNumber:         "DS-2026-0001",
		ConsigneeName:       "Ada Obi",
		ConsigneePhone:      "+2348012345678",
		ShippingCountryCode: "NG",
		ShippingProvince:    "Lagos",
		ShippingCity:        "Lagos",
		ShippingAddress:     "12 Marina Road",
		ShippingZip:         "100001",
		FromCountryCode:     "CN",
		Items: []DispatchItem{
			{VariantID: "VID-1", Quantity: 2},
		},
	}
}

func TestDispatchRequest_Validate(t *testing.T) {
	require.NoError(t, validDispatchRequest().Validate())
}

func TestDispatchRequest_Validate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DispatchRequest)
	}{
		{"missing order number", func(r *DispatchRequest) { r.OrderNumber = "" }},
		{"missing consignee", func(r *DispatchRequest) { r.ConsigneeName = "" }},
		{"missing country", func(r *DispatchRequest) { r.ShippingCountryCode = "" }},
		{"no items", func(r *DispatchRequest) { r.Items = nil }},
		{"empty variant", func(r *DispatchRequest) { r.Items[0].VariantID = "" }},
		{"zero quantity", func(r *DispatchRequest) { r.Items[0].Quantity = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validDispatchRequest()
			tt.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDispatchInvalidRequest)
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	err := NewProviderError("createOrderV2", 503, "1600200", "system busy", ErrProviderUnavailable)

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "createOrderV2")
	assert.Contains(t, err.Error(), "1600200")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 503, pe.HTTPStatus)
}

func TestNewProviderError_DefaultSentinel(t *testing.T) {
	err := NewProviderError("getOrder", 400, "E400", "bad request", nil)
	assert.ErrorIs(t, err, ErrProviderRequestFailed)
}
