package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		vars     map[string]string
		expected string
	}{
		{
			name:     "simple substitution",
			text:     "Hello {{name}}, your order {{order_number}} shipped",
			vars:     map[string]string{"name": "Ada", "order_number": "DS-1"},
			expected: "Hello Ada, your order DS-1 shipped",
		},
		{
			name:     "unknown placeholder kept",
			text:     "Hi {{name}}, code {{missing}}",
			vars:     map[string]string{"name": "Ada"},
			expected: "Hi Ada, code {{missing}}",
		},
		{
			name:     "repeated placeholder",
			text:     "{{x}} and {{x}}",
			vars:     map[string]string{"x": "y"},
			expected: "y and y",
		},
		{
			name:     "no vars",
			text:     "static text",
			vars:     nil,
			expected: "static text",
		},
		{
			name:     "empty text",
			text:     "",
			vars:     map[string]string{"name": "Ada"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.text, tt.vars))
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	tpl, err := NewTemplate("order-shipped", "OrderStatusChanged", ChannelEmail,
		"Order {{order_number}} update", "Hi {{name}}, status is now {{status}}.", 0)
	require.NoError(t, err)

	subject, body := RenderTemplate(tpl, map[string]string{
		"order_number": "DS-1",
		"name":         "Ada",
		"status":       "IN_TRANSIT",
	})

	assert.Equal(t, "Order DS-1 update", subject)
	assert.Equal(t, "Hi Ada, status is now IN_TRANSIT.", body)
}

func TestNewTemplate_Validation(t *testing.T) {
	_, err := NewTemplate("", "OrderPaid", ChannelEmail, "s", "b", 0)
	assert.Error(t, err)

	_, err = NewTemplate("n", "", ChannelEmail, "s", "b", 0)
	assert.Error(t, err)

	_, err = NewTemplate("n", "OrderPaid", ChannelType("CARRIER_PIGEON"), "s", "b", 0)
	assert.Error(t, err)

	_, err = NewTemplate("n", "OrderPaid", ChannelEmail, "s", "", 0)
	assert.Error(t, err)

	_, err = NewTemplate("n", "OrderPaid", ChannelEmail, "s", "b", -time.Second)
	assert.Error(t, err)
}

func TestTemplate_ScheduledFor(t *testing.T) {
	tpl, err := NewTemplate("delayed", "OrderPaid", ChannelEmail, "s", "b", 2*time.Hour)
	require.NoError(t, err)

	occurred := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, occurred.Add(2*time.Hour), tpl.ScheduledFor(occurred))

	assert.True(t, tpl.MatchesConditions(nil))
}
