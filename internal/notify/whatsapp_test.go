package notify

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("9876543210", "Asha", decimal.NewFromInt(5000), "March")

	require.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="), "got %s", link)

	encoded := strings.TrimPrefix(link, "https://wa.me/919876543210?text=")
	message, err := url.QueryUnescape(encoded)
	require.NoError(t, err)

	assert.Equal(t,
		"Hi Asha, this is a reminder that your rent of ₹5,000 for March is due. Please pay at your earliest convenience. Thank you!",
		message)
}

func TestWhatsAppLink_ParsesAsURL(t *testing.T) {
	link := WhatsAppLink("98765 43210", "Ravi Kumar", decimal.NewFromInt(123456), "December")

	u, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/919876543210", u.Path)
	assert.Contains(t, u.Query().Get("text"), "₹1,23,456")
	assert.Contains(t, u.Query().Get("text"), "Ravi Kumar")
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"bare ten digits get the country code", "9876543210", "919876543210"},
		{"already prefixed with country code", "919876543210", "919876543210"},
		{"plus prefix is trusted and stripped", "+919876543210", "919876543210"},
		{"foreign number with plus keeps its code", "+447911123456", "447911123456"},
		{"spaces and dashes are stripped", "98765-432 10", "919876543210"},
		{"parentheses are stripped", "(987) 654-3210", "919876543210"},
		{"plus not at the start is dropped", "98+76543210", "919876543210"},
		{"empty input still gets the code", "", "91"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePhone(tt.phone))
		})
	}
}
