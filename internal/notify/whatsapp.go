// Package notify builds outbound reminder links. Nothing here performs a
// network call; opening the link is the caller's responsibility.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentbook/api/internal/format"
)

// defaultCountryCode is prefixed to phone numbers that carry neither a
// leading "+" nor the code already.
const defaultCountryCode = "91"

// WhatsAppLink builds a wa.me deep link with a pre-filled rent reminder for
// the given tenant. The phone number is normalized best-effort: every
// character except digits and a leading "+" is stripped, and the default
// country code is added when none is present. Malformed input still
// produces a link; no validation is attempted.
func WhatsAppLink(phone, tenantName string, amount decimal.Decimal, month string) string {
	number := normalizePhone(phone)

	message := fmt.Sprintf(
		"Hi %s, this is a reminder that your rent of %s for %s is due. Please pay at your earliest convenience. Thank you!",
		tenantName, format.Currency(amount), month,
	)

	return "https://wa.me/" + number + "?text=" + url.QueryEscape(message)
}

// normalizePhone reduces a free-form phone string to the digit form wa.me
// expects. A number already starting with the country code is left alone.
func normalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	clean := b.String()

	if !strings.HasPrefix(clean, "+") {
		if !strings.HasPrefix(clean, defaultCountryCode) {
			clean = defaultCountryCode + clean
		}
	}

	return strings.TrimPrefix(clean, "+")
}
