package payment

import (
	"strings"
	"time"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

const (
	minCardNumberLength = 13
	maxCardNumberLength = 19
	maxExpiryYearsAhead = 20
)

// cardSeparators are stripped from card numbers before digit validation
var cardSeparators = strings.NewReplacer(" ", "", "-", "")

// ValidateChargeRequest checks the charge request without contacting the
// gateway. The first failed check short-circuits with a *ValidationError;
// callers must not have attempted any charge when this returns non-nil.
func ValidateChargeRequest(req ChargeRequest, now time.Time) error {
	if !req.Method.IsSupported() {
		return &ValidationError{Field: "payment_method", Reason: "unsupported method " + string(req.Method)}
	}

	number := cardSeparators.Replace(req.Card.Number)
	if number == "" {
		return &ValidationError{Field: "card_number", Reason: "required"}
	}
	if !isDigits(number) {
		return &ValidationError{Field: "card_number", Reason: "must contain only digits"}
	}
	if len(number) < minCardNumberLength || len(number) > maxCardNumberLength {
		return &ValidationError{Field: "card_number", Reason: "must be 13 to 19 digits"}
	}

	if strings.TrimSpace(req.Card.HolderName) == "" {
		return &ValidationError{Field: "holder_name", Reason: "required"}
	}

	if req.Card.ExpiryMonth < 1 || req.Card.ExpiryMonth > 12 {
		return &ValidationError{Field: "expiry_month", Reason: "must be between 1 and 12"}
	}

	currentYear, currentMonth := now.Year(), int(now.Month())
	if req.Card.ExpiryYear < currentYear || req.Card.ExpiryYear > currentYear+maxExpiryYearsAhead {
		return &ValidationError{Field: "expiry_year", Reason: "outside the accepted range"}
	}
	if req.Card.ExpiryYear == currentYear && req.Card.ExpiryMonth < currentMonth {
		return &ValidationError{Field: "expiry_month", Reason: "card has expired"}
	}

	if !isDigits(req.Card.CVV) || len(req.Card.CVV) < 3 || len(req.Card.CVV) > 4 {
		return &ValidationError{Field: "cvv", Reason: "must be 3 or 4 digits"}
	}

	if err := validateBillingAddress(req.BillingAddress); err != nil {
		return err
	}

	return nil
}

func validateBillingAddress(addr models.BillingAddress) error {
	checks := []struct {
		field string
		value string
	}{
		{"billing_address.line1", addr.Line1},
		{"billing_address.city", addr.City},
		{"billing_address.postal_code", addr.PostalCode},
		{"billing_address.country", addr.Country},
	}

	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return &ValidationError{Field: c.field, Reason: "required"}
		}
	}

	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
