// Package pricing holds the fee and refund policy. Everything here is a
// pure function of its inputs so the booking service and its tests can
// rely on deterministic results.
package pricing

import (
	"math"
	"time"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// feeSchedule is the per-method processing fee: amount*Rate + Fixed
type feeSchedule struct {
	Rate  float64
	Fixed float64
}

var methodFees = map[models.PaymentMethod]feeSchedule{
	models.PaymentMethodCreditCard: {Rate: 0.029, Fixed: 0.30},
	models.PaymentMethodDebitCard:  {Rate: 0.015, Fixed: 0.30},
	models.PaymentMethodPayPal:     {Rate: 0.0349, Fixed: 0.49},
}

// defaultFee applies to methods without a schedule entry. Unknown methods
// are not rejected here; method validation belongs to the gateway.
var defaultFee = feeSchedule{Rate: 0.025, Fixed: 0.30}

// ProcessingFee computes the gateway surcharge for charging the given
// amount with the given method, rounded to 2 decimal places.
func ProcessingFee(amount float64, method models.PaymentMethod) float64 {
	schedule, ok := methodFees[method]
	if !ok {
		schedule = defaultFee
	}
	return round2(amount*schedule.Rate + schedule.Fixed)
}

// Refund schedule by whole days remaining until travel:
// more than 7 days 100%, 3 to 7 days inclusive 50%, under 3 days 0%.
const (
	fullRefundAfterDays = 7
	halfRefundAfterDays = 3
)

// RefundPercentage returns the percentage of the original payment returned
// to the payer when cancelling at time now for the given travel date. The
// day difference is computed on date-truncated values, so the time of day
// on either side never shifts the tier.
func RefundPercentage(now, travelDate time.Time) int {
	days := daysUntil(now, travelDate)

	switch {
	case days > fullRefundAfterDays:
		return 100
	case days >= halfRefundAfterDays:
		return 50
	default:
		return 0
	}
}

// RefundAmount applies a refund percentage to the original gross payment
// amount, rounded to 2 decimal places. The processing fee is not refunded.
func RefundAmount(originalAmount float64, percent int) float64 {
	return round2(originalAmount * float64(percent) / 100)
}

// daysUntil returns the whole-day difference between now and the travel
// date, both truncated to midnight UTC.
func daysUntil(now, travelDate time.Time) int {
	return int(truncateToDay(travelDate).Sub(truncateToDay(now)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// round2 rounds half away from zero to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
