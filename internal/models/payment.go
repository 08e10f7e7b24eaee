package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents a supported payment method
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "creditCard"
	PaymentMethodDebitCard  PaymentMethod = "debitCard"
	PaymentMethodPayPal     PaymentMethod = "payPal"
)

// SupportedPaymentMethods lists the methods the gateway accepts
var SupportedPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodPayPal,
}

// IsSupported reports whether the method is accepted by the gateway
func (m PaymentMethod) IsSupported() bool {
	for _, s := range SupportedPaymentMethods {
		if m == s {
			return true
		}
	}
	return false
}

// PaymentStatus represents the settlement status of a payment row
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment represents one settlement event (charge or refund) for a booking.
// Refund rows carry a negated amount and reference the original payment
// they reverse; rows are appended, never mutated.
type Payment struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	BookingID         uuid.UUID     `json:"booking_id" db:"booking_id"`
	Amount            float64       `json:"amount" db:"amount"`
	ProcessingFee     float64       `json:"processing_fee" db:"processing_fee"`
	TotalAmount       float64       `json:"total_amount" db:"total_amount"`
	Method            PaymentMethod `json:"method" db:"method"`
	TransactionID     string        `json:"transaction_id" db:"transaction_id"`
	AuthorizationCode *string       `json:"authorization_code,omitempty" db:"authorization_code"`
	Status            PaymentStatus `json:"status" db:"status"`
	OriginalPaymentID *uuid.UUID    `json:"original_payment_id,omitempty" db:"original_payment_id"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
}

// IsRefund reports whether this row reverses an earlier payment
func (p *Payment) IsRefund() bool {
	return p.OriginalPaymentID != nil
}
