package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusFailed    BookingStatus = "failed"
)

// Booking represents one seat reservation on a scheduled route
type Booking struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	RouteID       uuid.UUID     `json:"route_id" db:"route_id"`
	TravelDate    time.Time     `json:"travel_date" db:"travel_date"`
	SeatNumber    int           `json:"seat_number" db:"seat_number"`
	ContactPhone  string        `json:"contact_phone" db:"contact_phone"`
	Amount        float64       `json:"amount" db:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Status        BookingStatus `json:"status" db:"status"`
	Notes         *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// CanBeCancelled checks if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusConfirmed
}

// TravelDay returns the travel date truncated to date-only semantics (UTC)
func (b *Booking) TravelDay() time.Time {
	y, m, d := b.TravelDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BillingAddress carries the cardholder billing details required by the gateway
type BillingAddress struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// CardDetails carries the payment instrument for a charge request
type CardDetails struct {
	Number      string `json:"number" binding:"required"`
	HolderName  string `json:"holder_name" binding:"required"`
	ExpiryMonth int    `json:"expiry_month" binding:"required"`
	ExpiryYear  int    `json:"expiry_year" binding:"required"`
	CVV         string `json:"cvv" binding:"required"`
}

// CreateBookingRequest represents the request to create a booking with payment
type CreateBookingRequest struct {
	UserID         string         `json:"user_id" binding:"required"`
	RouteID        string         `json:"route_id" binding:"required"`
	TravelDate     time.Time      `json:"travel_date" binding:"required"`
	SeatNumber     int            `json:"seat_number" binding:"required,min=1"`
	ContactPhone   string         `json:"contact_phone" binding:"required"`
	Amount         float64        `json:"amount" binding:"required"`
	PaymentMethod  PaymentMethod  `json:"payment_method" binding:"required"`
	Card           CardDetails    `json:"card" binding:"required"`
	BillingAddress BillingAddress `json:"billing_address" binding:"required"`
	Notes          *string        `json:"notes,omitempty"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be greater than zero")
	}

	if r.SeatNumber <= 0 {
		return errors.New("seat_number must be at least 1")
	}

	if strings.TrimSpace(r.ContactPhone) == "" {
		return errors.New("contact_phone is required")
	}

	if _, err := uuid.Parse(r.UserID); err != nil {
		return errors.New("user_id must be a valid UUID")
	}

	if _, err := uuid.Parse(r.RouteID); err != nil {
		return errors.New("route_id must be a valid UUID")
	}

	return nil
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelBookingResponse carries the cancelled booking together with the
// refund outcome. RefundError is set when the gateway refund did not
// complete even though the cancellation itself took effect.
type CancelBookingResponse struct {
	Booking         *Booking `json:"booking"`
	RefundPercent   int      `json:"refund_percent"`
	RefundAmount    float64  `json:"refund_amount"`
	RefundAttempted bool     `json:"refund_attempted"`
	RefundError     *string  `json:"refund_error,omitempty"`
}
