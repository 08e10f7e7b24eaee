package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent identifies the booking lifecycle event that triggered
// an outbound notification
type NotificationEvent string

const (
	NotificationBookingConfirmed NotificationEvent = "booking_confirmed"
	NotificationPaymentFailed    NotificationEvent = "payment_failed"
	NotificationRefundConfirmed  NotificationEvent = "refund_confirmed"
	NotificationRefundFailed     NotificationEvent = "refund_failed"
)

// NotificationLog is an append-only record of a notification attempt.
// Delivery failures are recorded here and never propagate to the booking
// flow that triggered them.
type NotificationLog struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	BookingID  uuid.UUID         `json:"booking_id" db:"booking_id"`
	Event      NotificationEvent `json:"event" db:"event"`
	Recipient  string            `json:"recipient" db:"recipient"`
	Channel    string            `json:"channel" db:"channel"`
	Success    bool              `json:"success" db:"success"`
	Detail     *string           `json:"detail,omitempty" db:"detail"`
	DeviceInfo *string           `json:"device_info,omitempty" db:"device_info"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}
