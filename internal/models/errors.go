package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatConflictError is returned when a seat is already held by a
// non-cancelled booking for the same route and travel date. Conflicts are
// caller errors and are never retried automatically.
type SeatConflictError struct {
	RouteID    uuid.UUID
	TravelDate time.Time
	SeatNumber int
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %d is already taken on route %s for %s",
		e.SeatNumber, e.RouteID, e.TravelDate.Format("2006-01-02"))
}

// NotFoundError is returned when a requested record does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidStateError is returned when an operation is not allowed in the
// booking's current lifecycle state, for example cancelling a booking
// that never confirmed.
type InvalidStateError struct {
	Action  string
	Current BookingStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %q", e.Action, e.Current)
}

// RefundFailedError is returned when a cancellation took effect but the
// gateway refund did not complete. The booking is already marked cancelled;
// the caller must be told the refund is outstanding.
type RefundFailedError struct {
	BookingID uuid.UUID
	Amount    float64
	Reason    string
}

func (e *RefundFailedError) Error() string {
	return fmt.Sprintf("booking %s cancelled but refund of %.2f failed: %s", e.BookingID, e.Amount, e.Reason)
}
