package models

import (
	"time"

	"github.com/google/uuid"
)

// Route is a scheduled origin to destination service with a fixed seat
// capacity and base price. The booking core reads routes, it never writes
// them.
type Route struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Origin        string    `json:"origin" db:"origin"`
	Destination   string    `json:"destination" db:"destination"`
	DepartureTime string    `json:"departure_time" db:"departure_time"`
	SeatCapacity  int       `json:"seat_capacity" db:"seat_capacity"`
	BasePrice     float64   `json:"base_price" db:"base_price"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// HasSeat reports whether the seat number is within the route's capacity
func (r *Route) HasSeat(seatNumber int) bool {
	return seatNumber >= 1 && seatNumber <= r.SeatCapacity
}
