package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking in pending status and reserves its seat.
// Seat uniqueness is enforced by a partial unique index on
// (route_id, travel_date, seat_number) covering pending and confirmed
// rows, so the check and the reservation are a single atomic statement.
// A unique violation is surfaced as *models.SeatConflictError.
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, route_id, travel_date, seat_number, contact_phone,
			amount, payment_method, status, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.UserID, booking.RouteID, booking.TravelDate, booking.SeatNumber,
		booking.ContactPhone, booking.Amount, booking.PaymentMethod, booking.Status, booking.Notes,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return &models.SeatConflictError{
				RouteID:    booking.RouteID,
				TravelDate: booking.TravelDate,
				SeatNumber: booking.SeatNumber,
			}
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT id, user_id, route_id, travel_date, seat_number, contact_phone,
			   amount, payment_method, status, notes, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking, err := r.scanBooking(r.db.QueryRow(query, bookingID))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "booking", ID: bookingID.String()}
	}
	return booking, err
}

// GetByUserID retrieves all bookings for a user, newest first
func (r *BookingRepository) GetByUserID(userID uuid.UUID) ([]models.Booking, error) {
	query := `
		SELECT id, user_id, route_id, travel_date, seat_number, contact_phone,
			   amount, payment_method, status, notes, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByRouteAndDate retrieves all active bookings for a route on a travel
// date. Cancelled and failed bookings are excluded because their seats
// are released.
func (r *BookingRepository) GetByRouteAndDate(routeID uuid.UUID, travelDate time.Time) ([]models.Booking, error) {
	query := `
		SELECT id, user_id, route_id, travel_date, seat_number, contact_phone,
			   amount, payment_method, status, notes, created_at, updated_at
		FROM bookings
		WHERE route_id = $1
		  AND travel_date = $2
		  AND status IN ('pending', 'confirmed')
		ORDER BY seat_number
	`

	rows, err := r.db.Query(query, routeID, travelDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// IsSeatTaken checks whether a seat is held by a pending or confirmed
// booking. Failed and cancelled bookings do not count: a failed payment
// must release the seat for other customers, so only the two active
// statuses hold it. This is advisory only; the partial unique index over
// the same two statuses remains the authority under concurrent inserts.
func (r *BookingRepository) IsSeatTaken(routeID uuid.UUID, travelDate time.Time, seatNumber int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE route_id = $1
			  AND travel_date = $2
			  AND seat_number = $3
			  AND status IN ('pending', 'confirmed')
		)
	`

	var taken bool
	err := r.db.Get(&taken, query, routeID, travelDate, seatNumber)
	if err != nil {
		return false, fmt.Errorf("failed to check seat availability: %w", err)
	}

	return taken, nil
}

// UpdateStatus transitions a booking to a new status
func (r *BookingRepository) UpdateStatus(bookingID uuid.UUID, status models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(query, status, bookingID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &models.NotFoundError{Entity: "booking", ID: bookingID.String()}
	}

	return nil
}

// SetStatusWithNote transitions a booking and records why
func (r *BookingRepository) SetStatusWithNote(bookingID uuid.UUID, status models.BookingStatus, note string) error {
	query := `
		UPDATE bookings
		SET status = $1, notes = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.Exec(query, status, note, bookingID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &models.NotFoundError{Entity: "booking", ID: bookingID.String()}
	}

	return nil
}

// CountByStatus returns booking counts grouped by status
func (r *BookingRepository) CountByStatus() (map[models.BookingStatus]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM bookings
		GROUP BY status
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.BookingStatus]int)
	for rows.Next() {
		var status models.BookingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// scanBooking scans a single booking from a row
func (r *BookingRepository) scanBooking(row *sql.Row) (*models.Booking, error) {
	var booking models.Booking
	var notes sql.NullString

	err := row.Scan(
		&booking.ID, &booking.UserID, &booking.RouteID, &booking.TravelDate, &booking.SeatNumber,
		&booking.ContactPhone, &booking.Amount, &booking.PaymentMethod, &booking.Status, &notes,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		booking.Notes = &notes.String
	}

	return &booking, nil
}

// scanBookings scans multiple bookings from rows
func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking

	for rows.Next() {
		var booking models.Booking
		var notes sql.NullString

		err := rows.Scan(
			&booking.ID, &booking.UserID, &booking.RouteID, &booking.TravelDate, &booking.SeatNumber,
			&booking.ContactPhone, &booking.Amount, &booking.PaymentMethod, &booking.Status, &notes,
			&booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if notes.Valid {
			booking.Notes = &notes.String
		}

		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
