package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// NotificationLogRepository handles database operations for the
// notification_logs table
type NotificationLogRepository struct {
	db DB
}

// NewNotificationLogRepository creates a new NotificationLogRepository
func NewNotificationLogRepository(db DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// Create appends a notification log entry
func (r *NotificationLogRepository) Create(entry *models.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (
			id, booking_id, event, recipient, channel, success, detail, device_info
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		entry.ID, entry.BookingID, entry.Event, entry.Recipient,
		entry.Channel, entry.Success, entry.Detail, entry.DeviceInfo,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification log: %w", err)
	}

	return nil
}

// ListByBooking retrieves notification logs for a booking, newest first
func (r *NotificationLogRepository) ListByBooking(bookingID uuid.UUID) ([]models.NotificationLog, error) {
	query := `
		SELECT id, booking_id, event, recipient, channel, success, detail, device_info, created_at
		FROM notification_logs
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	var logs []models.NotificationLog
	if err := r.db.Select(&logs, query, bookingID); err != nil {
		return nil, err
	}

	return logs, nil
}
