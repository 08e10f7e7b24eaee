package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// PaymentRepository handles database operations for the payments table.
// The table is append only: charges and refunds are separate rows and
// existing rows are never mutated, except for marking a charge refunded.
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create appends a payment row (charge or refund)
func (r *PaymentRepository) Create(payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			id, booking_id, amount, processing_fee, total_amount,
			method, transaction_id, authorization_code, status, original_payment_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at
	`

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		payment.ID, payment.BookingID, payment.Amount, payment.ProcessingFee, payment.TotalAmount,
		payment.Method, payment.TransactionID, payment.AuthorizationCode, payment.Status, payment.OriginalPaymentID,
	).Scan(&payment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetCompletedByBooking retrieves the completed charge for a booking.
// Refund rows are excluded.
func (r *PaymentRepository) GetCompletedByBooking(bookingID uuid.UUID) (*models.Payment, error) {
	query := `
		SELECT id, booking_id, amount, processing_fee, total_amount,
			   method, transaction_id, authorization_code, status, original_payment_id, created_at
		FROM payments
		WHERE booking_id = $1
		  AND original_payment_id IS NULL
		  AND status IN ('completed', 'refunded')
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := r.scanPayment(r.db.QueryRow(query, bookingID))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "payment", ID: bookingID.String()}
	}
	return payment, err
}

// ListByBooking retrieves all payment rows for a booking, oldest first
func (r *PaymentRepository) ListByBooking(bookingID uuid.UUID) ([]models.Payment, error) {
	query := `
		SELECT id, booking_id, amount, processing_fee, total_amount,
			   method, transaction_id, authorization_code, status, original_payment_id, created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanPayments(rows)
}

// MarkRefunded flags the original charge as refunded
func (r *PaymentRepository) MarkRefunded(paymentID uuid.UUID) error {
	query := `
		UPDATE payments
		SET status = $1
		WHERE id = $2
	`

	result, err := r.db.Exec(query, models.PaymentStatusRefunded, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &models.NotFoundError{Entity: "payment", ID: paymentID.String()}
	}

	return nil
}

// RevenueSummary aggregates gross charges, fees and refunds across all
// payment rows. Refund rows carry negated amounts so the net figures fall
// out of plain sums.
type RevenueSummary struct {
	GrossCharged  float64 `db:"gross_charged"`
	FeesCollected float64 `db:"fees_collected"`
	TotalRefunded float64 `db:"total_refunded"`
	NetRevenue    float64 `db:"net_revenue"`
	ChargeCount   int     `db:"charge_count"`
	RefundCount   int     `db:"refund_count"`
}

// GetRevenueSummary computes the revenue summary over all payments
func (r *PaymentRepository) GetRevenueSummary() (*RevenueSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN original_payment_id IS NULL THEN amount ELSE 0 END), 0) AS gross_charged,
			COALESCE(SUM(CASE WHEN original_payment_id IS NULL THEN processing_fee ELSE 0 END), 0) AS fees_collected,
			COALESCE(SUM(CASE WHEN original_payment_id IS NOT NULL THEN -amount ELSE 0 END), 0) AS total_refunded,
			COALESCE(SUM(amount), 0) AS net_revenue,
			COUNT(*) FILTER (WHERE original_payment_id IS NULL) AS charge_count,
			COUNT(*) FILTER (WHERE original_payment_id IS NOT NULL) AS refund_count
		FROM payments
	`

	var summary RevenueSummary
	if err := r.db.Get(&summary, query); err != nil {
		return nil, fmt.Errorf("failed to compute revenue summary: %w", err)
	}

	return &summary, nil
}

// scanPayment scans a single payment from a row
func (r *PaymentRepository) scanPayment(row *sql.Row) (*models.Payment, error) {
	var payment models.Payment
	var authCode sql.NullString
	var originalID uuid.NullUUID

	err := row.Scan(
		&payment.ID, &payment.BookingID, &payment.Amount, &payment.ProcessingFee, &payment.TotalAmount,
		&payment.Method, &payment.TransactionID, &authCode, &payment.Status, &originalID,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if authCode.Valid {
		payment.AuthorizationCode = &authCode.String
	}
	if originalID.Valid {
		payment.OriginalPaymentID = &originalID.UUID
	}

	return &payment, nil
}

// scanPayments scans multiple payments from rows
func (r *PaymentRepository) scanPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment

	for rows.Next() {
		var payment models.Payment
		var authCode sql.NullString
		var originalID uuid.NullUUID

		err := rows.Scan(
			&payment.ID, &payment.BookingID, &payment.Amount, &payment.ProcessingFee, &payment.TotalAmount,
			&payment.Method, &payment.TransactionID, &authCode, &payment.Status, &originalID,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if authCode.Valid {
			payment.AuthorizationCode = &authCode.String
		}
		if originalID.Valid {
			payment.OriginalPaymentID = &originalID.UUID
		}

		payments = append(payments, payment)
	}

	return payments, rows.Err()
}
