package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jayanth-org1/Green-Bus-Server/internal/config"
	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
	"github.com/jayanth-org1/Green-Bus-Server/internal/pricing"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/payment"
)

// BookingStore is the booking persistence contract used by the service
type BookingStore interface {
	Create(booking *models.Booking) error
	GetByID(bookingID uuid.UUID) (*models.Booking, error)
	GetByUserID(userID uuid.UUID) ([]models.Booking, error)
	GetByRouteAndDate(routeID uuid.UUID, travelDate time.Time) ([]models.Booking, error)
	UpdateStatus(bookingID uuid.UUID, status models.BookingStatus) error
	SetStatusWithNote(bookingID uuid.UUID, status models.BookingStatus, note string) error
}

// PaymentStore is the payment ledger contract used by the service
type PaymentStore interface {
	Create(payment *models.Payment) error
	GetCompletedByBooking(bookingID uuid.UUID) (*models.Payment, error)
	ListByBooking(bookingID uuid.UUID) ([]models.Payment, error)
	MarkRefunded(paymentID uuid.UUID) error
}

// RouteStore is the route lookup contract used by the service
type RouteStore interface {
	GetByID(routeID uuid.UUID) (*models.Route, error)
}

// BookingNotifier delivers booking lifecycle notifications. Implementations
// must never fail the booking flow; delivery problems are logged and
// swallowed.
type BookingNotifier interface {
	BookingConfirmed(booking *models.Booking, pmt *models.Payment, deviceInfo *string)
	PaymentFailed(booking *models.Booking, cause string, deviceInfo *string)
	RefundConfirmed(booking *models.Booking, amount float64, deviceInfo *string)
	RefundFailed(booking *models.Booking, amount float64, cause string, deviceInfo *string)
}

// BookingService drives the booking lifecycle: seat reservation, payment,
// confirmation and cancellation with refunds.
type BookingService struct {
	bookings BookingStore
	payments PaymentStore
	routes   RouteStore
	gateway  payment.Gateway
	notifier BookingNotifier
	logger   *logrus.Logger

	gatewayTimeout time.Duration
	now            func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings BookingStore,
	payments PaymentStore,
	routes RouteStore,
	gateway payment.Gateway,
	notifier BookingNotifier,
	cfg config.PaymentConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:       bookings,
		payments:       payments,
		routes:         routes,
		gateway:        gateway,
		notifier:       notifier,
		logger:         logger,
		gatewayTimeout: cfg.GatewayTimeout,
		now:            time.Now,
	}
}

// CreateBookingWithPayment reserves a seat and charges the customer.
//
// The seat row is committed in pending status before the gateway is
// called, so no database lock is ever held across the external call. If
// the charge fails the booking transitions to failed, which releases the
// seat for other customers.
func (s *BookingService) CreateBookingWithPayment(ctx context.Context, req *models.CreateBookingRequest, deviceInfo *string) (*models.Booking, *models.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, &payment.ValidationError{Field: "request", Reason: err.Error()}
	}

	userID := uuid.MustParse(req.UserID)
	routeID := uuid.MustParse(req.RouteID)

	route, err := s.routes.GetByID(routeID)
	if err != nil {
		return nil, nil, err
	}

	if !route.IsActive {
		return nil, nil, &payment.ValidationError{Field: "route_id", Reason: "route is not active"}
	}

	if !route.HasSeat(req.SeatNumber) {
		return nil, nil, &payment.ValidationError{
			Field:  "seat_number",
			Reason: fmt.Sprintf("seat %d exceeds route capacity of %d", req.SeatNumber, route.SeatCapacity),
		}
	}

	// Travel dates are calendar days. The time of day the client sent is
	// discarded here so the stored value, the unique index and every
	// date predicate agree on the same midnight-UTC key.
	travelDay := truncateToDay(req.TravelDate)

	if travelDay.Before(truncateToDay(s.now())) {
		return nil, nil, &payment.ValidationError{Field: "travel_date", Reason: "travel date is in the past"}
	}

	fee := pricing.ProcessingFee(req.Amount, req.PaymentMethod)
	total := req.Amount + fee

	booking := &models.Booking{
		UserID:        userID,
		RouteID:       routeID,
		TravelDate:    travelDay,
		SeatNumber:    req.SeatNumber,
		ContactPhone:  req.ContactPhone,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.BookingStatusPending,
		Notes:         req.Notes,
	}

	if err := s.bookings.Create(booking); err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"route_id":    routeID,
		"seat_number": req.SeatNumber,
		"travel_date": travelDay.Format("2006-01-02"),
	}).Info("Seat reserved, charging payment")

	chargeCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.Charge(chargeCtx, payment.ChargeRequest{
		Card:           req.Card,
		Method:         req.PaymentMethod,
		BillingAddress: req.BillingAddress,
		Description:    fmt.Sprintf("Booking %s: %s to %s", booking.ID, route.Origin, route.Destination),
	}, total)

	if err != nil {
		s.failBooking(booking, err)
		s.notifier.PaymentFailed(booking, err.Error(), deviceInfo)
		return nil, nil, err
	}

	pmt := &models.Payment{
		BookingID:         booking.ID,
		Amount:            req.Amount,
		ProcessingFee:     fee,
		TotalAmount:       total,
		Method:            req.PaymentMethod,
		TransactionID:     result.TransactionID,
		AuthorizationCode: &result.AuthorizationCode,
		Status:            models.PaymentStatusCompleted,
	}

	if err := s.payments.Create(pmt); err != nil {
		// The charge settled but the ledger row did not persist. Keep
		// the booking pending so the mismatch is visible for manual
		// reconciliation.
		s.logger.WithFields(logrus.Fields{
			"booking_id":     booking.ID,
			"transaction_id": result.TransactionID,
			"error":          err.Error(),
		}).Error("Charge settled but payment row was not recorded")
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := s.bookings.UpdateStatus(booking.ID, models.BookingStatusConfirmed); err != nil {
		return nil, nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	booking.Status = models.BookingStatusConfirmed

	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"transaction_id": result.TransactionID,
		"total_amount":   total,
	}).Info("Booking confirmed")

	s.notifier.BookingConfirmed(booking, pmt, deviceInfo)

	return booking, pmt, nil
}

// CancelBookingWithRefund cancels a confirmed booking and refunds the
// customer according to the time-to-travel schedule.
//
// The cancellation always takes effect once the booking is eligible. A
// refund that the gateway declines or that times out leaves the booking
// cancelled and is surfaced as *models.RefundFailedError alongside the
// response.
func (s *BookingService) CancelBookingWithRefund(ctx context.Context, bookingID uuid.UUID, req *models.CancelBookingRequest, deviceInfo *string) (*models.CancelBookingResponse, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.CanBeCancelled() {
		return nil, &models.InvalidStateError{Action: "cancel", Current: booking.Status}
	}

	percent := pricing.RefundPercentage(s.now(), booking.TravelDay())
	refundAmount := pricing.RefundAmount(booking.Amount, percent)

	note := "cancelled by customer"
	if req != nil && req.Reason != nil && *req.Reason != "" {
		note = "cancelled: " + *req.Reason
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":     bookingID,
		"refund_percent": percent,
		"refund_amount":  refundAmount,
	}).Info("Cancelling booking")

	// Under the schedule nothing is owed, so the gateway is not called
	// and no refund row is written.
	if percent == 0 {
		if err := s.bookings.SetStatusWithNote(bookingID, models.BookingStatusCancelled, note); err != nil {
			return nil, err
		}
		booking.Status = models.BookingStatusCancelled
		booking.Notes = &note

		return &models.CancelBookingResponse{
			Booking:         booking,
			RefundPercent:   0,
			RefundAmount:    0,
			RefundAttempted: false,
		}, nil
	}

	original, err := s.payments.GetCompletedByBooking(bookingID)
	if err != nil {
		return s.cancelWithFailedRefund(booking, refundAmount, percent, note,
			fmt.Sprintf("original payment not found: %v", err), deviceInfo)
	}

	refundCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.Refund(refundCtx, original.TransactionID, refundAmount, note)
	if err != nil {
		return s.cancelWithFailedRefund(booking, refundAmount, percent, note, err.Error(), deviceInfo)
	}

	refundRow := &models.Payment{
		BookingID:         booking.ID,
		Amount:            -refundAmount,
		ProcessingFee:     0,
		TotalAmount:       -refundAmount,
		Method:            original.Method,
		TransactionID:     result.TransactionID,
		AuthorizationCode: &result.AuthorizationCode,
		Status:            models.PaymentStatusRefunded,
		OriginalPaymentID: &original.ID,
	}

	if err := s.payments.Create(refundRow); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id":     booking.ID,
			"transaction_id": result.TransactionID,
			"error":          err.Error(),
		}).Error("Refund settled but refund row was not recorded")
	}

	if err := s.payments.MarkRefunded(original.ID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"payment_id": original.ID,
			"error":      err.Error(),
		}).Error("Failed to mark original payment refunded")
	}

	if err := s.bookings.SetStatusWithNote(bookingID, models.BookingStatusCancelled, note); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	booking.Notes = &note

	s.logger.WithFields(logrus.Fields{
		"booking_id":     bookingID,
		"refund_amount":  refundAmount,
		"transaction_id": result.TransactionID,
	}).Info("Booking cancelled and refunded")

	s.notifier.RefundConfirmed(booking, refundAmount, deviceInfo)

	return &models.CancelBookingResponse{
		Booking:         booking,
		RefundPercent:   percent,
		RefundAmount:    refundAmount,
		RefundAttempted: true,
	}, nil
}

// cancelWithFailedRefund marks the booking cancelled even though the
// refund did not complete, alerts operators, and reports the failure.
func (s *BookingService) cancelWithFailedRefund(booking *models.Booking, refundAmount float64, percent int, note, cause string, deviceInfo *string) (*models.CancelBookingResponse, error) {
	s.logger.WithFields(logrus.Fields{
		"booking_id":    booking.ID,
		"refund_amount": refundAmount,
		"cause":         cause,
	}).Error("Refund failed, cancelling booking anyway")

	fullNote := note + "; refund outstanding"
	if err := s.bookings.SetStatusWithNote(booking.ID, models.BookingStatusCancelled, fullNote); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	booking.Notes = &fullNote

	s.notifier.RefundFailed(booking, refundAmount, cause, deviceInfo)

	refundErr := &models.RefundFailedError{
		BookingID: booking.ID,
		Amount:    refundAmount,
		Reason:    cause,
	}

	msg := refundErr.Error()
	return &models.CancelBookingResponse{
		Booking:         booking,
		RefundPercent:   percent,
		RefundAmount:    refundAmount,
		RefundAttempted: true,
		RefundError:     &msg,
	}, refundErr
}

// GetBooking retrieves a booking together with its payment history
func (s *BookingService) GetBooking(bookingID uuid.UUID) (*models.Booking, []models.Payment, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.payments.ListByBooking(bookingID)
	if err != nil {
		return nil, nil, err
	}

	return booking, payments, nil
}

// GetUserBookings retrieves all bookings for a user
func (s *BookingService) GetUserBookings(userID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.GetByUserID(userID)
}

// GetSeatAvailability reports which seats are held for a route on a
// travel date
func (s *BookingService) GetSeatAvailability(routeID uuid.UUID, travelDate time.Time) (*SeatAvailability, error) {
	travelDate = truncateToDay(travelDate)

	route, err := s.routes.GetByID(routeID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetByRouteAndDate(routeID, travelDate)
	if err != nil {
		return nil, err
	}

	taken := make([]int, 0, len(bookings))
	for _, b := range bookings {
		taken = append(taken, b.SeatNumber)
	}

	return &SeatAvailability{
		RouteID:        routeID,
		TravelDate:     travelDate,
		SeatCapacity:   route.SeatCapacity,
		TakenSeats:     taken,
		AvailableSeats: route.SeatCapacity - len(taken),
	}, nil
}

// SeatAvailability summarizes seat occupancy for one route and date
type SeatAvailability struct {
	RouteID        uuid.UUID `json:"route_id"`
	TravelDate     time.Time `json:"travel_date"`
	SeatCapacity   int       `json:"seat_capacity"`
	TakenSeats     []int     `json:"taken_seats"`
	AvailableSeats int       `json:"available_seats"`
}

// failBooking transitions a booking to failed after a charge error,
// releasing its seat
func (s *BookingService) failBooking(booking *models.Booking, cause error) {
	note := "payment failed: " + cause.Error()

	if err := s.bookings.SetStatusWithNote(booking.ID, models.BookingStatusFailed, note); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"error":      err.Error(),
		}).Error("Failed to mark booking failed")
		return
	}
	booking.Status = models.BookingStatusFailed

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"cause":      cause.Error(),
	}).Warn("Booking failed, seat released")
}

// truncateToDay strips the time of day in UTC
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
