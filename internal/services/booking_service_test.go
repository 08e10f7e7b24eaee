package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanth-org1/Green-Bus-Server/internal/config"
	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/payment"
)

// fakeBookingStore keeps bookings in memory and can simulate seat conflicts
type fakeBookingStore struct {
	mu           sync.Mutex
	bookings     map[uuid.UUID]*models.Booking
	seatConflict bool
	createErr    error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*models.Booking)}
}

// Create mirrors the repository's unique-index behavior: an active
// booking already holding the seat makes the insert fail atomically.
func (s *fakeBookingStore) Create(booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	if s.seatConflict || s.seatHeldLocked(booking) {
		return &models.SeatConflictError{
			RouteID:    booking.RouteID,
			TravelDate: booking.TravelDate,
			SeatNumber: booking.SeatNumber,
		}
	}
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *fakeBookingStore) seatHeldLocked(booking *models.Booking) bool {
	for _, b := range s.bookings {
		if b.RouteID == booking.RouteID && b.TravelDate.Equal(booking.TravelDate) &&
			b.SeatNumber == booking.SeatNumber &&
			(b.Status == models.BookingStatusPending || b.Status == models.BookingStatusConfirmed) {
			return true
		}
	}
	return false
}

func (s *fakeBookingStore) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "booking", ID: bookingID.String()}
	}
	copied := *booking
	return &copied, nil
}

func (s *fakeBookingStore) GetByUserID(userID uuid.UUID) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) GetByRouteAndDate(routeID uuid.UUID, travelDate time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.RouteID == routeID && b.TravelDate.Equal(travelDate) &&
			(b.Status == models.BookingStatusPending || b.Status == models.BookingStatusConfirmed) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) UpdateStatus(bookingID uuid.UUID, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return &models.NotFoundError{Entity: "booking", ID: bookingID.String()}
	}
	booking.Status = status
	return nil
}

func (s *fakeBookingStore) SetStatusWithNote(bookingID uuid.UUID, status models.BookingStatus, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return &models.NotFoundError{Entity: "booking", ID: bookingID.String()}
	}
	booking.Status = status
	booking.Notes = &note
	return nil
}

// fakePaymentStore keeps payment rows in memory
type fakePaymentStore struct {
	payments  []*models.Payment
	createErr error
}

func (s *fakePaymentStore) Create(pmt *models.Payment) error {
	if s.createErr != nil {
		return s.createErr
	}
	pmt.ID = uuid.New()
	pmt.CreatedAt = time.Now()
	copied := *pmt
	s.payments = append(s.payments, &copied)
	return nil
}

func (s *fakePaymentStore) GetCompletedByBooking(bookingID uuid.UUID) (*models.Payment, error) {
	for _, p := range s.payments {
		if p.BookingID == bookingID && p.OriginalPaymentID == nil {
			copied := *p
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "payment", ID: bookingID.String()}
}

func (s *fakePaymentStore) ListByBooking(bookingID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) MarkRefunded(paymentID uuid.UUID) error {
	for _, p := range s.payments {
		if p.ID == paymentID {
			p.Status = models.PaymentStatusRefunded
			return nil
		}
	}
	return &models.NotFoundError{Entity: "payment", ID: paymentID.String()}
}

// fakeRouteStore serves a fixed set of routes
type fakeRouteStore struct {
	routes map[uuid.UUID]*models.Route
}

func (s *fakeRouteStore) GetByID(routeID uuid.UUID) (*models.Route, error) {
	route, ok := s.routes[routeID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "route", ID: routeID.String()}
	}
	return route, nil
}

func (s *fakeRouteStore) ListActive() ([]models.Route, error) {
	var out []models.Route
	for _, r := range s.routes {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

// fakeGateway records charge and refund calls with scriptable failures
type fakeGateway struct {
	chargeErr      error
	refundErr      error
	chargedAmounts []float64
	refunds        []fakeRefund
}

type fakeRefund struct {
	transactionID string
	amount        float64
}

func (g *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest, amount float64) (*payment.Result, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.chargedAmounts = append(g.chargedAmounts, amount)
	return &payment.Result{TransactionID: "ch_test_1", AuthorizationCode: "AUTH123"}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, originalTransactionID string, amount float64, reason string) (*payment.Result, error) {
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refunds = append(g.refunds, fakeRefund{transactionID: originalTransactionID, amount: amount})
	return &payment.Result{TransactionID: "re_test_1", AuthorizationCode: "AUTH456"}, nil
}

// fakeNotifier counts notification calls
type fakeNotifier struct {
	confirmed      int
	paymentFailed  int
	refundOK       int
	refundFailures int
}

func (n *fakeNotifier) BookingConfirmed(*models.Booking, *models.Payment, *string) { n.confirmed++ }
func (n *fakeNotifier) PaymentFailed(*models.Booking, string, *string)            { n.paymentFailed++ }
func (n *fakeNotifier) RefundConfirmed(*models.Booking, float64, *string)         { n.refundOK++ }
func (n *fakeNotifier) RefundFailed(*models.Booking, float64, string, *string)    { n.refundFailures++ }

type serviceFixture struct {
	svc      *BookingService
	bookings *fakeBookingStore
	payments *fakePaymentStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	routeID  uuid.UUID
	now      time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	routeID := uuid.New()
	routes := &fakeRouteStore{routes: map[uuid.UUID]*models.Route{
		routeID: {
			ID:            routeID,
			Origin:        "Colombo",
			Destination:   "Kandy",
			DepartureTime: "08:30",
			SeatCapacity:  40,
			BasePrice:     50.00,
			IsActive:      true,
		},
	}}

	f := &serviceFixture{
		bookings: newFakeBookingStore(),
		payments: &fakePaymentStore{},
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		routeID:  routeID,
		now:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}

	f.svc = NewBookingService(
		f.bookings, f.payments, routes, f.gateway, f.notifier,
		config.PaymentConfig{GatewayTimeout: time.Second},
		logger,
	)
	f.svc.now = func() time.Time { return f.now }

	return f
}

func (f *serviceFixture) validRequest(travelDate time.Time) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		UserID:        uuid.New().String(),
		RouteID:       f.routeID.String(),
		TravelDate:    travelDate,
		SeatNumber:    12,
		ContactPhone:  "0771234567",
		Amount:        50.00,
		PaymentMethod: models.PaymentMethodCreditCard,
		Card: models.CardDetails{
			Number:      "4242424242424242",
			HolderName:  "Jane Doe",
			ExpiryMonth: 12,
			ExpiryYear:  2030,
			CVV:         "123",
		},
		BillingAddress: models.BillingAddress{
			Line1:      "12 Temple Road",
			City:       "Colombo",
			PostalCode: "10100",
			Country:    "LK",
		},
	}
}

// confirmedBooking seeds a confirmed booking with its settled payment
func (f *serviceFixture) confirmedBooking(t *testing.T, travelDate time.Time) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		UserID:        uuid.New(),
		RouteID:       f.routeID,
		TravelDate:    travelDate,
		SeatNumber:    7 + len(f.bookings.bookings),
		ContactPhone:  "0771234567",
		Amount:        50.00,
		PaymentMethod: models.PaymentMethodCreditCard,
	}
	require.NoError(t, f.bookings.Create(booking))
	require.NoError(t, f.bookings.UpdateStatus(booking.ID, models.BookingStatusConfirmed))
	booking.Status = models.BookingStatusConfirmed

	authCode := "AUTH123"
	require.NoError(t, f.payments.Create(&models.Payment{
		BookingID:         booking.ID,
		Amount:            50.00,
		ProcessingFee:     1.75,
		TotalAmount:       51.75,
		Method:            models.PaymentMethodCreditCard,
		TransactionID:     "ch_seed_1",
		AuthorizationCode: &authCode,
		Status:            models.PaymentStatusCompleted,
	}))

	return booking
}

func TestCreateBookingWithPayment(t *testing.T) {
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture(t)

		booking, pmt, err := f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(travelDate), nil)
		require.NoError(t, err)

		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, 50.00, pmt.Amount)
		assert.Equal(t, 1.75, pmt.ProcessingFee)
		assert.Equal(t, 51.75, pmt.TotalAmount)
		assert.Equal(t, "ch_test_1", pmt.TransactionID)

		// The gateway is charged fare plus fee
		require.Len(t, f.gateway.chargedAmounts, 1)
		assert.Equal(t, 51.75, f.gateway.chargedAmounts[0])

		stored, err := f.bookings.GetByID(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, stored.Status)

		assert.Equal(t, 1, f.notifier.confirmed)
		assert.Equal(t, 0, f.notifier.paymentFailed)
	})

	t.Run("Gateway Decline Fails Booking", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.chargeErr = &payment.DeclineError{Code: "card_declined", Reason: "card was declined"}

		booking, pmt, err := f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(travelDate), nil)
		assert.Nil(t, booking)
		assert.Nil(t, pmt)

		var decline *payment.DeclineError
		require.True(t, errors.As(err, &decline))
		assert.Equal(t, "card_declined", decline.Code)

		// The reserved seat is released via the failed status
		require.Len(t, f.bookings.bookings, 1)
		for _, b := range f.bookings.bookings {
			assert.Equal(t, models.BookingStatusFailed, b.Status)
			require.NotNil(t, b.Notes)
			assert.Contains(t, *b.Notes, "payment failed")
		}

		// No payment row is written for a declined charge
		assert.Empty(t, f.payments.payments)
		assert.Equal(t, 1, f.notifier.paymentFailed)
	})

	t.Run("Transient Gateway Error Fails Booking", func(t *testing.T) {
		f := newServiceFixture(t)
		f.gateway.chargeErr = &payment.TransientError{Op: "charge", Err: context.DeadlineExceeded}

		_, _, err := f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(travelDate), nil)

		var transient *payment.TransientError
		require.True(t, errors.As(err, &transient))
		assert.Empty(t, f.payments.payments)
	})

	t.Run("Seat Conflict", func(t *testing.T) {
		f := newServiceFixture(t)
		f.bookings.seatConflict = true

		_, _, err := f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(travelDate), nil)

		var conflict *models.SeatConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, 12, conflict.SeatNumber)

		// The gateway is never called when the seat cannot be reserved
		assert.Empty(t, f.gateway.chargedAmounts)
		assert.Equal(t, 0, f.notifier.paymentFailed)
	})

	t.Run("Unknown Route", func(t *testing.T) {
		f := newServiceFixture(t)
		req := f.validRequest(travelDate)
		req.RouteID = uuid.New().String()

		_, _, err := f.svc.CreateBookingWithPayment(context.Background(), req, nil)

		var notFound *models.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "route", notFound.Entity)
	})

	t.Run("Seat Beyond Capacity", func(t *testing.T) {
		f := newServiceFixture(t)
		req := f.validRequest(travelDate)
		req.SeatNumber = 41

		_, _, err := f.svc.CreateBookingWithPayment(context.Background(), req, nil)

		var validation *payment.ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, "seat_number", validation.Field)
		assert.Empty(t, f.gateway.chargedAmounts)
	})

	t.Run("Past Travel Date", func(t *testing.T) {
		f := newServiceFixture(t)
		req := f.validRequest(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))

		_, _, err := f.svc.CreateBookingWithPayment(context.Background(), req, nil)

		var validation *payment.ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, "travel_date", validation.Field)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		f := newServiceFixture(t)
		req := f.validRequest(travelDate)
		req.Amount = -5

		_, _, err := f.svc.CreateBookingWithPayment(context.Background(), req, nil)

		var validation *payment.ValidationError
		require.True(t, errors.As(err, &validation))
	})
}

func TestCancelBookingWithRefund(t *testing.T) {
	t.Run("Full Refund More Than Seven Days Out", func(t *testing.T) {
		f := newServiceFixture(t)
		// Sep 1 -> Sep 15 is 14 days out
		booking := f.confirmedBooking(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

		resp, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, 100, resp.RefundPercent)
		assert.Equal(t, 50.00, resp.RefundAmount)
		assert.True(t, resp.RefundAttempted)
		assert.Nil(t, resp.RefundError)
		assert.Equal(t, models.BookingStatusCancelled, resp.Booking.Status)

		// Refund goes against the original charge, fee excluded
		require.Len(t, f.gateway.refunds, 1)
		assert.Equal(t, "ch_seed_1", f.gateway.refunds[0].transactionID)
		assert.Equal(t, 50.00, f.gateway.refunds[0].amount)

		// A negated refund row references the original payment
		rows, err := f.payments.ListByBooking(booking.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		refundRow := rows[1]
		assert.Equal(t, -50.00, refundRow.Amount)
		require.NotNil(t, refundRow.OriginalPaymentID)
		assert.Equal(t, rows[0].ID, *refundRow.OriginalPaymentID)
		assert.Equal(t, models.PaymentStatusRefunded, refundRow.Status)
		assert.Equal(t, models.PaymentStatusRefunded, rows[0].Status)

		assert.Equal(t, 1, f.notifier.refundOK)
	})

	t.Run("Half Refund Between Three And Seven Days", func(t *testing.T) {
		f := newServiceFixture(t)
		// Sep 1 -> Sep 6 is 5 days out
		booking := f.confirmedBooking(t, time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC))

		resp, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, 50, resp.RefundPercent)
		assert.Equal(t, 25.00, resp.RefundAmount)
		require.Len(t, f.gateway.refunds, 1)
		assert.Equal(t, 25.00, f.gateway.refunds[0].amount)
	})

	t.Run("No Refund Under Three Days", func(t *testing.T) {
		f := newServiceFixture(t)
		// Sep 1 -> Sep 3 is 2 days out
		booking := f.confirmedBooking(t, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))

		resp, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, 0, resp.RefundPercent)
		assert.Equal(t, 0.00, resp.RefundAmount)
		assert.False(t, resp.RefundAttempted)
		assert.Equal(t, models.BookingStatusCancelled, resp.Booking.Status)

		// The gateway is never called and no refund row is written
		assert.Empty(t, f.gateway.refunds)
		rows, err := f.payments.ListByBooking(booking.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Refund Failure Still Cancels", func(t *testing.T) {
		f := newServiceFixture(t)
		booking := f.confirmedBooking(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))
		f.gateway.refundErr = &payment.DeclineError{Code: "refund_verification_failed", Reason: "refund did not verify"}

		resp, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, nil, nil)

		var refundErr *models.RefundFailedError
		require.True(t, errors.As(err, &refundErr))
		assert.Equal(t, booking.ID, refundErr.BookingID)
		assert.Equal(t, 50.00, refundErr.Amount)

		// The cancellation took effect despite the failed refund
		require.NotNil(t, resp)
		assert.Equal(t, models.BookingStatusCancelled, resp.Booking.Status)
		assert.True(t, resp.RefundAttempted)
		require.NotNil(t, resp.RefundError)

		stored, err := f.bookings.GetByID(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, stored.Status)
		require.NotNil(t, stored.Notes)
		assert.Contains(t, *stored.Notes, "refund outstanding")

		assert.Equal(t, 1, f.notifier.refundFailures)
		assert.Equal(t, 0, f.notifier.refundOK)
	})

	t.Run("Pending Booking Cannot Be Cancelled", func(t *testing.T) {
		f := newServiceFixture(t)
		booking := &models.Booking{
			UserID:        uuid.New(),
			RouteID:       f.routeID,
			TravelDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			SeatNumber:    7,
			ContactPhone:  "0771234567",
			Amount:        50.00,
			PaymentMethod: models.PaymentMethodCreditCard,
			Status:        models.BookingStatusPending,
		}
		require.NoError(t, f.bookings.Create(booking))

		_, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, nil, nil)

		var invalid *models.InvalidStateError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, models.BookingStatusPending, invalid.Current)
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		f := newServiceFixture(t)
		booking := f.confirmedBooking(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, f.bookings.UpdateStatus(booking.ID, models.BookingStatusCancelled))

		_, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, nil, nil)

		var invalid *models.InvalidStateError
		require.True(t, errors.As(err, &invalid))
		assert.Empty(t, f.gateway.refunds)
	})

	t.Run("Unknown Booking", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.CancelBookingWithRefund(context.Background(), uuid.New(), nil, nil)

		var notFound *models.NotFoundError
		require.True(t, errors.As(err, &notFound))
	})

	t.Run("Cancellation Reason Is Recorded", func(t *testing.T) {
		f := newServiceFixture(t)
		booking := f.confirmedBooking(t, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
		reason := "change of plans"

		resp, err := f.svc.CancelBookingWithRefund(context.Background(), booking.ID, &models.CancelBookingRequest{Reason: &reason}, nil)
		require.NoError(t, err)

		require.NotNil(t, resp.Booking.Notes)
		assert.Contains(t, *resp.Booking.Notes, "change of plans")
	})
}

func TestGetSeatAvailability(t *testing.T) {
	f := newServiceFixture(t)
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	f.confirmedBooking(t, travelDate)
	f.confirmedBooking(t, travelDate)

	availability, err := f.svc.GetSeatAvailability(f.routeID, travelDate)
	require.NoError(t, err)

	assert.Equal(t, 40, availability.SeatCapacity)
	assert.Equal(t, 38, availability.AvailableSeats)
	assert.Len(t, availability.TakenSeats, 2)
}

func TestTravelDateTruncatedToDay(t *testing.T) {
	f := newServiceFixture(t)

	// Client sends a timestamp; the booking must land on the calendar day
	morning := time.Date(2026, 9, 15, 8, 30, 0, 0, time.UTC)
	midnight := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	booking, _, err := f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(morning), nil)
	require.NoError(t, err)
	assert.True(t, booking.TravelDate.Equal(midnight))

	// A date-only availability query sees the seat
	availability, err := f.svc.GetSeatAvailability(f.routeID, midnight)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, availability.TakenSeats)

	// A second request for the same seat later the same day conflicts
	evening := time.Date(2026, 9, 15, 19, 45, 0, 0, time.UTC)
	_, _, err = f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(evening), nil)

	var conflict *models.SeatConflictError
	require.True(t, errors.As(err, &conflict))
}

func TestConcurrentSeatCreation(t *testing.T) {
	f := newServiceFixture(t)
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	const attempts = 8

	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.CreateBookingWithPayment(context.Background(), f.validRequest(travelDate), nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, conflicted int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		var conflict *models.SeatConflictError
		require.True(t, errors.As(err, &conflict), "unexpected error: %v", err)
		conflicted++
	}

	// Exactly one reservation wins; the rest observe the seat conflict
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, conflicted)

	// Only the winner reached the gateway and the ledger
	assert.Len(t, f.gateway.chargedAmounts, 1)
	assert.Len(t, f.payments.payments, 1)
	assert.Equal(t, 1, f.notifier.confirmed)
}
