package services

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// fakeSender records sent messages and can simulate delivery failures
type fakeSender struct {
	sendErr  error
	messages []sentMessage
	bulks    []sentBulk
}

type sentMessage struct {
	phone   string
	message string
}

type sentBulk struct {
	phones  []string
	message string
}

func (s *fakeSender) SendMessage(phone string, message string) (int64, error) {
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.messages = append(s.messages, sentMessage{phone: phone, message: message})
	return 1, nil
}

func (s *fakeSender) SendBulk(phones []string, message string) (int64, error) {
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.bulks = append(s.bulks, sentBulk{phones: phones, message: message})
	return 1, nil
}

func (s *fakeSender) GetName() string { return "fake" }

// fakeLogStore records notification log rows
type fakeLogStore struct {
	entries   []*models.NotificationLog
	createErr error
}

func (s *fakeLogStore) Create(entry *models.NotificationLog) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		RouteID:       uuid.New(),
		TravelDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		SeatNumber:    12,
		ContactPhone:  "0771234567",
		Amount:        50.00,
		PaymentMethod: models.PaymentMethodCreditCard,
		Status:        models.BookingStatusConfirmed,
	}
}

func newNotificationService(sender *fakeSender, logs *fakeLogStore, admins []string) *NotificationService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewNotificationService(sender, logs, admins, logger)
}

func TestBookingConfirmedNotification(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	svc := newNotificationService(sender, logs, nil)

	booking := testBooking()
	pmt := &models.Payment{TotalAmount: 51.75, ProcessingFee: 1.75}

	svc.BookingConfirmed(booking, pmt, nil)

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "0771234567", sender.messages[0].phone)
	assert.Contains(t, sender.messages[0].message, "confirmed")
	assert.Contains(t, sender.messages[0].message, "51.75")

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.NotificationBookingConfirmed, logs.entries[0].Event)
	assert.True(t, logs.entries[0].Success)
	assert.Equal(t, "sms", logs.entries[0].Channel)
}

func TestNotificationDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{sendErr: fmt.Errorf("provider unavailable")}
	logs := &fakeLogStore{}
	svc := newNotificationService(sender, logs, nil)

	// Must not panic or propagate anything
	svc.PaymentFailed(testBooking(), "card was declined", nil)

	require.Len(t, logs.entries, 1)
	assert.False(t, logs.entries[0].Success)
	require.NotNil(t, logs.entries[0].Detail)
	assert.Contains(t, *logs.entries[0].Detail, "provider unavailable")
}

func TestRefundFailedAlertsOperators(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	admins := []string{"0770000001", "0770000002"}
	svc := newNotificationService(sender, logs, admins)

	booking := testBooking()
	svc.RefundFailed(booking, 50.00, "gateway declined", nil)

	// Customer message plus one bulk alert to both operators
	require.Len(t, sender.messages, 1)
	require.Len(t, sender.bulks, 1)
	assert.Equal(t, admins, sender.bulks[0].phones)
	assert.Contains(t, sender.bulks[0].message, "ACTION REQUIRED")
	assert.Contains(t, sender.bulks[0].message, "gateway declined")

	// One log row for the customer, one per operator
	assert.Len(t, logs.entries, 3)
}

func TestDeviceInfoIsRecorded(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	svc := newNotificationService(sender, logs, nil)

	device := "mobile / Android 12 / Chrome"
	svc.RefundConfirmed(testBooking(), 25.00, &device)

	require.Len(t, logs.entries, 1)
	require.NotNil(t, logs.entries[0].DeviceInfo)
	assert.Equal(t, device, *logs.entries[0].DeviceInfo)
}
