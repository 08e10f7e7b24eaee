package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/sms"
)

// NotificationLogStore is the notification log persistence contract
type NotificationLogStore interface {
	Create(entry *models.NotificationLog) error
}

// NotificationService sends booking lifecycle SMS messages and records
// every attempt. Nothing here returns an error to the caller: a booking
// must never fail because a text message could not be delivered.
type NotificationService struct {
	sender          sms.Sender
	logs            NotificationLogStore
	adminRecipients []string
	logger          *logrus.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender sms.Sender, logs NotificationLogStore, adminRecipients []string, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		sender:          sender,
		logs:            logs,
		adminRecipients: adminRecipients,
		logger:          logger,
	}
}

// BookingConfirmed notifies the customer that payment settled and the
// seat is theirs
func (s *NotificationService) BookingConfirmed(booking *models.Booking, pmt *models.Payment, deviceInfo *string) {
	message := fmt.Sprintf(
		"Your booking %s is confirmed. Seat %d on %s. Paid %.2f (incl. %.2f processing fee).",
		shortID(booking.ID.String()), booking.SeatNumber,
		booking.TravelDate.Format("2006-01-02"),
		pmt.TotalAmount, pmt.ProcessingFee,
	)

	s.deliver(booking, models.NotificationBookingConfirmed, booking.ContactPhone, message, deviceInfo)
}

// PaymentFailed notifies the customer that the charge did not go through
// and the seat was released
func (s *NotificationService) PaymentFailed(booking *models.Booking, cause string, deviceInfo *string) {
	message := fmt.Sprintf(
		"Payment for booking %s failed and the seat was released. You have not been charged. Reason: %s",
		shortID(booking.ID.String()), cause,
	)

	s.deliver(booking, models.NotificationPaymentFailed, booking.ContactPhone, message, deviceInfo)
}

// RefundConfirmed notifies the customer that the refund settled
func (s *NotificationService) RefundConfirmed(booking *models.Booking, amount float64, deviceInfo *string) {
	message := fmt.Sprintf(
		"Booking %s cancelled. A refund of %.2f is on its way to your original payment method.",
		shortID(booking.ID.String()), amount,
	)

	s.deliver(booking, models.NotificationRefundConfirmed, booking.ContactPhone, message, deviceInfo)
}

// RefundFailed notifies the customer that the refund is outstanding and
// alerts the operations contacts so it can be settled manually
func (s *NotificationService) RefundFailed(booking *models.Booking, amount float64, cause string, deviceInfo *string) {
	customerMsg := fmt.Sprintf(
		"Booking %s was cancelled but your refund of %.2f could not be processed automatically. Our team will settle it manually.",
		shortID(booking.ID.String()), amount,
	)
	s.deliver(booking, models.NotificationRefundFailed, booking.ContactPhone, customerMsg, deviceInfo)

	if len(s.adminRecipients) == 0 {
		return
	}

	adminMsg := fmt.Sprintf(
		"ACTION REQUIRED: refund of %.2f for booking %s failed: %s",
		amount, booking.ID, cause,
	)

	if _, err := s.sender.SendBulk(s.adminRecipients, adminMsg); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"error":      err.Error(),
		}).Error("Failed to alert operators about failed refund")
	}

	for _, recipient := range s.adminRecipients {
		s.record(booking, models.NotificationRefundFailed, recipient, true, nil, deviceInfo)
	}
}

// deliver sends one message and records the outcome
func (s *NotificationService) deliver(booking *models.Booking, event models.NotificationEvent, recipient, message string, deviceInfo *string) {
	var detail *string
	success := true

	if _, err := s.sender.SendMessage(recipient, message); err != nil {
		success = false
		errMsg := err.Error()
		detail = &errMsg

		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"event":      event,
			"error":      errMsg,
		}).Warn("Notification delivery failed")
	}

	s.record(booking, event, recipient, success, detail, deviceInfo)
}

// record appends a notification log row; persistence failures are logged
// and swallowed like delivery failures
func (s *NotificationService) record(booking *models.Booking, event models.NotificationEvent, recipient string, success bool, detail, deviceInfo *string) {
	entry := &models.NotificationLog{
		BookingID:  booking.ID,
		Event:      event,
		Recipient:  recipient,
		Channel:    "sms",
		Success:    success,
		Detail:     detail,
		DeviceInfo: deviceInfo,
	}

	if err := s.logs.Create(entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"event":      event,
			"error":      err.Error(),
		}).Error("Failed to record notification log")
	}
}

// shortID trims a UUID to its first segment for message bodies
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
