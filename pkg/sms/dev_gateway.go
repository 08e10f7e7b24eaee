package sms

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DevGateway logs messages instead of sending them. Used in development
// so booking flows can run without a Dialog account.
type DevGateway struct {
	logger *logrus.Logger
}

// NewDevGateway creates a new development SMS gateway
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

// SendMessage logs the message and returns a synthetic transaction ID
func (d *DevGateway) SendMessage(phone string, message string) (int64, error) {
	transactionID := time.Now().UnixMicro()

	d.logger.WithFields(logrus.Fields{
		"phone":          phone,
		"message":        message,
		"transaction_id": transactionID,
	}).Info("dev SMS gateway: message not sent")

	return transactionID, nil
}

// SendBulk logs the message for each recipient
func (d *DevGateway) SendBulk(phones []string, message string) (int64, error) {
	transactionID := time.Now().UnixMicro()

	d.logger.WithFields(logrus.Fields{
		"recipients":     len(phones),
		"message":        message,
		"transaction_id": transactionID,
	}).Info("dev SMS gateway: bulk message not sent")

	return transactionID, nil
}

// GetName returns the name of this SMS gateway
func (d *DevGateway) GetName() string {
	return "Development Gateway"
}
