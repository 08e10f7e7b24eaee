package sms

// Sender sends a text message to a single recipient and returns the
// provider transaction ID
type Sender interface {
	SendMessage(phone string, message string) (int64, error)
	SendBulk(phones []string, message string) (int64, error)
	GetName() string
}
