package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SandboxConfig holds the simulated processor's merchant credentials and
// behavior knobs.
type SandboxConfig struct {
	MerchantKey    string
	MerchantSecret string
	Latency        time.Duration
}

// Sandbox test card tails and the outcomes they trigger:
//
//	...0002  charge declined (card_declined)
//	...9995  charge declined (insufficient_funds)
//	...0259  charge succeeds, later refunds fail status verification
const (
	declineTailGeneric      = "0002"
	declineTailInsufficient = "9995"
	refundFailTail          = "0259"
)

type transactionStatus string

const (
	statusSucceeded transactionStatus = "succeeded"
	statusFailed    transactionStatus = "failed"
)

type sandboxTransaction struct {
	id       string
	amount   float64
	refunded float64
	cardTail string
	status   transactionStatus
}

// SandboxGateway simulates the external payment processor. It keeps its
// settled transactions in memory so refunds can be verified against the
// original charge, and it sleeps for the configured latency the way a real
// gateway call would block the request.
type SandboxGateway struct {
	config SandboxConfig
	logger *logrus.Logger

	mu           sync.Mutex
	transactions map[string]*sandboxTransaction
}

// NewSandboxGateway creates a new simulated gateway
func NewSandboxGateway(config SandboxConfig, logger *logrus.Logger) *SandboxGateway {
	if config.Latency == 0 {
		config.Latency = 150 * time.Millisecond
	}
	return &SandboxGateway{
		config:       config,
		logger:       logger,
		transactions: make(map[string]*sandboxTransaction),
	}
}

// IsConfigured returns true if merchant credentials are present
func (g *SandboxGateway) IsConfigured() bool {
	return g.config.MerchantKey != "" && g.config.MerchantSecret != ""
}

// Charge validates the request, simulates the processor round-trip and
// settles the amount. Validation failures never reach the simulated
// network call.
func (g *SandboxGateway) Charge(ctx context.Context, req ChargeRequest, amount float64) (*Result, error) {
	if !g.IsConfigured() {
		return nil, &ConfigError{Missing: "merchant credentials"}
	}

	if err := ValidateChargeRequest(req, time.Now()); err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	if err := g.simulateLatency(ctx, "charge"); err != nil {
		return nil, err
	}

	number := cardSeparators.Replace(req.Card.Number)
	tail := cardTail(number)

	switch tail {
	case declineTailGeneric:
		return nil, &DeclineError{Code: "card_declined", Reason: "the card was declined"}
	case declineTailInsufficient:
		return nil, &DeclineError{Code: "insufficient_funds", Reason: "the card has insufficient funds"}
	}

	txn := &sandboxTransaction{
		id:       newTransactionID("ch"),
		amount:   amount,
		cardTail: tail,
		status:   statusSucceeded,
	}
	authCode := newAuthorizationCode()

	g.mu.Lock()
	g.transactions[txn.id] = txn
	g.mu.Unlock()

	g.logger.WithFields(logrus.Fields{
		"transaction_id": txn.id,
		"amount":         amount,
		"method":         req.Method,
	}).Info("Sandbox charge settled")

	return &Result{TransactionID: txn.id, AuthorizationCode: authCode}, nil
}

// Refund reverses amount against an earlier charge. After the refund
// settles, the resulting transaction's status is verified; a refund that
// reports success but fails verification is returned as a decline so a
// partial failure can never read as a completed refund.
func (g *SandboxGateway) Refund(ctx context.Context, originalTransactionID string, amount float64, reason string) (*Result, error) {
	if !g.IsConfigured() {
		return nil, &ConfigError{Missing: "merchant credentials"}
	}

	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	if err := g.simulateLatency(ctx, "refund"); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	original, ok := g.transactions[originalTransactionID]
	if !ok {
		return nil, &DeclineError{Code: "transaction_not_found", Reason: "no settled charge with id " + originalTransactionID}
	}

	if original.refunded+amount > original.amount {
		return nil, &DeclineError{Code: "refund_exceeds_charge", Reason: fmt.Sprintf("refund %.2f exceeds remaining charge %.2f", amount, original.amount-original.refunded)}
	}

	refund := &sandboxTransaction{
		id:       newTransactionID("re"),
		amount:   amount,
		cardTail: original.cardTail,
		status:   statusSucceeded,
	}
	if original.cardTail == refundFailTail {
		refund.status = statusFailed
	}
	g.transactions[refund.id] = refund

	// Follow-up status verification of the refund transaction
	if verified := g.transactions[refund.id]; verified.status != statusSucceeded {
		g.logger.WithFields(logrus.Fields{
			"transaction_id": refund.id,
			"original_id":    originalTransactionID,
			"amount":         amount,
		}).Warn("Sandbox refund failed status verification")
		return nil, &DeclineError{Code: "refund_verification_failed", Reason: "refund did not reach succeeded status"}
	}

	original.refunded += amount

	g.logger.WithFields(logrus.Fields{
		"transaction_id": refund.id,
		"original_id":    originalTransactionID,
		"amount":         amount,
		"reason":         reason,
	}).Info("Sandbox refund settled")

	return &Result{TransactionID: refund.id, AuthorizationCode: newAuthorizationCode()}, nil
}

// simulateLatency blocks like a real processor round-trip. A context
// deadline or cancellation during the call is a transient error, never a
// silent success or failure.
func (g *SandboxGateway) simulateLatency(ctx context.Context, op string) error {
	timer := time.NewTimer(g.config.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return &TransientError{Op: op, Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}

func cardTail(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}

func newTransactionID(prefix string) string {
	b := make([]byte, 12)
	rand.Read(b)
	return prefix + "_" + hex.EncodeToString(b)
}

func newAuthorizationCode() string {
	b := make([]byte, 3)
	rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}
