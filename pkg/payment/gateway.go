// Package payment abstracts the external payment processor. The booking
// core depends only on the Gateway contract; the sandbox implementation
// simulates the processor's behavior including latency and declines.
package payment

import (
	"context"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// ChargeRequest carries everything the processor needs to settle a charge
type ChargeRequest struct {
	Card           models.CardDetails
	Method         models.PaymentMethod
	BillingAddress models.BillingAddress
	Description    string
}

// Result is a successful gateway settlement
type Result struct {
	TransactionID     string
	AuthorizationCode string
}

// Gateway is the outbound payment processor contract. Both operations
// block on the external call and honor context cancellation; a context
// deadline surfaces as *TransientError.
type Gateway interface {
	// Charge validates the request and settles the amount. Validation
	// failures return *ValidationError before any external call.
	Charge(ctx context.Context, req ChargeRequest, amount float64) (*Result, error)

	// Refund reverses amount against a previously settled transaction.
	// A refund whose follow-up status verification fails is treated as a
	// decline, never as success.
	Refund(ctx context.Context, originalTransactionID string, amount float64, reason string) (*Result, error)
}
