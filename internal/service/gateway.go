package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pethotel/internal/domain"
)

// PaymentGateway charges a card through an external provider.
// A decline is a result, not an error. Errors mean the outcome is unknown.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// ChargeRequest is what the gateway needs to charge a card.
type ChargeRequest struct {
	Amount         domain.Money
	Card           CardInput
	Email          string
	IdempotencyKey string
}

// ChargeResult is the gateway's answer.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Reason        string // Set when Success is false
}

// ErrProviderError is what the simulated provider returns for its error test card.
var ErrProviderError = errors.New("provider error")

// Test card endings understood by SimulatedGateway.
const (
	SimulatedDeclineSuffix       = "0002"
	SimulatedExpiredSuffix       = "0069"
	SimulatedProviderErrorSuffix = "0119"
)

// SimulatedGateway is a deterministic stand-in for a real provider.
// Results are keyed by idempotency key, so replays return the first answer.
type SimulatedGateway struct {
	latency time.Duration

	mu      sync.Mutex
	results map[string]ChargeResult
}

// NewSimulatedGateway creates a gateway that answers after the given latency.
func NewSimulatedGateway(latency time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		latency: latency,
		results: make(map[string]ChargeResult),
	}
}

// Charge simulates a charge. The outcome depends only on the card ending.
func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ChargeResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	if req.IdempotencyKey != "" {
		g.mu.Lock()
		defer g.mu.Unlock()
		if result, ok := g.results[req.IdempotencyKey]; ok {
			return result, nil
		}
	}

	number := stripSpaces(req.Card.Number)

	var result ChargeResult
	switch {
	case strings.HasSuffix(number, SimulatedProviderErrorSuffix):
		return ChargeResult{}, ErrProviderError
	case strings.HasSuffix(number, SimulatedDeclineSuffix):
		result = ChargeResult{Reason: "card declined"}
	case strings.HasSuffix(number, SimulatedExpiredSuffix):
		result = ChargeResult{Reason: "expired card"}
	default:
		result = ChargeResult{
			Success:       true,
			TransactionID: "txn_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(req.IdempotencyKey+"|"+number)).String(),
		}
	}

	if req.IdempotencyKey != "" {
		g.results[req.IdempotencyKey] = result
	}

	return result, nil
}
