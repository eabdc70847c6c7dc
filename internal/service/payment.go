package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"

	"pethotel/internal/domain"
	"pethotel/internal/metrics"
	"pethotel/internal/repository"
)

// DefaultPaymentTimeout bounds a gateway call when no timeout is configured.
const DefaultPaymentTimeout = 15 * time.Second

// PaymentOrchestrator validates payment input and drives the gateway.
type PaymentOrchestrator struct {
	attemptRepo repository.PaymentAttemptRepository
	gateway     PaymentGateway
	timeout     time.Duration
	metrics     *metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewPaymentOrchestrator creates a new PaymentOrchestrator.
func NewPaymentOrchestrator(
	attemptRepo repository.PaymentAttemptRepository,
	gateway PaymentGateway,
	timeout time.Duration,
	m *metrics.Recorder,
	logger *slog.Logger,
) *PaymentOrchestrator {
	if timeout <= 0 {
		timeout = DefaultPaymentTimeout
	}
	return &PaymentOrchestrator{
		attemptRepo: attemptRepo,
		gateway:     gateway,
		timeout:     timeout,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// Validate checks the card and invoice fields before any gateway call.
// All problems are reported together in one *InputError.
func (s *PaymentOrchestrator) Validate(card CardInput, invoice domain.InvoiceInfo) error {
	ie := newInputError()
	ie.merge(IsInputError(ValidateCard(card, s.now())))
	ie.merge(IsInputError(ValidateInvoice(invoice)))
	return ie.orNil()
}

// ChargeRequestInput contains the parameters for one charge attempt.
type ChargeRequestInput struct {
	CheckoutID string
	Attempt    int
	Amount     domain.Money
	Card       CardInput
	Email      string
}

// AttemptKey is the idempotency key of a charge attempt.
func AttemptKey(checkoutID string, attempt int) string {
	return fmt.Sprintf("checkout:%s:attempt:%d", checkoutID, attempt)
}

// Charge runs one charge attempt with idempotency support. A decline returns
// *PaymentDeclinedError; transport errors and timeouts return ErrGatewayUnavailable.
// The attempt record is returned in every case where one exists.
func (s *PaymentOrchestrator) Charge(ctx context.Context, req ChargeRequestInput) (*domain.PaymentAttempt, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	idempotencyKey := AttemptKey(req.CheckoutID, req.Attempt)

	// Replayed attempt: report the recorded outcome.
	existing, err := s.attemptRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, attemptError(existing)
	}

	attempt := &domain.PaymentAttempt{
		ID:             uuid.New().String(),
		CheckoutID:     req.CheckoutID,
		Amount:         req.Amount,
		Status:         domain.PaymentStatusPending,
		CardLast4:      req.Card.Last4(),
		IdempotencyKey: idempotencyKey,
		CreatedAt:      s.now(),
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	segment := newrelic.FromContext(ctx).StartSegment("payment/charge")
	chargeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	started := time.Now()

	result, chargeErr := s.gateway.Charge(chargeCtx, ChargeRequest{
		Amount:         req.Amount,
		Card:           req.Card,
		Email:          req.Email,
		IdempotencyKey: idempotencyKey,
	})

	cancel()
	segment.End()
	elapsed := time.Since(started)

	switch {
	case chargeErr != nil:
		attempt.Status = domain.PaymentStatusFailed
		attempt.Reason = chargeErr.Error()
	case !result.Success:
		attempt.Status = domain.PaymentStatusDeclined
		attempt.Reason = result.Reason
	default:
		attempt.Status = domain.PaymentStatusSuccess
		attempt.TransactionID = result.TransactionID
	}

	s.metrics.GatewayCharge(string(attempt.Status), elapsed)

	if err := s.attemptRepo.UpdateResult(ctx, attempt.ID, attempt.Status, attempt.TransactionID, attempt.Reason); err != nil {
		if attempt.Status == domain.PaymentStatusSuccess {
			// The money moved; keep going and let the order carry the transaction id.
			s.logger.Error("record payment attempt result", "attempt_id", attempt.ID, "error", err)
		} else {
			return nil, err
		}
	}

	s.logger.Info("payment attempt finished",
		"checkout_id", req.CheckoutID,
		"attempt", req.Attempt,
		"status", attempt.Status,
		"amount", req.Amount.String(),
		"elapsed", elapsed)

	if chargeErr != nil {
		return attempt, fmt.Errorf("%w: %v", ErrGatewayUnavailable, chargeErr)
	}
	return attempt, attemptError(attempt)
}

// ListAttempts returns the audit trail of a checkout.
func (s *PaymentOrchestrator) ListAttempts(ctx context.Context, checkoutID string) ([]*domain.PaymentAttempt, error) {
	return s.attemptRepo.ListByCheckout(ctx, checkoutID)
}

func attemptError(attempt *domain.PaymentAttempt) error {
	switch attempt.Status {
	case domain.PaymentStatusSuccess:
		return nil
	case domain.PaymentStatusDeclined:
		return &PaymentDeclinedError{Reason: attempt.Reason}
	default:
		return ErrGatewayUnavailable
	}
}
