package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pethotel/internal/domain"
	"pethotel/internal/metrics"
	"pethotel/internal/redis"
	"pethotel/internal/repository"
)

const checkoutLockTTL = 60 * time.Second

// OrderResult is the outcome of a checkout attempt. Business failures are
// reported here with a reason code; only faults the user cannot fix are
// returned as errors.
type OrderResult struct {
	Success    bool
	CheckoutID string
	State      CheckoutState
	Order      *domain.Order
	Bookings   []*domain.Booking
	Code       string
	Message    string
	Fields     map[string][]string
}

// PaymentInput is what the payment step collects.
type PaymentInput struct {
	Card    CardInput
	Invoice domain.InvoiceInfo
}

// CompleteCheckoutRequest drives a checkout in one call.
// CheckoutID resumes an earlier attempt, for example after a decline.
type CompleteCheckoutRequest struct {
	CheckoutID string
	Cart       *domain.Cart
	Identity   domain.Identity
	Invoice    domain.InvoiceInfo
	Payment    CardInput
}

// CheckoutService runs checkouts from cart to order.
type CheckoutService struct {
	checkouts *CheckoutStore
	carts     repository.CartStore
	payments  *PaymentOrchestrator
	finalizer *OrderFinalizer
	locks     redis.LockStoreInterface
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCheckoutService creates a new CheckoutService. locks may be nil when
// a single process serves all checkouts.
func NewCheckoutService(
	checkouts *CheckoutStore,
	carts repository.CartStore,
	payments *PaymentOrchestrator,
	finalizer *OrderFinalizer,
	locks redis.LockStoreInterface,
	m *metrics.Recorder,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		checkouts: checkouts,
		carts:     carts,
		payments:  payments,
		finalizer: finalizer,
		locks:     locks,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		inflight:  make(map[string]struct{}),
	}
}

// Start opens a checkout for a cart. A signed-in user goes straight to payment.
func (s *CheckoutService) Start(ctx context.Context, cart *domain.Cart, user *domain.UserRef) (*Checkout, error) {
	c, err := NewCheckout(uuid.New().String(), cart, user, s.now())
	if err != nil {
		return nil, err
	}

	s.checkouts.Save(c, s.now())
	s.logger.Info("checkout started", "checkout_id", c.ID, "state", c.State, "items", len(c.Cart.Items))
	return c, nil
}

// Get returns a checkout.
func (s *CheckoutService) Get(ctx context.Context, checkoutID string) (*Checkout, error) {
	return s.checkouts.Get(checkoutID)
}

// ChooseGuest continues a checkout as a guest.
func (s *CheckoutService) ChooseGuest(ctx context.Context, checkoutID string) (*Checkout, error) {
	return s.step(checkoutID, func(c *Checkout) error { return c.ChooseGuest() })
}

// SignIn binds a member to a checkout.
func (s *CheckoutService) SignIn(ctx context.Context, checkoutID string, user domain.UserRef) (*Checkout, error) {
	return s.step(checkoutID, func(c *Checkout) error { return c.SignIn(user) })
}

// SubmitGuestInfo binds guest contact details to a checkout.
func (s *CheckoutService) SubmitGuestInfo(ctx context.Context, checkoutID string, info domain.GuestInfo) (*Checkout, error) {
	return s.step(checkoutID, func(c *Checkout) error { return c.SubmitGuestInfo(info) })
}

// step applies a transition under the per-checkout guard. Failed transitions
// leave the stored checkout untouched.
func (s *CheckoutService) step(checkoutID string, transition func(*Checkout) error) (*Checkout, error) {
	if !s.enter(checkoutID) {
		return nil, ErrCheckoutInProgress
	}
	defer s.leave(checkoutID)

	c, err := s.checkouts.Get(checkoutID)
	if err != nil {
		return nil, err
	}

	if err := transition(c); err != nil {
		return c, err
	}

	s.checkouts.Save(c, s.now())
	return c, nil
}

// CompleteCheckout runs identification, payment and finalization for a cart.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, req CompleteCheckoutRequest) (*OrderResult, error) {
	checkoutID := req.CheckoutID

	if checkoutID == "" {
		c, err := s.begin(ctx, req.Cart, req.Identity)
		if err != nil {
			return s.result(c, err)
		}
		checkoutID = c.ID
	} else if c, err := s.resume(ctx, checkoutID, req.Identity); err != nil {
		return s.result(c, err)
	}

	return s.Pay(ctx, checkoutID, PaymentInput{Card: req.Payment, Invoice: req.Invoice})
}

// begin starts a checkout and binds the identity through the regular steps.
func (s *CheckoutService) begin(ctx context.Context, cart *domain.Cart, identity domain.Identity) (*Checkout, error) {
	if user, ok := identity.(domain.UserRef); ok {
		return s.Start(ctx, cart, &user)
	}

	c, err := s.Start(ctx, cart, nil)
	if err != nil {
		return nil, err
	}
	return s.identify(ctx, c, identity)
}

// resume reopens an earlier checkout. One still waiting for an identity takes
// the one sent with this request; later states keep the identity they have.
func (s *CheckoutService) resume(ctx context.Context, checkoutID string, identity domain.Identity) (*Checkout, error) {
	c, err := s.checkouts.Get(checkoutID)
	if err != nil {
		return nil, err
	}

	if identity == nil || (c.State != CheckoutStateSelectIdentity && c.State != CheckoutStateGuestInfo) {
		return c, nil
	}
	return s.identify(ctx, c, identity)
}

// identify walks a checkout through the identity steps.
func (s *CheckoutService) identify(ctx context.Context, c *Checkout, identity domain.Identity) (*Checkout, error) {
	switch id := identity.(type) {
	case domain.UserRef:
		return s.SignIn(ctx, c.ID, id)
	case domain.GuestInfo:
		if c.State == CheckoutStateSelectIdentity {
			next, err := s.ChooseGuest(ctx, c.ID)
			if err != nil {
				return next, err
			}
		}
		return s.SubmitGuestInfo(ctx, c.ID, id)
	case nil:
		return c, ErrIdentityNotBound
	default:
		return c, errors.New("unsupported identity type")
	}
}

// Pay charges the card of a checkout and finalizes the order. The finalizer
// runs at most once per checkout: an in-process guard and a Redis lock keep
// concurrent submissions out.
func (s *CheckoutService) Pay(ctx context.Context, checkoutID string, input PaymentInput) (*OrderResult, error) {
	if !s.enter(checkoutID) {
		return s.result(nil, ErrCheckoutInProgress)
	}
	defer s.leave(checkoutID)

	if s.locks != nil {
		acquired, err := s.locks.AcquireCheckoutLock(ctx, checkoutID, checkoutLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return s.result(nil, ErrCheckoutInProgress)
		}
		defer func() {
			if err := s.locks.ReleaseCheckoutLock(context.WithoutCancel(ctx), checkoutID); err != nil {
				s.logger.Warn("release checkout lock", "checkout_id", checkoutID, "error", err)
			}
		}()
	}

	c, err := s.checkouts.Get(checkoutID)
	if err != nil {
		return nil, err
	}

	if err := c.CanPay(); err != nil {
		return s.result(c, err)
	}

	if err := s.payments.Validate(input.Card, input.Invoice); err != nil {
		return s.result(c, err)
	}

	attemptNo, err := c.BeginPayment()
	if err != nil {
		return s.result(c, err)
	}
	s.checkouts.Save(c, s.now())

	attempt, err := s.payments.Charge(ctx, ChargeRequestInput{
		CheckoutID: c.ID,
		Attempt:    attemptNo,
		Amount:     c.Cart.Total(),
		Card:       input.Card,
		Email:      c.Identity.ContactEmail(),
	})

	var declined *PaymentDeclinedError
	switch {
	case errors.As(err, &declined):
		c.Decline(declined.Reason)
		s.checkouts.Save(c, s.now())
		return s.result(c, err)
	case errors.Is(err, ErrGatewayUnavailable):
		c.Fail(err.Error())
		s.checkouts.Save(c, s.now())
		return s.result(c, err)
	case err != nil:
		c.Fail(err.Error())
		s.checkouts.Save(c, s.now())
		return nil, err
	}

	finalized, err := s.finalizer.Finalize(ctx, FinalizeRequest{
		CheckoutID: c.ID,
		Identity:   c.Identity,
		Items:      c.Cart.ItemsInOrder(),
		Invoice:    input.Invoice,
		Payment:    attempt,
	})
	if err != nil {
		if finalized != nil && finalized.Order != nil {
			c.Abort(finalized.Order.ID, err.Error())
		} else {
			c.Fail(err.Error())
		}
		s.checkouts.Save(c, s.now())

		res, resErr := s.result(c, err)
		if res != nil && finalized != nil {
			res.Order = finalized.Order
		}
		return res, resErr
	}

	if err := c.Succeed(finalized.Order.ID); err != nil {
		return s.result(c, err)
	}
	s.checkouts.Save(c, s.now())

	if c.Cart.OwnerKey != "" {
		if err := s.carts.Delete(ctx, c.Cart.OwnerKey); err != nil {
			s.logger.Warn("clear cart after checkout", "checkout_id", c.ID, "error", err)
		}
	}

	s.metrics.CheckoutResult(CodeOK)

	return &OrderResult{
		Success:    true,
		CheckoutID: c.ID,
		State:      c.State,
		Order:      finalized.Order,
		Bookings:   finalized.Bookings,
		Code:       CodeOK,
	}, nil
}

// Attempts returns the payment audit trail of a checkout.
func (s *CheckoutService) Attempts(ctx context.Context, checkoutID string) ([]*domain.PaymentAttempt, error) {
	if _, err := s.checkouts.Get(checkoutID); err != nil {
		return nil, err
	}
	return s.payments.ListAttempts(ctx, checkoutID)
}

// result turns a business failure into an OrderResult. Errors without a
// reason code are faults and are returned as is.
func (s *CheckoutService) result(c *Checkout, err error) (*OrderResult, error) {
	code := ResultCode(err)
	if code == CodeInternal {
		return nil, err
	}

	s.metrics.CheckoutResult(code)

	res := &OrderResult{Code: code, Message: err.Error()}
	if ie := IsInputError(err); ie != nil {
		res.Fields = ie.Fields()
	}
	if c != nil {
		res.CheckoutID = c.ID
		res.State = c.State
	}

	s.logger.Info("checkout attempt rejected", "checkout_id", res.CheckoutID, "code", code, "state", res.State)
	return res, nil
}

func (s *CheckoutService) enter(checkoutID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[checkoutID]; busy {
		return false
	}
	s.inflight[checkoutID] = struct{}{}
	return true
}

func (s *CheckoutService) leave(checkoutID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, checkoutID)
}
