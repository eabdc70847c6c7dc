package service

import (
	"sync"
	"time"

	"pethotel/internal/domain"
)

// CheckoutState is a step of the checkout flow.
type CheckoutState string

const (
	CheckoutStateSelectIdentity CheckoutState = "select_identity"
	CheckoutStateGuestInfo      CheckoutState = "guest_info"
	CheckoutStateAuthenticated  CheckoutState = "authenticated"
	CheckoutStatePayment        CheckoutState = "payment"
	CheckoutStateFailed         CheckoutState = "failed"
	CheckoutStateSuccess        CheckoutState = "success"
)

// Checkout is one pass of a cart through identification and payment.
// Success is terminal. A failed state with FailedOrderID set is terminal too:
// the card was charged and the order is waiting for a refund.
type Checkout struct {
	ID            string
	Cart          *domain.Cart
	State         CheckoutState
	Identity      domain.Identity
	Attempts      int
	LastReason    string
	OrderID       string
	FailedOrderID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewCheckout starts a checkout over a snapshot of the cart. A signed-in user
// skips identity selection and lands in payment.
func NewCheckout(id string, cart *domain.Cart, user *domain.UserRef, now time.Time) (*Checkout, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	snapshot := *cart
	snapshot.Items = cart.ItemsInOrder()

	c := &Checkout{
		ID:        id,
		Cart:      &snapshot,
		State:     CheckoutStateSelectIdentity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if user != nil {
		c.Identity = *user
		c.State = CheckoutStatePayment
	}

	return c, nil
}

// OwnedBy reports whether one of the requester keys owns the checked out cart.
func (c *Checkout) OwnedBy(keys ...string) bool {
	if c.Cart == nil || c.Cart.OwnerKey == "" {
		return false
	}
	for _, key := range keys {
		if key == c.Cart.OwnerKey {
			return true
		}
	}
	return false
}

// ChooseGuest moves from identity selection to the guest form.
func (c *Checkout) ChooseGuest() error {
	if c.State == CheckoutStateSuccess {
		return ErrCheckoutCompleted
	}
	if c.State != CheckoutStateSelectIdentity {
		return ErrInvalidTransition
	}

	c.State = CheckoutStateGuestInfo
	return nil
}

// SignIn binds an authenticated user. Allowed until a guest identity is bound.
// Members have nothing left to fill in, so payment may start right after.
func (c *Checkout) SignIn(user domain.UserRef) error {
	if c.State == CheckoutStateSuccess {
		return ErrCheckoutCompleted
	}
	if c.State != CheckoutStateSelectIdentity && c.State != CheckoutStateGuestInfo {
		return ErrInvalidTransition
	}
	if user.ID == "" {
		ie := newInputError()
		ie.addError("user", "user id is required")
		return ie
	}

	c.Identity = user
	c.State = CheckoutStateAuthenticated
	return nil
}

// SubmitGuestInfo validates and binds guest contact data. On validation
// failure the checkout stays on the guest form.
func (c *Checkout) SubmitGuestInfo(info domain.GuestInfo) error {
	if c.State == CheckoutStateSuccess {
		return ErrCheckoutCompleted
	}
	if c.State != CheckoutStateGuestInfo {
		return ErrInvalidTransition
	}

	if err := ValidateGuestInfo(info); err != nil {
		return err
	}
	info.Phone = normalizePhone(info.Phone)

	c.Identity = info
	c.State = CheckoutStatePayment
	return nil
}

// CanPay reports why a payment may not start, or nil.
func (c *Checkout) CanPay() error {
	switch {
	case c.State == CheckoutStateSuccess:
		return ErrCheckoutCompleted
	case c.FailedOrderID != "":
		return ErrCheckoutClosed
	case c.Identity == nil:
		return ErrIdentityNotBound
	case c.State != CheckoutStateAuthenticated &&
		c.State != CheckoutStatePayment &&
		c.State != CheckoutStateFailed:
		return ErrInvalidTransition
	}
	return nil
}

// BeginPayment opens a new charge attempt and returns its number.
func (c *Checkout) BeginPayment() (int, error) {
	if err := c.CanPay(); err != nil {
		return 0, err
	}

	c.Attempts++
	c.State = CheckoutStatePayment
	return c.Attempts, nil
}

// Decline records a gateway decline. The user stays on the payment step.
func (c *Checkout) Decline(reason string) {
	c.State = CheckoutStatePayment
	c.LastReason = reason
}

// Fail records a gateway or finalization failure. Retrying is allowed.
func (c *Checkout) Fail(reason string) {
	c.State = CheckoutStateFailed
	c.LastReason = reason
}

// Abort records a paid order that could not be committed. The cart snapshot
// cannot change, so the checkout accepts no further payment.
func (c *Checkout) Abort(orderID, reason string) {
	c.State = CheckoutStateFailed
	c.FailedOrderID = orderID
	c.LastReason = reason
}

// Succeed completes the checkout with the committed order.
func (c *Checkout) Succeed(orderID string) error {
	if c.State == CheckoutStateSuccess {
		return ErrCheckoutCompleted
	}

	c.State = CheckoutStateSuccess
	c.OrderID = orderID
	c.LastReason = ""
	return nil
}

// CheckoutStore keeps checkout sessions in memory, keyed by id.
type CheckoutStore struct {
	mu        sync.RWMutex
	checkouts map[string]Checkout
}

// NewCheckoutStore creates a new CheckoutStore.
func NewCheckoutStore() *CheckoutStore {
	return &CheckoutStore{checkouts: make(map[string]Checkout)}
}

// Get returns a copy of a checkout.
func (s *CheckoutStore) Get(id string) (*Checkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checkouts[id]
	if !ok {
		return nil, ErrCheckoutNotFound
	}
	return &c, nil
}

// Save stores a copy of a checkout.
func (s *CheckoutStore) Save(c *Checkout, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = now
	s.checkouts[c.ID] = *c
}

// Delete drops a checkout session.
func (s *CheckoutStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkouts, id)
}
