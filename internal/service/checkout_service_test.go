package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

type checkoutHarness struct {
	*fixture
	svc      *CheckoutService
	notifier *recordingNotifier
}

func newCheckoutHarness(t *testing.T, gateway PaymentGateway) *checkoutHarness {
	t.Helper()
	f := newFixture(t)
	notifier := &recordingNotifier{}

	payments := NewPaymentOrchestrator(f.attempts, gateway, time.Second, nil, discardLogger())
	payments.now = fixedClock
	finalizer := newFinalizer(f, f.orders, notifier)

	svc := NewCheckoutService(NewCheckoutStore(), f.carts, payments, finalizer, nil, nil, discardLogger())
	svc.now = fixedClock

	return &checkoutHarness{fixture: f, svc: svc, notifier: notifier}
}

func (h *checkoutHarness) fillCart(t *testing.T, owner string) *domain.Cart {
	t.Helper()
	ctx := context.Background()
	_, err := h.cartSvc.AddHotel(ctx, owner, AddHotelRequest{RoomID: "room-std", CheckIn: day(5), CheckOut: day(8)})
	require.NoError(t, err)
	cart, err := h.cartSvc.AddSharedTaxi(ctx, owner, AddSharedTaxiRequest{ScheduleID: "run-a", SeatCount: 2})
	require.NoError(t, err)
	return cart
}

func TestCompleteCheckout_Member(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()
	cart := h.fillCart(t, "user:u1")

	res, err := h.svc.CompleteCheckout(ctx, CompleteCheckoutRequest{
		Cart:     cart,
		Identity: domain.UserRef{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		Invoice:  individualInvoice(),
		Payment:  validCard(cardOK),
	})
	require.NoError(t, err)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, CodeOK, res.Code)
	assert.Equal(t, CheckoutStateSuccess, res.State)
	assert.Equal(t, domain.Major(750), res.Order.TotalPrice)
	assert.Len(t, res.Bookings, 2)
	assert.Equal(t, 2, h.bookedCount(t, "run-a"))
	assert.Len(t, h.notifier.confirmations, 1)

	_, err = h.carts.Get(ctx, "user:u1")
	assert.ErrorIs(t, err, repository.ErrNotFound, "cart is cleared after success")

	again, err := h.svc.Pay(ctx, res.CheckoutID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Equal(t, CodeCheckoutCompleted, again.Code)
	assert.Equal(t, 1, h.orders.CountOrders(), "no second order")
}

func TestCompleteCheckout_GuestValidationErrors(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	cart := h.fillCart(t, "session:s1")

	res, err := h.svc.CompleteCheckout(context.Background(), CompleteCheckoutRequest{
		Cart:     cart,
		Identity: domain.GuestInfo{Name: "Ada", Email: "bad"},
		Invoice:  individualInvoice(),
		Payment:  validCard(cardOK),
	})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, CodeInvalidInput, res.Code)
	assert.Contains(t, res.Fields, "email")
	assert.Contains(t, res.Fields, "phone")
	assert.Equal(t, CheckoutStateGuestInfo, res.State)
}

func TestCompleteCheckout_ResumeBindsCorrectedGuestInfo(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()
	cart := h.fillCart(t, "session:s1")

	first, err := h.svc.CompleteCheckout(ctx, CompleteCheckoutRequest{
		Cart:     cart,
		Identity: domain.GuestInfo{Name: "Ada", Email: "bad"},
		Invoice:  individualInvoice(),
		Payment:  validCard(cardOK),
	})
	require.NoError(t, err)
	require.Equal(t, CodeInvalidInput, first.Code)
	require.Equal(t, CheckoutStateGuestInfo, first.State)
	require.NotEmpty(t, first.CheckoutID)

	res, err := h.svc.CompleteCheckout(ctx, CompleteCheckoutRequest{
		CheckoutID: first.CheckoutID,
		Identity:   domain.GuestInfo{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"},
		Invoice:    individualInvoice(),
		Payment:    validCard(cardOK),
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, first.CheckoutID, res.CheckoutID)
	assert.Equal(t, "ada@example.com", res.Order.Identity.ContactEmail())
}

func TestCompleteCheckout_ResumeFromIdentitySelection(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "session:s1"), nil)
	require.NoError(t, err)

	res, err := h.svc.CompleteCheckout(ctx, CompleteCheckoutRequest{
		CheckoutID: c.ID,
		Identity:   domain.UserRef{ID: "u1", Email: "u1@example.com"},
		Invoice:    individualInvoice(),
		Payment:    validCard(cardOK),
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "u1@example.com", res.Order.Identity.ContactEmail())

	missing, err := h.svc.CompleteCheckout(ctx, CompleteCheckoutRequest{CheckoutID: "nope", Identity: validGuest()})
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

func TestCompleteCheckout_RequiresIdentity(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	cart := h.fillCart(t, "session:s1")

	res, err := h.svc.CompleteCheckout(context.Background(), CompleteCheckoutRequest{Cart: cart, Payment: validCard(cardOK)})
	require.NoError(t, err)
	assert.Equal(t, CodeIdentityRequired, res.Code)
}

func TestCompleteCheckout_EmptyCart(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))

	res, err := h.svc.CompleteCheckout(context.Background(), CompleteCheckoutRequest{
		Cart:     domain.NewCart("c", "user:u1"),
		Identity: domain.UserRef{ID: "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, CodeEmptyCart, res.Code)
}

func TestPay_InvalidCardNeverCharges(t *testing.T) {
	gateway := &stubGateway{result: ChargeResult{Success: true, TransactionID: "txn"}}
	h := newCheckoutHarness(t, gateway)
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "user:u1"), &domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	card := validCard(cardOK)
	card.Expiry = "01/20"
	res, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: card, Invoice: individualInvoice()})
	require.NoError(t, err)

	assert.Equal(t, CodeCardExpired, res.Code)
	assert.Contains(t, res.Fields, "expiry")
	assert.Zero(t, gateway.Calls())

	stored, err := h.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Attempts)
}

func TestPay_DeclineThenRetrySucceeds(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "user:u1"), &domain.UserRef{ID: "u1", Email: "ada@example.com"})
	require.NoError(t, err)

	res, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardDeclined), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.Equal(t, CodePaymentDeclined, res.Code)
	assert.Equal(t, CheckoutStatePayment, res.State)
	assert.Contains(t, res.Message, "card declined")
	assert.Equal(t, 0, h.bookedCount(t, "run-a"), "no seats without payment")
	assert.Zero(t, h.orders.CountOrders())

	res, err = h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	require.True(t, res.Success)

	attempts, err := h.svc.Attempts(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, domain.PaymentStatusDeclined, attempts[0].Status)
	assert.Equal(t, domain.PaymentStatusSuccess, attempts[1].Status)
}

func TestPay_GatewayErrorFailsRetryably(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "user:u1"), &domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	res, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardError), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.Equal(t, CodeGatewayUnavailable, res.Code)
	assert.Equal(t, CheckoutStateFailed, res.State)

	res, err = h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestPay_CapacityLostAfterPaymentNeedsRefund(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "user:u1"), &domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	// Someone else takes the run between quote and payment.
	_, err = h.ledger.ReserveSeats(ctx, "run-a", 3)
	require.NoError(t, err)

	res, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, CodeCapacityExceeded, res.Code)
	assert.Equal(t, CheckoutStateFailed, res.State)
	require.NotNil(t, res.Order)
	assert.True(t, res.Order.NeedsRefund)
	assert.Equal(t, 3, h.bookedCount(t, "run-a"))

	cart, err := h.carts.Get(ctx, "user:u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "cart survives a failed checkout")

	// The same snapshot would fail again after another charge.
	retry, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.Equal(t, CodeCheckoutClosed, retry.Code)

	stored, err := h.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, stored.FailedOrderID)

	attempts, err := h.svc.Attempts(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 1, "charged once")

	pending, err := h.svc.finalizer.ListNeedingRefund(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestPay_ConcurrentSubmissionsFinalizeOnce(t *testing.T) {
	gateway := &stubGateway{result: ChargeResult{Success: true, TransactionID: "txn"}, block: make(chan struct{})}
	h := newCheckoutHarness(t, gateway)
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "user:u1"), &domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	input := PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()}
	first := make(chan *OrderResult, 1)
	go func() {
		res, _ := h.svc.Pay(ctx, c.ID, input)
		first <- res
	}()

	require.Eventually(t, func() bool { return gateway.Calls() == 1 }, time.Second, time.Millisecond)

	const others = 5
	var wg sync.WaitGroup
	codes := make(chan string, others)
	for i := 0; i < others; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.svc.Pay(ctx, c.ID, input)
			if err == nil {
				codes <- res.Code
			}
		}()
	}
	wg.Wait()
	close(codes)
	close(gateway.block)

	for code := range codes {
		assert.Equal(t, CodeCheckoutInProgress, code)
	}
	assert.True(t, (<-first).Success)
	assert.Equal(t, 1, gateway.Calls())
	assert.Equal(t, 1, h.orders.CountOrders())
	assert.Equal(t, 2, h.bookedCount(t, "run-a"))
}

func TestGuestSteps(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "session:s1"), nil)
	require.NoError(t, err)

	res, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.Equal(t, CodeIdentityRequired, res.Code)

	_, err = h.svc.SubmitGuestInfo(ctx, c.ID, validGuest())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = h.svc.ChooseGuest(ctx, c.ID)
	require.NoError(t, err)
	c, err = h.svc.SubmitGuestInfo(ctx, c.ID, validGuest())
	require.NoError(t, err)
	assert.Equal(t, CheckoutStatePayment, c.State)

	res, err = h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.IsType(t, domain.GuestInfo{}, res.Order.Identity)

	_, err = h.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}

type fakeLocks struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (l *fakeLocks) AcquireCheckoutLock(_ context.Context, id string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] {
		return false, nil
	}
	l.held[id] = true
	return true, nil
}

func (l *fakeLocks) ReleaseCheckoutLock(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
	l.released++
	return nil
}

func TestPay_HonoursDistributedLock(t *testing.T) {
	h := newCheckoutHarness(t, NewSimulatedGateway(0))
	locks := &fakeLocks{held: make(map[string]bool)}
	h.svc.locks = locks
	ctx := context.Background()

	c, err := h.svc.Start(ctx, h.fillCart(t, "user:u1"), &domain.UserRef{ID: "u1"})
	require.NoError(t, err)

	locks.held[c.ID] = true // another instance is finalizing
	res, err := h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.Equal(t, CodeCheckoutInProgress, res.Code)

	delete(locks.held, c.ID)
	res, err = h.svc.Pay(ctx, c.ID, PaymentInput{Card: validCard(cardOK), Invoice: individualInvoice()})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, locks.released)
	assert.Empty(t, locks.held)
}
