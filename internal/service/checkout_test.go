package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethotel/internal/domain"
)

func testCart() *domain.Cart {
	cart := domain.NewCart("cart-1", "session:s1")
	cart.AddItem(sharedItem("i1", "run-a", 1))
	return cart
}

func validGuest() domain.GuestInfo {
	return domain.GuestInfo{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555 123 45 67"}
}

func TestNewCheckout(t *testing.T) {
	_, err := NewCheckout("c1", domain.NewCart("empty", "session:s1"), nil, testNow)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewCheckout("c1", nil, nil, testNow)
	assert.ErrorIs(t, err, ErrEmptyCart)

	guest, err := NewCheckout("c1", testCart(), nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateSelectIdentity, guest.State)
	assert.Nil(t, guest.Identity)

	member, err := NewCheckout("c2", testCart(), &domain.UserRef{ID: "u1"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, CheckoutStatePayment, member.State)
	assert.Equal(t, domain.UserRef{ID: "u1"}, member.Identity)
}

func TestNewCheckout_SnapshotsTheCart(t *testing.T) {
	cart := testCart()
	c, err := NewCheckout("c1", cart, nil, testNow)
	require.NoError(t, err)

	cart.AddItem(sharedItem("i2", "run-b", 2))
	assert.Len(t, c.Cart.Items, 1)
}

func TestCheckout_GuestFlow(t *testing.T) {
	c, err := NewCheckout("c1", testCart(), nil, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, c.CanPay(), ErrIdentityNotBound)
	assert.ErrorIs(t, c.SubmitGuestInfo(validGuest()), ErrInvalidTransition, "must choose guest first")

	require.NoError(t, c.ChooseGuest())
	assert.Equal(t, CheckoutStateGuestInfo, c.State)

	err = c.SubmitGuestInfo(domain.GuestInfo{Name: "Ada"})
	assert.NotNil(t, IsInputError(err))
	assert.Equal(t, CheckoutStateGuestInfo, c.State, "stays on the form")

	require.NoError(t, c.SubmitGuestInfo(validGuest()))
	assert.Equal(t, CheckoutStatePayment, c.State)
	guest, ok := c.Identity.(domain.GuestInfo)
	require.True(t, ok)
	assert.Equal(t, "5551234567", guest.Phone)
	assert.NoError(t, c.CanPay())
}

func TestCheckout_SignInFromGuestForm(t *testing.T) {
	c, err := NewCheckout("c1", testCart(), nil, testNow)
	require.NoError(t, err)
	require.NoError(t, c.ChooseGuest())

	assert.NotNil(t, IsInputError(c.SignIn(domain.UserRef{})))

	require.NoError(t, c.SignIn(domain.UserRef{ID: "u1"}))
	assert.Equal(t, CheckoutStateAuthenticated, c.State)
	assert.NoError(t, c.CanPay())

	assert.ErrorIs(t, c.ChooseGuest(), ErrInvalidTransition)
	assert.ErrorIs(t, c.SignIn(domain.UserRef{ID: "u2"}), ErrInvalidTransition)
}

func TestCheckout_PaymentOutcomes(t *testing.T) {
	c, err := NewCheckout("c1", testCart(), &domain.UserRef{ID: "u1"}, testNow)
	require.NoError(t, err)

	attempt, err := c.BeginPayment()
	require.NoError(t, err)
	assert.Equal(t, 1, attempt)

	c.Decline("insufficient funds")
	assert.Equal(t, CheckoutStatePayment, c.State, "a decline returns to payment")
	assert.Equal(t, "insufficient funds", c.LastReason)

	attempt, err = c.BeginPayment()
	require.NoError(t, err)
	assert.Equal(t, 2, attempt)

	c.Fail("gateway timeout")
	assert.Equal(t, CheckoutStateFailed, c.State)
	assert.NoError(t, c.CanPay(), "failed checkouts may retry")

	attempt, err = c.BeginPayment()
	require.NoError(t, err)
	assert.Equal(t, 3, attempt)
	assert.Equal(t, CheckoutStatePayment, c.State)

	require.NoError(t, c.Succeed("order-1"))
	assert.Equal(t, CheckoutStateSuccess, c.State)
	assert.Equal(t, "order-1", c.OrderID)
	assert.Empty(t, c.LastReason)
}

func TestCheckout_SuccessIsTerminal(t *testing.T) {
	c, err := NewCheckout("c1", testCart(), &domain.UserRef{ID: "u1"}, testNow)
	require.NoError(t, err)
	require.NoError(t, c.Succeed("order-1"))

	assert.ErrorIs(t, c.Succeed("order-2"), ErrCheckoutCompleted)
	assert.ErrorIs(t, c.CanPay(), ErrCheckoutCompleted)
	assert.ErrorIs(t, c.ChooseGuest(), ErrCheckoutCompleted)
	assert.ErrorIs(t, c.SignIn(domain.UserRef{ID: "u1"}), ErrCheckoutCompleted)
	assert.ErrorIs(t, c.SubmitGuestInfo(validGuest()), ErrCheckoutCompleted)

	_, err = c.BeginPayment()
	assert.ErrorIs(t, err, ErrCheckoutCompleted)
	assert.Equal(t, "order-1", c.OrderID)
}

func TestCheckout_AbortClosesPayment(t *testing.T) {
	c, err := NewCheckout("c1", testCart(), &domain.UserRef{ID: "u1"}, testNow)
	require.NoError(t, err)
	_, err = c.BeginPayment()
	require.NoError(t, err)

	c.Abort("order-1", "capacity exceeded")
	assert.Equal(t, CheckoutStateFailed, c.State)
	assert.Equal(t, "order-1", c.FailedOrderID)
	assert.ErrorIs(t, c.CanPay(), ErrCheckoutClosed)
	assert.Equal(t, CodeCheckoutClosed, ResultCode(c.CanPay()))

	_, err = c.BeginPayment()
	assert.ErrorIs(t, err, ErrCheckoutClosed)
	assert.Equal(t, 1, c.Attempts)
}

func TestCheckout_OwnedBy(t *testing.T) {
	c, err := NewCheckout("c1", testCart(), nil, testNow)
	require.NoError(t, err)

	assert.True(t, c.OwnedBy("session:s1"))
	assert.True(t, c.OwnedBy("user:u1", "session:s1"))
	assert.False(t, c.OwnedBy("session:s2"))
	assert.False(t, c.OwnedBy())

	c.Cart.OwnerKey = ""
	assert.False(t, c.OwnedBy(""))
}

func TestCheckoutStore_ReturnsCopies(t *testing.T) {
	store := NewCheckoutStore()
	c, err := NewCheckout("c1", testCart(), nil, testNow)
	require.NoError(t, err)
	store.Save(c, testNow)

	loaded, err := store.Get("c1")
	require.NoError(t, err)
	require.NoError(t, loaded.ChooseGuest())

	again, err := store.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateSelectIdentity, again.State)

	store.Delete("c1")
	_, err = store.Get("c1")
	assert.ErrorIs(t, err, ErrCheckoutNotFound)
}
