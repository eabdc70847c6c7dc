package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pethotel/internal/domain"
)

func TestContextAuthProvider(t *testing.T) {
	provider := ContextAuthProvider{}

	assert.Nil(t, provider.CurrentIdentity(context.Background()))
	assert.Nil(t, provider.CurrentIdentity(WithUser(context.Background(), domain.UserRef{})), "empty id is anonymous")

	user := provider.CurrentIdentity(WithUser(context.Background(), domain.UserRef{ID: "u1", Email: "u@example.com"}))
	if assert.NotNil(t, user) {
		assert.Equal(t, "u1", user.ID)
	}
}

func TestResultCode(t *testing.T) {
	assert.Equal(t, CodeOK, ResultCode(nil))
	assert.Equal(t, CodeCapacityExceeded, ResultCode(&CapacityError{}))
	assert.Equal(t, CodeInvalidSeatCount, ResultCode(&SeatCountError{}))
	assert.Equal(t, CodePaymentDeclined, ResultCode(&PaymentDeclinedError{Reason: "x"}))
	assert.Equal(t, CodeReconciliationRequired, ResultCode(ErrFinalizationFailed))
	assert.Equal(t, CodeInternal, ResultCode(errStoreDown))
}
