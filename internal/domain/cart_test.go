package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_KeepsInsertionOrderAndDuplicates(t *testing.T) {
	cart := NewCart("c1", "user:u1")
	cart.AddItem(CartItem{ID: "a", Price: Major(100)})
	cart.AddItem(CartItem{ID: "b", Price: Major(50)})
	cart.AddItem(CartItem{ID: "c", Price: Major(100)})

	items := cart.ItemsInOrder()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, Major(250), cart.Total())

	items[0].Price = 0
	assert.Equal(t, Major(250), cart.Total(), "ItemsInOrder returns a copy")
}

func TestCart_RemoveAndReplace(t *testing.T) {
	cart := NewCart("c1", "user:u1")
	cart.AddItem(CartItem{ID: "a", Price: Major(100)})
	cart.AddItem(CartItem{ID: "b", Price: Major(50)})

	require.NoError(t, cart.ReplaceItem("a", CartItem{ID: "a", Price: Major(120)}))
	assert.Equal(t, Major(170), cart.Total())
	assert.Equal(t, "a", cart.Items[0].ID, "replaced item keeps its position")

	require.NoError(t, cart.RemoveItem("a"))
	assert.ErrorIs(t, cart.RemoveItem("a"), ErrCartItemNotFound)
	assert.ErrorIs(t, cart.ReplaceItem("zzz", CartItem{}), ErrCartItemNotFound)

	_, err := cart.Item("b")
	assert.NoError(t, err)

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, Money(0), cart.Total())
}

func TestTaxiDetails_IsShared(t *testing.T) {
	assert.True(t, TaxiDetails{TaxiType: TaxiTypeShared, ScheduleID: "run-1"}.IsShared())
	assert.False(t, TaxiDetails{TaxiType: TaxiTypeShared}.IsShared())
	assert.False(t, TaxiDetails{TaxiType: TaxiTypeVIP, ScheduleID: "run-1"}.IsShared())
}

func TestSchedule_Bookability(t *testing.T) {
	now := time.Date(2026, 11, 10, 15, 0, 0, 0, time.UTC)
	schedule := &SharedTaxiSchedule{
		TravelDate:  time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC),
		MaxCapacity: 4,
		BookedCount: 3,
		Status:      ScheduleStatusActive,
	}

	assert.True(t, schedule.IsBookable(now), "a run later today is still bookable")
	assert.Equal(t, 1, schedule.RemainingSeats())

	schedule.BookedCount = 4
	assert.False(t, schedule.IsBookable(now))

	schedule.BookedCount = 0
	assert.False(t, schedule.IsBookable(now.AddDate(0, 0, 1)), "departed")

	schedule.Status = ScheduleStatusCancelled
	assert.False(t, schedule.IsBookable(now))
}

func TestIdentity_OwnerKey(t *testing.T) {
	assert.Equal(t, "user:u1", UserRef{ID: "u1"}.OwnerKey())
	assert.Equal(t, "guest:ada@example.com", GuestInfo{Email: "ada@example.com"}.OwnerKey())
}
