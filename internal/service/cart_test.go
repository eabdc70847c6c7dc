package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

func TestCartService_AddsQuotesInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := "user:u1"

	_, err := f.cartSvc.AddHotel(ctx, owner, AddHotelRequest{
		RoomID: "room-std", CheckIn: day(5), CheckOut: day(8), AddOnIDs: []string{"groom"},
	})
	require.NoError(t, err)

	_, err = f.cartSvc.AddVipTaxi(ctx, owner, AddVipTaxiRequest{
		ServiceID: "taxi-vip", FromCity: "Istanbul", ToCity: "Ankara", TravelDate: day(5), IsRoundTrip: true, PetWeightKg: 12,
	})
	require.NoError(t, err)

	cart, err := f.cartSvc.AddSharedTaxi(ctx, owner, AddSharedTaxiRequest{ScheduleID: "run-a", SeatCount: 2})
	require.NoError(t, err)

	require.Len(t, cart.Items, 3)
	assert.Equal(t, domain.Major(490), cart.Items[0].Price, "3 nights plus grooming")
	assert.Equal(t, domain.Major(2880), cart.Items[1].Price)
	assert.Equal(t, domain.Major(300), cart.Items[2].Price)
	assert.Equal(t, domain.Major(3670), cart.Total())
	assert.Equal(t, 0, f.bookedCount(t, "run-a"), "quoting reserves nothing")

	stored, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, cart.Total(), stored.Total())
}

func TestCartService_RejectsInvalidQuotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cartSvc.AddHotel(ctx, "user:u1", AddHotelRequest{RoomID: "room-std", CheckIn: day(5), CheckOut: day(5)})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = f.cartSvc.AddHotel(ctx, "user:u1", AddHotelRequest{RoomID: "room-std", CheckIn: day(5), CheckOut: day(6), PetCount: 3})
	assert.ErrorIs(t, err, ErrPetCapacityExceeded)

	_, err = f.cartSvc.AddVipTaxi(ctx, "user:u1", AddVipTaxiRequest{ServiceID: "taxi-vip", FromCity: "Istanbul", ToCity: "Trabzon"})
	assert.ErrorIs(t, err, ErrRouteNotFound)

	_, err = f.cartSvc.AddVipTaxi(ctx, "user:u1", AddVipTaxiRequest{ServiceID: "taxi-vip", FromCity: "Istanbul", ToCity: "Ankara", PetWeightKg: 45})
	assert.ErrorIs(t, err, ErrPetTooHeavy)

	_, err = f.cartSvc.AddSharedTaxi(ctx, "user:u1", AddSharedTaxiRequest{ScheduleID: "run-a", SeatCount: 5})
	assert.ErrorIs(t, err, ErrInvalidSeatCount)

	_, err = f.cartSvc.AddSharedTaxi(ctx, "user:u1", AddSharedTaxiRequest{ScheduleID: "run-full", SeatCount: 1})
	assert.ErrorIs(t, err, ErrInvalidSeatCount)

	_, err = f.cartSvc.AddHotel(ctx, "user:u1", AddHotelRequest{RoomID: "nope", CheckIn: day(1), CheckOut: day(2)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.carts.Get(ctx, "user:u1")
	assert.ErrorIs(t, err, repository.ErrNotFound, "rejected quotes never create a cart")
}

func TestCartService_QuotesStayFrozenUntilRequoted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := "session:s1"

	cart, err := f.cartSvc.AddHotel(ctx, owner, AddHotelRequest{RoomID: "room-std", CheckIn: day(5), CheckOut: day(7)})
	require.NoError(t, err)
	itemID := cart.Items[0].ID
	assert.Equal(t, domain.Major(300), cart.Items[0].Price)

	require.NoError(t, f.catalog.UpsertRoom(ctx, &domain.HotelRoom{
		ID: "room-std", Name: "Standard", Type: domain.RoomTypeStandard, Capacity: 2, PricePerNight: domain.Major(200),
	}))

	cart, err = f.cartSvc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.Major(300), cart.Total(), "catalog changes do not touch quoted items")

	cart, err = f.cartSvc.Requote(ctx, owner, itemID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, itemID, cart.Items[0].ID)
	assert.Equal(t, domain.Major(400), cart.Items[0].Price)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := "session:s1"

	cart, err := f.cartSvc.AddSharedTaxi(ctx, owner, AddSharedTaxiRequest{ScheduleID: "run-a", SeatCount: 1})
	require.NoError(t, err)
	_, err = f.cartSvc.AddSharedTaxi(ctx, owner, AddSharedTaxiRequest{ScheduleID: "run-a", SeatCount: 1})
	require.NoError(t, err)

	cart, err = f.cartSvc.Remove(ctx, owner, cart.Items[0].ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	_, err = f.cartSvc.Remove(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	require.NoError(t, f.cartSvc.Clear(ctx, owner))
	cart, err = f.cartSvc.Get(ctx, owner)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_CartsAreScopedByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cartSvc.AddSharedTaxi(ctx, "session:a", AddSharedTaxiRequest{ScheduleID: "run-a", SeatCount: 1})
	require.NoError(t, err)

	other, err := f.cartSvc.Get(ctx, "session:b")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}
