package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// failingOrders fails CreateWithBookings and otherwise delegates.
type failingOrders struct {
	repository.OrderRepository
}

func (failingOrders) CreateWithBookings(context.Context, *domain.Order, []*domain.Booking) error {
	return errStoreDown
}

func newFinalizer(f *fixture, orders repository.OrderRepository, notifier Notifier) *OrderFinalizer {
	fin := NewOrderFinalizer(f.ledger, orders, notifier, "Pet Hotel", discardLogger())
	fin.now = fixedClock
	return fin
}

func paidRequest(items ...domain.CartItem) FinalizeRequest {
	return FinalizeRequest{
		CheckoutID: "c1",
		Identity:   domain.UserRef{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		Items:      items,
		Invoice:    individualInvoice(),
		Payment:    &domain.PaymentAttempt{ID: "p1", TransactionID: "txn-1", Status: domain.PaymentStatusSuccess},
	}
}

func hotelItem() domain.CartItem {
	checkIn := day(5)
	return domain.CartItem{
		ID: "hotel", Kind: domain.ItemKindHotel, ReferenceID: "room-std", Quantity: 3, Price: domain.Major(450),
		Details: domain.HotelDetails{RoomID: "room-std", CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 3), Nights: 3, PetCount: 1},
	}
}

func TestFinalize_CommitsOrderAndBookings(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	fin := newFinalizer(f, f.orders, notifier)

	res, err := fin.Finalize(context.Background(), paidRequest(hotelItem(), sharedItem("shared", "run-a", 2)))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPaid, res.Order.Status)
	assert.Equal(t, domain.Major(750), res.Order.TotalPrice)
	assert.Equal(t, "txn-1", res.Order.TransactionID)
	assert.Regexp(t, `^INV-20261015-[0-9A-F]{8}$`, res.Order.InvoiceNumber)
	require.Len(t, res.Bookings, 2)
	assert.Equal(t, domain.ItemKindHotel, res.Bookings[0].Type)
	assert.Equal(t, "run-a", res.Bookings[1].ScheduleID)
	assert.Equal(t, 2, f.bookedCount(t, "run-a"))

	stored, err := fin.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Bookings, 2)

	require.Len(t, notifier.confirmations, 1)
	assert.Len(t, notifier.confirmations[0].Items, 2)
	require.Len(t, notifier.invoices, 1)
	assert.Equal(t, res.Order.InvoiceNumber, notifier.invoices[0].Number)
}

func TestFinalize_NotificationFailureKeepsTheOrder(t *testing.T) {
	f := newFixture(t)
	fin := newFinalizer(f, f.orders, &recordingNotifier{err: errStoreDown})

	res, err := fin.Finalize(context.Background(), paidRequest(hotelItem()))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, res.Order.Status)
}

func TestFinalize_CapacityFailureReleasesEarlierReservations(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	fin := newFinalizer(f, f.orders, notifier)

	res, err := fin.Finalize(context.Background(), paidRequest(
		sharedItem("first", "run-a", 2),
		sharedItem("second", "run-b", 1),
		sharedItem("third", "run-full", 1),
	))

	var capacityErr *CapacityError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, "run-full", capacityErr.ScheduleID)

	assert.Equal(t, 0, f.bookedCount(t, "run-a"), "net change is zero")
	assert.Equal(t, 0, f.bookedCount(t, "run-b"))
	assert.Equal(t, 2, f.bookedCount(t, "run-full"))

	require.NotNil(t, res)
	assert.Equal(t, domain.OrderStatusFailed, res.Order.Status)
	assert.True(t, res.Order.NeedsRefund)
	assert.Equal(t, "txn-1", res.Order.TransactionID)
	assert.Empty(t, notifier.confirmations, "nothing is confirmed")

	pending, err := fin.ListNeedingRefund(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, res.Order.ID, pending[0].ID)

	bookings, err := f.orders.GetBookings(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestFinalize_DepartedRunFailsTheOrder(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	fin := newFinalizer(f, f.orders, notifier)

	require.NoError(t, f.schedules.Create(context.Background(), &domain.SharedTaxiSchedule{
		ID: "run-past", TaxiServiceID: "taxi-shared", FromCity: "Istanbul", ToCity: "Ankara",
		TravelDate: day(-3), DepartureTime: "09:00", PricePerSeat: domain.Major(150),
		MaxCapacity: 4, Status: domain.ScheduleStatusActive,
	}))

	// The quote was frozen before the run left.
	res, err := fin.Finalize(context.Background(), paidRequest(
		sharedItem("first", "run-a", 1),
		sharedItem("late", "run-past", 1),
	))

	assert.ErrorIs(t, err, ErrScheduleNotBookable)
	require.NotNil(t, res)
	assert.Equal(t, domain.OrderStatusFailed, res.Order.Status)
	assert.True(t, res.Order.NeedsRefund)
	assert.Equal(t, 0, f.bookedCount(t, "run-a"))
	assert.Equal(t, 0, f.bookedCount(t, "run-past"))
	assert.Empty(t, notifier.confirmations)
}

func TestFinalize_StoreFailureCompensates(t *testing.T) {
	f := newFixture(t)
	fin := newFinalizer(f, failingOrders{OrderRepository: f.orders}, nil)

	res, err := fin.Finalize(context.Background(), paidRequest(sharedItem("s", "run-a", 3)))

	assert.ErrorIs(t, err, ErrFinalizationFailed)
	assert.Equal(t, CodeReconciliationRequired, ResultCode(err))
	assert.Equal(t, 0, f.bookedCount(t, "run-a"))
	require.NotNil(t, res)
	assert.True(t, res.Order.NeedsRefund)
	assert.Empty(t, res.Order.InvoiceNumber)
}

func TestFinalize_CompensatesAfterCancellation(t *testing.T) {
	f := newFixture(t)
	fin := newFinalizer(f, failingOrders{OrderRepository: f.orders}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The memory stores ignore ctx, so reservations succeed; the release
	// must still run on a context that is not cancelled.
	_, err := fin.Finalize(ctx, paidRequest(sharedItem("s", "run-a", 1)))
	require.Error(t, err)
	assert.Equal(t, 0, f.bookedCount(t, "run-a"))
}

func TestFinalize_RejectsUnknownDetails(t *testing.T) {
	f := newFixture(t)
	fin := newFinalizer(f, f.orders, nil)

	_, err := fin.Finalize(context.Background(), paidRequest(domain.CartItem{ID: "odd", Price: domain.Major(1)}))
	assert.ErrorIs(t, err, ErrFinalizationFailed)
}

func TestCancelBooking_ReleasesSeatsOnce(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	fin := newFinalizer(f, f.orders, notifier)
	ctx := context.Background()

	res, err := fin.Finalize(ctx, paidRequest(sharedItem("s", "run-a", 2)))
	require.NoError(t, err)
	bookingID := res.Bookings[0].ID

	cancelled, err := fin.CancelBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 0, f.bookedCount(t, "run-a"))
	assert.Equal(t, []string{bookingID}, notifier.cancellations)

	_, err = fin.CancelBooking(ctx, bookingID)
	assert.ErrorIs(t, err, ErrBookingAlreadyCancelled)
	assert.Equal(t, 0, f.bookedCount(t, "run-a"))
}

func TestBuildInvoice(t *testing.T) {
	order := &domain.Order{
		ID:            "o1",
		Identity:      domain.GuestInfo{Name: "Ada", Email: "ada@example.com"},
		Items:         []domain.CartItem{hotelItem()},
		TotalPrice:    domain.Major(450),
		PaymentMethod: domain.PaymentMethodCard,
		TransactionID: "txn-1",
		InvoiceNumber: "INV-20261015-ABCDEF12",
		Invoice:       domain.CorporateInvoice{CompanyName: "Acme", TaxID: "1234567890", Address: "Main St 1"},
		CreatedAt:     time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}

	doc := BuildInvoice(order, "Pet Hotel")
	assert.Equal(t, "Acme", doc.BillTo)
	assert.Equal(t, "1234567890", doc.TaxRef)
	require.Len(t, doc.Lines, 1)
	assert.Contains(t, doc.Lines[0].Description, "3 nights")

	text := FormatInvoice(doc)
	assert.Contains(t, text, "INV-20261015-ABCDEF12")
	assert.Contains(t, text, "TOTAL: 450.00")
	assert.Contains(t, text, "Transaction: txn-1")
}
