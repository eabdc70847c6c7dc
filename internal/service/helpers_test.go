package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pethotel/internal/domain"
	"pethotel/internal/repository/memory"
)

// Test cards. All pass the Luhn check; the endings drive SimulatedGateway.
const (
	cardOK       = "4532015112830366"
	cardDeclined = "4000000000000002"
	cardExpired  = "4000000000000069"
	cardError    = "4000000000000119"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time { return testNow }

func day(offset int) time.Time {
	return domain.StartOfDay(testNow).AddDate(0, 0, offset)
}

func validCard(number string) CardInput {
	return CardInput{Number: number, Holder: "Ada Lovelace", Expiry: "12/99", CVV: "123"}
}

func individualInvoice() domain.InvoiceInfo {
	return domain.IndividualInvoice{Name: "Ada", Surname: "Lovelace", NationalID: "12345678901"}
}

type fixture struct {
	catalog   *memory.CatalogStore
	schedules *memory.ScheduleStore
	orders    *memory.OrderStore
	attempts  *memory.PaymentAttemptStore
	carts     *memory.CartStore
	ledger    *AvailabilityLedger
	cartSvc   *CartService
}

// newFixture seeds a small catalog:
//   - room-std: 150/night, 2 pets; add-on groom: 40
//   - taxi-vip: base 50, 15/km, max 30 kg
//   - Istanbul-Ankara: 100 km, fee 100, 10% off
//   - taxi-shared with run-a (4 seats), run-b (3 seats), run-full (2 of 2 booked)
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		catalog:   memory.NewCatalogStore(),
		schedules: memory.NewScheduleStore(),
		orders:    memory.NewOrderStore(),
		attempts:  memory.NewPaymentAttemptStore(),
		carts:     memory.NewCartStore(),
	}

	require.NoError(t, f.catalog.UpsertRoom(ctx, &domain.HotelRoom{
		ID: "room-std", Name: "Standard", Type: domain.RoomTypeStandard, Capacity: 2, PricePerNight: domain.Major(150),
	}))
	require.NoError(t, f.catalog.UpsertAddOn(ctx, &domain.HotelAddOn{ID: "groom", Name: "Grooming", Price: domain.Major(40)}))
	require.NoError(t, f.catalog.UpsertTaxiService(ctx, &domain.TaxiService{
		ID: "taxi-vip", Name: "VIP", TaxiType: domain.TaxiTypeVIP,
		BasePrice: domain.Major(50), PricePerKm: domain.Major(15), MaxPetWeight: 30, Capacity: 2,
	}))
	require.NoError(t, f.catalog.UpsertTaxiService(ctx, &domain.TaxiService{
		ID: "taxi-shared", Name: "Shared", TaxiType: domain.TaxiTypeShared, MaxPetWeight: 15, Capacity: 8,
	}))
	require.NoError(t, f.catalog.UpsertCityPricing(ctx, domain.CityPricing{
		FromCity: "Istanbul", ToCity: "Ankara", DistanceKm: 100, AdditionalFee: domain.Major(100), DiscountPct: 10,
	}))

	for _, s := range []domain.SharedTaxiSchedule{
		{ID: "run-a", MaxCapacity: 4, TravelDate: day(10), DepartureTime: "09:00"},
		{ID: "run-b", MaxCapacity: 3, TravelDate: day(11), DepartureTime: "09:00"},
		{ID: "run-full", MaxCapacity: 2, BookedCount: 2, TravelDate: day(12), DepartureTime: "09:00"},
	} {
		s := s
		s.TaxiServiceID = "taxi-shared"
		s.FromCity, s.ToCity = "Istanbul", "Ankara"
		s.PricePerSeat = domain.Major(150)
		s.Status = domain.ScheduleStatusActive
		require.NoError(t, f.schedules.Create(ctx, &s))
	}

	f.ledger = NewAvailabilityLedger(f.schedules, discardLogger(), WithLedgerClock(fixedClock))
	f.cartSvc = NewCartService(f.catalog, f.ledger, f.carts, DefaultPricingConfig(), nil, discardLogger())
	f.cartSvc.now = fixedClock

	return f
}

func (f *fixture) bookedCount(t *testing.T, scheduleID string) int {
	t.Helper()
	s, err := f.schedules.GetByID(context.Background(), scheduleID)
	require.NoError(t, err)
	return s.BookedCount
}

// sharedItem builds a quoted shared taxi item without going through a cart.
func sharedItem(id, scheduleID string, seats int) domain.CartItem {
	return domain.CartItem{
		ID: id, Kind: domain.ItemKindTaxi, ReferenceID: "taxi-shared", Quantity: seats,
		Price: domain.Major(150).Mul(seats),
		Details: domain.TaxiDetails{
			ServiceID: "taxi-shared", TaxiType: domain.TaxiTypeShared,
			FromCity: "Istanbul", ToCity: "Ankara", TravelDate: day(10),
			ScheduleID: scheduleID, SeatCount: seats,
		},
	}
}

// recordingNotifier captures what the finalizer sends.
type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []BookingSummary
	invoices      []InvoiceDocument
	cancellations []string
	err           error
}

func (n *recordingNotifier) SendConfirmation(_ context.Context, _ domain.Identity, summary BookingSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, summary)
	return n.err
}

func (n *recordingNotifier) SendInvoice(_ context.Context, _ domain.Identity, invoice InvoiceDocument) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invoices = append(n.invoices, invoice)
	return n.err
}

func (n *recordingNotifier) SendCancellation(_ context.Context, _ domain.Identity, booking *domain.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancellations = append(n.cancellations, booking.ID)
	return n.err
}

// recordingPublisher captures published payloads.
type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	keys     []string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return nil
}

// stubGateway answers every charge with the same result.
type stubGateway struct {
	mu     sync.Mutex
	calls  int
	result ChargeResult
	err    error
	block  chan struct{}
}

func (g *stubGateway) Charge(ctx context.Context, _ ChargeRequest) (ChargeResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return ChargeResult{}, ctx.Err()
		}
	}
	return g.result, g.err
}

func (g *stubGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errStoreDown = errors.New("store unavailable")
