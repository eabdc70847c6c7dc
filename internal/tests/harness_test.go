package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"pethotel/internal/app"
	"pethotel/internal/config"
	"pethotel/internal/domain"
	"pethotel/internal/handler"
	"pethotel/internal/metrics"
	"pethotel/internal/service"
)

// Test cards. All pass the Luhn check; the endings drive the simulated provider.
const (
	cardOK       = "4532015112830366"
	cardDeclined = "4000000000000002"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}

// harness runs the full HTTP stack over in-memory stores.
type harness struct {
	router    *gin.Engine
	stores    app.Stores
	orders    *MockOrderRepository
	gateway   *MockPaymentGateway
	publisher *MockEventPublisher
	locks     *MockLockStore
	registry  *prometheus.Registry
}

func today() time.Time {
	return domain.StartOfDay(time.Now())
}

func dateString(offset int) string {
	return today().AddDate(0, 0, offset).Format("2006-01-02")
}

// newHarness seeds:
//   - room-std: 150/night, 2 pets
//   - taxi-vip: base 50, 15/km; Istanbul-Ankara is 100 km
//   - taxi-shared with run-a (4 seats), run-b (3 seats), run-full (2 of 2 booked)
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	h := &harness{
		stores:    app.NewMemoryStores(),
		orders:    NewMockOrderRepository(),
		gateway:   NewMockPaymentGateway(),
		publisher: NewMockEventPublisher(),
		locks:     NewMockLockStore(),
		registry:  prometheus.NewRegistry(),
	}
	h.stores.Orders = h.orders

	require.NoError(t, h.stores.Catalog.UpsertRoom(ctx, &domain.HotelRoom{
		ID: "room-std", Name: "Standard", Type: domain.RoomTypeStandard, Capacity: 2, PricePerNight: domain.Major(150),
	}))
	require.NoError(t, h.stores.Catalog.UpsertTaxiService(ctx, &domain.TaxiService{
		ID: "taxi-vip", Name: "VIP", TaxiType: domain.TaxiTypeVIP,
		BasePrice: domain.Major(50), PricePerKm: domain.Major(15), MaxPetWeight: 30, Capacity: 2,
	}))
	require.NoError(t, h.stores.Catalog.UpsertTaxiService(ctx, &domain.TaxiService{
		ID: "taxi-shared", Name: "Shared", TaxiType: domain.TaxiTypeShared, MaxPetWeight: 15, Capacity: 8,
	}))
	require.NoError(t, h.stores.Catalog.UpsertCityPricing(ctx, domain.CityPricing{
		FromCity: "Istanbul", ToCity: "Ankara", DistanceKm: 100,
	}))

	for _, s := range []domain.SharedTaxiSchedule{
		{ID: "run-a", MaxCapacity: 4, TravelDate: today().AddDate(0, 0, 10)},
		{ID: "run-b", MaxCapacity: 3, TravelDate: today().AddDate(0, 0, 11)},
		{ID: "run-full", MaxCapacity: 2, BookedCount: 2, TravelDate: today().AddDate(0, 0, 12)},
	} {
		s := s
		s.TaxiServiceID = "taxi-shared"
		s.FromCity, s.ToCity = "Istanbul", "Ankara"
		s.DepartureTime = "09:00"
		s.PricePerSeat = domain.Major(150)
		s.Status = domain.ScheduleStatusActive
		require.NoError(t, h.stores.Schedules.Create(ctx, &s))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.New(h.registry)
	integration := config.IntegrationConfig{EmailEnabled: true, MerchantName: "Pet Hotel"}

	ledger := service.NewAvailabilityLedger(h.stores.Schedules, logger, service.WithLedgerMetrics(recorder))
	cartService := service.NewCartService(h.stores.Catalog, ledger, h.stores.Carts, service.DefaultPricingConfig(), recorder, logger)
	notifications := service.NewNotificationService(h.publisher, "notifications", integration, recorder, logger)
	payments := service.NewPaymentOrchestrator(h.stores.Payments, h.gateway, 5*time.Second, recorder, logger)
	finalizer := service.NewOrderFinalizer(ledger, h.orders, notifications, integration.MerchantName, logger)
	checkoutService := service.NewCheckoutService(service.NewCheckoutStore(), h.stores.Carts, payments, finalizer, h.locks, recorder, logger)

	h.router = app.NewRouter(app.RouterDeps{
		CatalogHandler:  handler.NewCatalogHandler(h.stores.Catalog, ledger),
		CartHandler:     handler.NewCartHandler(cartService),
		CheckoutHandler: handler.NewCheckoutHandler(checkoutService, cartService, service.ContextAuthProvider{}),
		OrderHandler:    handler.NewOrderHandler(finalizer),
		MetricsGatherer: h.registry,
	})

	return h
}

// do sends a request through the router. body is encoded as JSON when set.
func (h *harness) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func (h *harness) remainingSeats(t *testing.T, scheduleID string) int {
	t.Helper()
	s, err := h.stores.Schedules.GetByID(context.Background(), scheduleID)
	require.NoError(t, err)
	return s.RemainingSeats()
}

func guestSession(id string) map[string]string {
	return map[string]string{handler.HeaderSessionID: id}
}

func member(id string) map[string]string {
	return map[string]string{
		"X-User-ID":    id,
		"X-User-Email": id + "@example.com",
		"X-User-Name":  "Member " + id,
		"X-User-Phone": "5551234567",
	}
}

func sharedSeats(scheduleID string, seats int) handler.SharedTaxiRequest {
	return handler.SharedTaxiRequest{ScheduleID: scheduleID, SeatCount: seats, PetWeightKg: 8}
}

func hotelStay(nights int) handler.HotelRequest {
	return handler.HotelRequest{RoomID: "room-std", CheckIn: dateString(5), CheckOut: dateString(5 + nights), PetCount: 1}
}

func guestContact() *handler.GuestInfoRequest {
	return &handler.GuestInfoRequest{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555 123 45 67"}
}

func card(number string) handler.CardRequest {
	return handler.CardRequest{Number: number, Holder: "Ada Lovelace", Expiry: "12/99", CVV: "123"}
}

func invoice() handler.InvoiceRequest {
	return handler.InvoiceRequest{Type: "individual", Name: "Ada", Surname: "Lovelace", NationalID: "12345678901"}
}
