package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
	"pethotel/internal/service"
)

// CatalogHandler serves reference data and shared taxi availability.
type CatalogHandler struct {
	catalog repository.CatalogRepository
	ledger  *service.AvailabilityLedger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog repository.CatalogRepository, ledger *service.AvailabilityLedger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, ledger: ledger}
}

// RoomResponse is a hotel room.
type RoomResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Capacity      int       `json:"capacity"`
	PricePerNight MoneyView `json:"price_per_night"`
	Amenities     []string  `json:"amenities"`
}

// AddOnResponse is an optional hotel service.
type AddOnResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Price MoneyView `json:"price"`
}

// TaxiServiceResponse is a pet taxi offering.
type TaxiServiceResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	BasePrice    MoneyView `json:"base_price"`
	PricePerKm   MoneyView `json:"price_per_km"`
	MaxPetWeight float64   `json:"max_pet_weight_kg"`
	Capacity     int       `json:"capacity"`
	Features     []string  `json:"features"`
}

// RouteResponse is a known inter-city route.
type RouteResponse struct {
	FromCity      string    `json:"from_city"`
	ToCity        string    `json:"to_city"`
	DistanceKm    float64   `json:"distance_km"`
	AdditionalFee MoneyView `json:"additional_fee"`
	DiscountPct   float64   `json:"discount_pct"`
}

// ListRooms handles GET /v1/rooms
func (h *CatalogHandler) ListRooms(c *gin.Context) {
	rooms, err := h.catalog.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		resp = append(resp, RoomResponse{
			ID:            r.ID,
			Name:          r.Name,
			Type:          string(r.Type),
			Capacity:      r.Capacity,
			PricePerNight: moneyView(r.PricePerNight),
			Amenities:     r.Amenities,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}

// ListAddOns handles GET /v1/add-ons
func (h *CatalogHandler) ListAddOns(c *gin.Context) {
	addOns, err := h.catalog.ListAddOns(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]AddOnResponse, 0, len(addOns))
	for _, a := range addOns {
		resp = append(resp, AddOnResponse{ID: a.ID, Name: a.Name, Price: moneyView(a.Price)})
	}

	respondJSON(c, http.StatusOK, resp)
}

// ListTaxiServices handles GET /v1/taxi-services
func (h *CatalogHandler) ListTaxiServices(c *gin.Context) {
	services, err := h.catalog.ListTaxiServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]TaxiServiceResponse, 0, len(services))
	for _, s := range services {
		resp = append(resp, TaxiServiceResponse{
			ID:           s.ID,
			Name:         s.Name,
			Type:         string(s.TaxiType),
			BasePrice:    moneyView(s.BasePrice),
			PricePerKm:   moneyView(s.PricePerKm),
			MaxPetWeight: s.MaxPetWeight,
			Capacity:     s.Capacity,
			Features:     s.Features,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}

// ListRoutes handles GET /v1/routes
func (h *CatalogHandler) ListRoutes(c *gin.Context) {
	routes, err := h.catalog.ListCityPricing(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		resp = append(resp, RouteResponse{
			FromCity:      r.FromCity,
			ToCity:        r.ToCity,
			DistanceKm:    r.DistanceKm,
			AdditionalFee: moneyView(r.AdditionalFee),
			DiscountPct:   r.DiscountPct,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}

// routeQuery reads service_id, from and to from the query string.
func routeQuery(c *gin.Context) (serviceID, from, to string, ok bool) {
	serviceID, from, to = c.Query("service_id"), c.Query("from"), c.Query("to")
	if serviceID == "" || from == "" || to == "" {
		badRequest(c, "service_id, from and to are required")
		return "", "", "", false
	}
	return serviceID, from, to, true
}

// ListSchedules handles GET /v1/schedules
func (h *CatalogHandler) ListSchedules(c *gin.Context) {
	serviceID, from, to, ok := routeQuery(c)
	if !ok {
		return
	}

	schedules, err := h.ledger.FindBookableSchedules(c.Request.Context(), serviceID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	if date := c.Query("date"); date != "" {
		day, err := parseDate(date)
		if err != nil {
			badRequest(c, "date must use YYYY-MM-DD")
			return
		}
		schedules = onDate(schedules, day)
	}

	resp := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, scheduleResponse(s))
	}

	respondJSON(c, http.StatusOK, resp)
}

// AvailableDates handles GET /v1/schedules/dates
func (h *CatalogHandler) AvailableDates(c *gin.Context) {
	serviceID, from, to, ok := routeQuery(c)
	if !ok {
		return
	}

	dates, err := h.ledger.AvailableDates(c.Request.Context(), serviceID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]string, 0, len(dates))
	for _, d := range dates {
		resp = append(resp, formatDate(d))
	}

	respondJSON(c, http.StatusOK, gin.H{"dates": resp})
}

// GetSchedule handles GET /v1/schedules/:id
func (h *CatalogHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.ledger.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, scheduleResponse(schedule))
}

// CancelSchedule handles POST /v1/schedules/:id/cancel
func (h *CatalogHandler) CancelSchedule(c *gin.Context) {
	if err := h.ledger.CancelSchedule(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	schedule, err := h.ledger.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, scheduleResponse(schedule))
}

func onDate(schedules []*domain.SharedTaxiSchedule, day time.Time) []*domain.SharedTaxiSchedule {
	var result []*domain.SharedTaxiSchedule
	for _, s := range schedules {
		if s.TravelDate.Equal(day) {
			result = append(result, s)
		}
	}
	return result
}
