package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pethotel/internal/service"
)

// HeaderSessionID identifies a guest's browser session.
const HeaderSessionID = "X-Session-ID"

// CartHandler handles HTTP requests for quotes and the cart.
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// HotelRequest is the HTTP request body for a hotel stay.
type HotelRequest struct {
	RoomID          string   `json:"room_id"`
	CheckIn         string   `json:"check_in"`
	CheckOut        string   `json:"check_out"`
	PetCount        int      `json:"pet_count"`
	AddOnIDs        []string `json:"add_on_ids"`
	SpecialRequests string   `json:"special_requests"`
}

// VipTaxiRequest is the HTTP request body for a private taxi trip.
type VipTaxiRequest struct {
	ServiceID       string  `json:"service_id"`
	FromCity        string  `json:"from_city"`
	ToCity          string  `json:"to_city"`
	TravelDate      string  `json:"travel_date"`
	IsRoundTrip     bool    `json:"is_round_trip"`
	PetWeightKg     float64 `json:"pet_weight_kg"`
	SpecialRequests string  `json:"special_requests"`
}

// SharedTaxiRequest is the HTTP request body for seats on a shared run.
type SharedTaxiRequest struct {
	ScheduleID      string  `json:"schedule_id"`
	SeatCount       int     `json:"seat_count"`
	PetWeightKg     float64 `json:"pet_weight_kg"`
	SpecialRequests string  `json:"special_requests"`
}

// ownerKey scopes the cart: members by user id, guests by session id.
func ownerKey(c *gin.Context) string {
	if user, ok := service.UserFromContext(c.Request.Context()); ok {
		return user.OwnerKey()
	}
	if sid := c.GetHeader(HeaderSessionID); sid != "" {
		return "session:" + sid
	}
	return ""
}

func requireOwner(c *gin.Context) (string, bool) {
	key := ownerKey(c)
	if key == "" {
		badRequest(c, HeaderSessionID+" header is required for guests")
		return "", false
	}
	return key, true
}

func (r HotelRequest) toService() (service.AddHotelRequest, error) {
	checkIn, err := parseDate(r.CheckIn)
	if err != nil {
		return service.AddHotelRequest{}, err
	}
	checkOut, err := parseDate(r.CheckOut)
	if err != nil {
		return service.AddHotelRequest{}, err
	}
	return service.AddHotelRequest{
		RoomID:          r.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		PetCount:        r.PetCount,
		AddOnIDs:        r.AddOnIDs,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

func (r VipTaxiRequest) toService() (service.AddVipTaxiRequest, error) {
	date, err := parseDate(r.TravelDate)
	if err != nil {
		return service.AddVipTaxiRequest{}, err
	}
	return service.AddVipTaxiRequest{
		ServiceID:       r.ServiceID,
		FromCity:        r.FromCity,
		ToCity:          r.ToCity,
		TravelDate:      date,
		IsRoundTrip:     r.IsRoundTrip,
		PetWeightKg:     r.PetWeightKg,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

func (r SharedTaxiRequest) toService() service.AddSharedTaxiRequest {
	return service.AddSharedTaxiRequest{
		ScheduleID:      r.ScheduleID,
		SeatCount:       r.SeatCount,
		PetWeightKg:     r.PetWeightKg,
		SpecialRequests: r.SpecialRequests,
	}
}

// QuoteHotel handles POST /v1/quotes/hotel
func (h *CartHandler) QuoteHotel(c *gin.Context) {
	var req HotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	in, err := req.toService()
	if err != nil {
		badRequest(c, "dates must use YYYY-MM-DD")
		return
	}

	item, err := h.cartService.QuoteHotelItem(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cartItemResponse(item))
}

// QuoteVipTaxi handles POST /v1/quotes/vip-taxi
func (h *CartHandler) QuoteVipTaxi(c *gin.Context) {
	var req VipTaxiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	in, err := req.toService()
	if err != nil {
		badRequest(c, "travel_date must use YYYY-MM-DD")
		return
	}

	item, err := h.cartService.QuoteVipTaxiItem(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cartItemResponse(item))
}

// QuoteSharedTaxi handles POST /v1/quotes/shared-taxi
func (h *CartHandler) QuoteSharedTaxi(c *gin.Context) {
	var req SharedTaxiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	item, err := h.cartService.QuoteSharedTaxiItem(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cartItemResponse(item))
}

// GetCart handles GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cartResponse(cart))
}

// AddHotel handles POST /v1/cart/hotel
func (h *CartHandler) AddHotel(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req HotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	in, err := req.toService()
	if err != nil {
		badRequest(c, "dates must use YYYY-MM-DD")
		return
	}

	cart, err := h.cartService.AddHotel(c.Request.Context(), owner, in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, cartResponse(cart))
}

// AddVipTaxi handles POST /v1/cart/vip-taxi
func (h *CartHandler) AddVipTaxi(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req VipTaxiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	in, err := req.toService()
	if err != nil {
		badRequest(c, "travel_date must use YYYY-MM-DD")
		return
	}

	cart, err := h.cartService.AddVipTaxi(c.Request.Context(), owner, in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, cartResponse(cart))
}

// AddSharedTaxi handles POST /v1/cart/shared-taxi
func (h *CartHandler) AddSharedTaxi(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req SharedTaxiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	cart, err := h.cartService.AddSharedTaxi(c.Request.Context(), owner, req.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, cartResponse(cart))
}

// RemoveItem handles DELETE /v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cartResponse(cart))
}

// RequoteItem handles POST /v1/cart/items/:id/requote
func (h *CartHandler) RequoteItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Requote(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, cartResponse(cart))
}

// ClearCart handles DELETE /v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
