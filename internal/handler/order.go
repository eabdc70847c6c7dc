package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pethotel/internal/service"
)

// OrderHandler handles HTTP requests for orders and bookings.
type OrderHandler struct {
	finalizer *service.OrderFinalizer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(finalizer *service.OrderFinalizer) *OrderHandler {
	return &OrderHandler{finalizer: finalizer}
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	result, err := h.finalizer.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, orderResponse(result.Order, result.Bookings))
}

// ListReconciliation handles GET /v1/orders/reconciliation
func (h *OrderHandler) ListReconciliation(c *gin.Context) {
	orders, err := h.finalizer.ListNeedingRefund(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderResponse(o, nil))
	}

	respondJSON(c, http.StatusOK, resp)
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *OrderHandler) CancelBooking(c *gin.Context) {
	booking, err := h.finalizer.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}
