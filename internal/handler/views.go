package handler

import (
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/service"
)

// MoneyView shows an amount both ways: formatted and in minor units.
type MoneyView struct {
	Amount string `json:"amount"`
	Minor  int64  `json:"minor"`
}

func moneyView(m domain.Money) MoneyView {
	return MoneyView{Amount: m.String(), Minor: int64(m)}
}

// CartItemResponse is a quoted line item.
type CartItemResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"reference_id"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       MoneyView `json:"price"`
	QuotedAt    time.Time `json:"quoted_at"`
}

func cartItemResponse(item domain.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:          item.ID,
		Kind:        string(item.Kind),
		ReferenceID: item.ReferenceID,
		Description: service.DescribeItem(item),
		Quantity:    item.Quantity,
		Price:       moneyView(item.Price),
		QuotedAt:    item.QuotedAt,
	}
}

// CartResponse is the HTTP response for cart operations.
type CartResponse struct {
	ID    string             `json:"id"`
	Items []CartItemResponse `json:"items"`
	Total MoneyView          `json:"total"`
}

func cartResponse(cart *domain.Cart) CartResponse {
	resp := CartResponse{ID: cart.ID, Items: []CartItemResponse{}, Total: moneyView(cart.Total())}
	for _, item := range cart.ItemsInOrder() {
		resp.Items = append(resp.Items, cartItemResponse(item))
	}
	return resp
}

// BookingResponse is a committed booking.
type BookingResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	Type          string    `json:"type"`
	ReferenceID   string    `json:"reference_id"`
	CheckIn       string    `json:"check_in,omitempty"`
	CheckOut      string    `json:"check_out,omitempty"`
	ScheduledDate string    `json:"scheduled_date,omitempty"`
	ScheduleID    string    `json:"schedule_id,omitempty"`
	SeatCount     int       `json:"seat_count,omitempty"`
	TotalPrice    MoneyView `json:"total_price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func bookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		OrderID:       b.OrderID,
		Type:          string(b.Type),
		ReferenceID:   b.ReferenceID,
		CheckIn:       formatDate(b.CheckIn),
		CheckOut:      formatDate(b.CheckOut),
		ScheduledDate: formatDate(b.ScheduledDate),
		ScheduleID:    b.ScheduleID,
		SeatCount:     b.SeatCount,
		TotalPrice:    moneyView(b.TotalPrice),
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

// OrderResponse is an order with its bookings.
type OrderResponse struct {
	ID            string             `json:"id"`
	CheckoutID    string             `json:"checkout_id"`
	Status        string             `json:"status"`
	Total         MoneyView          `json:"total"`
	InvoiceNumber string             `json:"invoice_number,omitempty"`
	TransactionID string             `json:"transaction_id,omitempty"`
	NeedsRefund   bool               `json:"needs_refund"`
	FailureReason string             `json:"failure_reason,omitempty"`
	ContactEmail  string             `json:"contact_email"`
	Items         []CartItemResponse `json:"items"`
	Bookings      []BookingResponse  `json:"bookings,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func orderResponse(o *domain.Order, bookings []*domain.Booking) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		CheckoutID:    o.CheckoutID,
		Status:        string(o.Status),
		Total:         moneyView(o.TotalPrice),
		InvoiceNumber: o.InvoiceNumber,
		TransactionID: o.TransactionID,
		NeedsRefund:   o.NeedsRefund,
		FailureReason: o.FailureReason,
		Items:         []CartItemResponse{},
		CreatedAt:     o.CreatedAt,
	}
	if o.Identity != nil {
		resp.ContactEmail = o.Identity.ContactEmail()
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, cartItemResponse(item))
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, bookingResponse(b))
	}
	return resp
}

// ScheduleResponse is a shared taxi run.
type ScheduleResponse struct {
	ID             string    `json:"id"`
	ServiceID      string    `json:"service_id"`
	FromCity       string    `json:"from_city"`
	ToCity         string    `json:"to_city"`
	TravelDate     string    `json:"travel_date"`
	DepartureTime  string    `json:"departure_time"`
	PricePerSeat   MoneyView `json:"price_per_seat"`
	MaxCapacity    int       `json:"max_capacity"`
	RemainingSeats int       `json:"remaining_seats"`
	Status         string    `json:"status"`
}

func scheduleResponse(s *domain.SharedTaxiSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:             s.ID,
		ServiceID:      s.TaxiServiceID,
		FromCity:       s.FromCity,
		ToCity:         s.ToCity,
		TravelDate:     formatDate(s.TravelDate),
		DepartureTime:  s.DepartureTime,
		PricePerSeat:   moneyView(s.PricePerSeat),
		MaxCapacity:    s.MaxCapacity,
		RemainingSeats: s.RemainingSeats(),
		Status:         string(s.Status),
	}
}

// CheckoutResponse is the state of a checkout.
type CheckoutResponse struct {
	ID            string    `json:"id"`
	State         string    `json:"state"`
	Total         MoneyView `json:"total"`
	Attempts      int       `json:"attempts"`
	LastReason    string    `json:"last_reason,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	FailedOrderID string    `json:"failed_order_id,omitempty"`
	Identified    bool      `json:"identified"`
}

func checkoutResponse(c *service.Checkout) CheckoutResponse {
	return CheckoutResponse{
		ID:            c.ID,
		State:         string(c.State),
		Total:         moneyView(c.Cart.Total()),
		Attempts:      c.Attempts,
		LastReason:    c.LastReason,
		OrderID:       c.OrderID,
		FailedOrderID: c.FailedOrderID,
		Identified:    c.Identity != nil,
	}
}

// OrderResultResponse is the discriminated outcome of a checkout attempt.
type OrderResultResponse struct {
	Success    bool                `json:"success"`
	CheckoutID string              `json:"checkout_id,omitempty"`
	State      string              `json:"state,omitempty"`
	Code       string              `json:"code"`
	Message    string              `json:"message,omitempty"`
	Fields     map[string][]string `json:"fields,omitempty"`
	Order      *OrderResponse      `json:"order,omitempty"`
}

func orderResultResponse(r *service.OrderResult) OrderResultResponse {
	resp := OrderResultResponse{
		Success:    r.Success,
		CheckoutID: r.CheckoutID,
		State:      string(r.State),
		Code:       r.Code,
		Message:    r.Message,
		Fields:     r.Fields,
	}
	if r.Order != nil {
		order := orderResponse(r.Order, r.Bookings)
		resp.Order = &order
	}
	return resp
}

// PaymentAttemptResponse is one entry of the payment audit trail.
type PaymentAttemptResponse struct {
	ID             string    `json:"id"`
	Amount         MoneyView `json:"amount"`
	Status         string    `json:"status"`
	TransactionID  string    `json:"transaction_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CardLast4      string    `json:"card_last4"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
