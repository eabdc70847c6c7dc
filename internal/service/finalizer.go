package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// OrderFinalizer turns a captured payment into an order with bookings.
// Seats are reserved before anything is written; when a later step fails,
// the reservations of this attempt are released and the order is kept as
// failed with NeedsRefund set.
type OrderFinalizer struct {
	ledger    *AvailabilityLedger
	orderRepo repository.OrderRepository
	notifier  Notifier
	merchant  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderFinalizer creates a new OrderFinalizer.
func NewOrderFinalizer(
	ledger *AvailabilityLedger,
	orderRepo repository.OrderRepository,
	notifier Notifier,
	merchant string,
	logger *slog.Logger,
) *OrderFinalizer {
	return &OrderFinalizer{
		ledger:    ledger,
		orderRepo: orderRepo,
		notifier:  notifier,
		merchant:  merchant,
		logger:    logger,
		now:       time.Now,
	}
}

// FinalizeRequest contains a paid checkout.
type FinalizeRequest struct {
	CheckoutID string
	Identity   domain.Identity
	Items      []domain.CartItem
	Invoice    domain.InvoiceInfo
	Payment    *domain.PaymentAttempt
}

// FinalizeResult contains the committed order.
type FinalizeResult struct {
	Order    *domain.Order
	Bookings []*domain.Booking
}

type reservation struct {
	scheduleID string
	seats      int
}

// Finalize commits the order. On a consistency failure it returns the failed
// order together with the error: *CapacityError when a run filled up after
// the quote, ErrFinalizationFailed when the order could not be stored.
func (f *OrderFinalizer) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error) {
	defer newrelic.FromContext(ctx).StartSegment("checkout/finalize").End()

	now := f.now()
	order := &domain.Order{
		ID:            uuid.New().String(),
		CheckoutID:    req.CheckoutID,
		Identity:      req.Identity,
		Items:         req.Items,
		Status:        domain.OrderStatusPending,
		PaymentMethod: domain.PaymentMethodCard,
		TransactionID: req.Payment.TransactionID,
		Invoice:       req.Invoice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range req.Items {
		order.TotalPrice += item.Price
	}

	bookings := make([]*domain.Booking, 0, len(req.Items))
	for _, item := range req.Items {
		booking, err := newBooking(order.ID, item, now)
		if err != nil {
			return f.abort(ctx, order, nil, err)
		}
		bookings = append(bookings, booking)
	}

	// Reserve in cart order so concurrent checkouts contend predictably.
	var reserved []reservation
	for _, booking := range bookings {
		if !booking.HoldsSeats() {
			continue
		}
		if _, err := f.ledger.ReserveSeats(ctx, booking.ScheduleID, booking.SeatCount); err != nil {
			return f.abort(ctx, order, reserved, err)
		}
		reserved = append(reserved, reservation{scheduleID: booking.ScheduleID, seats: booking.SeatCount})
	}

	order.Status = domain.OrderStatusPaid
	order.InvoiceNumber = GenerateInvoiceNumber(now)

	if err := f.orderRepo.CreateWithBookings(ctx, order, bookings); err != nil {
		order.Status = domain.OrderStatusPending
		order.InvoiceNumber = ""
		return f.abort(ctx, order, reserved, fmt.Errorf("%w: %v", ErrFinalizationFailed, err))
	}

	f.logger.Info("order finalized",
		"order_id", order.ID,
		"checkout_id", req.CheckoutID,
		"bookings", len(bookings),
		"total", order.TotalPrice.String())

	f.notify(ctx, order, bookings)

	return &FinalizeResult{Order: order, Bookings: bookings}, nil
}

// abort releases the reservations made so far and stores the order as failed
// so the captured payment can be refunded.
func (f *OrderFinalizer) abort(ctx context.Context, order *domain.Order, reserved []reservation, cause error) (*FinalizeResult, error) {
	// Compensation must finish even if the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := f.ledger.ReleaseSeats(ctx, r.scheduleID, r.seats); err != nil {
			f.logger.Error("release seats during compensation",
				"order_id", order.ID,
				"schedule_id", r.scheduleID,
				"seats", r.seats,
				"error", err)
		}
	}

	order.Status = domain.OrderStatusFailed
	order.NeedsRefund = true
	order.FailureReason = cause.Error()
	order.UpdatedAt = f.now()

	if err := f.orderRepo.Create(ctx, order); err != nil {
		f.logger.Error("store failed order",
			"order_id", order.ID,
			"transaction_id", order.TransactionID,
			"error", err)
	}

	f.logger.Warn("order finalization aborted, refund required",
		"order_id", order.ID,
		"checkout_id", order.CheckoutID,
		"transaction_id", order.TransactionID,
		"reason", order.FailureReason)

	var capacityErr *CapacityError
	if !errors.As(cause, &capacityErr) &&
		!errors.Is(cause, ErrScheduleNotBookable) &&
		!errors.Is(cause, ErrFinalizationFailed) {
		cause = fmt.Errorf("%w: %v", ErrFinalizationFailed, cause)
	}

	return &FinalizeResult{Order: order}, cause
}

// notify sends the confirmation and the invoice. Failures never undo the order.
func (f *OrderFinalizer) notify(ctx context.Context, order *domain.Order, bookings []*domain.Booking) {
	if f.notifier == nil {
		return
	}

	summary := BookingSummary{OrderID: order.ID, Total: order.TotalPrice}
	for _, item := range order.Items {
		summary.Items = append(summary.Items, DescribeItem(item))
	}
	for _, b := range bookings {
		summary.BookingIDs = append(summary.BookingIDs, b.ID)
	}

	if err := f.notifier.SendConfirmation(ctx, order.Identity, summary); err != nil {
		f.logger.Warn("booking confirmation not sent", "order_id", order.ID, "error", err)
	}

	if err := f.notifier.SendInvoice(ctx, order.Identity, BuildInvoice(order, f.merchant)); err != nil {
		f.logger.Warn("invoice not sent", "order_id", order.ID, "invoice_number", order.InvoiceNumber, "error", err)
	}
}

// CancelBooking cancels a confirmed booking and gives its seats back.
func (f *OrderFinalizer) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := f.orderRepo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusCancelled {
		return nil, ErrBookingAlreadyCancelled
	}

	if err := f.orderRepo.UpdateBookingStatus(ctx, bookingID, domain.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatusCancelled

	if booking.HoldsSeats() {
		if err := f.ledger.ReleaseSeats(ctx, booking.ScheduleID, booking.SeatCount); err != nil {
			return nil, err
		}
	}

	f.logger.Info("booking cancelled", "booking_id", bookingID, "order_id", booking.OrderID)

	if canceller, ok := f.notifier.(interface {
		SendCancellation(ctx context.Context, identity domain.Identity, booking *domain.Booking) error
	}); ok {
		order, err := f.orderRepo.GetByID(ctx, booking.OrderID)
		if err == nil {
			err = canceller.SendCancellation(ctx, order.Identity, booking)
		}
		if err != nil {
			f.logger.Warn("cancellation notice not sent", "booking_id", bookingID, "error", err)
		}
	}

	return booking, nil
}

// GetOrder returns an order with its bookings.
func (f *OrderFinalizer) GetOrder(ctx context.Context, orderID string) (*FinalizeResult, error) {
	order, err := f.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	bookings, err := f.orderRepo.GetBookings(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &FinalizeResult{Order: order, Bookings: bookings}, nil
}

// ListNeedingRefund returns failed orders awaiting manual reconciliation.
func (f *OrderFinalizer) ListNeedingRefund(ctx context.Context) ([]*domain.Order, error) {
	return f.orderRepo.ListNeedingRefund(ctx)
}

// newBooking maps a cart item to its booking. Unknown details are rejected.
func newBooking(orderID string, item domain.CartItem, now time.Time) (*domain.Booking, error) {
	booking := &domain.Booking{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		Type:        item.Kind,
		ReferenceID: item.ReferenceID,
		TotalPrice:  item.Price,
		Status:      domain.BookingStatusConfirmed,
		CreatedAt:   now,
	}

	switch d := item.Details.(type) {
	case domain.HotelDetails:
		booking.CheckIn = d.CheckIn
		booking.CheckOut = d.CheckOut
		booking.SpecialRequests = d.SpecialRequests
	case domain.TaxiDetails:
		booking.ScheduledDate = d.TravelDate
		booking.SpecialRequests = d.SpecialRequests
		if d.IsShared() {
			booking.ScheduleID = d.ScheduleID
			booking.SeatCount = d.SeatCount
		}
	default:
		return nil, fmt.Errorf("cart item %s: unsupported booking details %T", item.ID, item.Details)
	}

	return booking, nil
}
