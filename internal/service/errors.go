package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pethotel/internal/domain"
)

var (
	// ErrInvalidDateRange is returned when check-out is not after check-in.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidSeatCount is returned when a seat count is below one or above the remaining seats.
	ErrInvalidSeatCount = errors.New("invalid seat count")

	// ErrCapacityExceeded is returned when a schedule cannot take the requested seats.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrScheduleNotBookable is returned when a run is cancelled or in the past.
	ErrScheduleNotBookable = errors.New("schedule not bookable")

	// ErrRouteNotFound is returned when no distance can be resolved for a city pair.
	ErrRouteNotFound = errors.New("route not found")

	// ErrWrongTaxiType is returned when a taxi service does not match the requested booking.
	ErrWrongTaxiType = errors.New("wrong taxi type")

	// ErrPetCapacityExceeded is returned when more pets are booked than a room holds.
	ErrPetCapacityExceeded = errors.New("pet count exceeds room capacity")

	// ErrPetTooHeavy is returned when a pet exceeds the taxi's weight limit.
	ErrPetTooHeavy = errors.New("pet weight exceeds taxi limit")

	// ErrEmptyCart is returned when checking out a cart without items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidTransition is returned when a checkout step is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid checkout transition")

	// ErrIdentityNotBound is returned when payment starts before an identity is known.
	ErrIdentityNotBound = errors.New("identity not bound")

	// ErrCheckoutCompleted is returned when a completed checkout is submitted again.
	ErrCheckoutCompleted = errors.New("checkout already completed")

	// ErrCheckoutClosed is returned when paying a checkout whose order failed
	// after the charge. The failed order is waiting for a refund.
	ErrCheckoutClosed = errors.New("checkout closed after a failed order")

	// ErrCheckoutInProgress is returned when another request is finalizing the same checkout.
	ErrCheckoutInProgress = errors.New("checkout finalization in progress")

	// ErrCheckoutNotFound is returned when a checkout session id is unknown.
	ErrCheckoutNotFound = errors.New("checkout not found")

	// ErrCardExpired is returned when the card expiry is in the past.
	ErrCardExpired = errors.New("card expired")

	// ErrPaymentDeclined is matched by PaymentDeclinedError.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrGatewayUnavailable is returned on gateway transport errors and timeouts.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrFinalizationFailed is returned when a paid order could not be committed.
	ErrFinalizationFailed = errors.New("order finalization failed")

	// ErrBookingAlreadyCancelled is returned when cancelling a cancelled booking.
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")

	// ErrInvalidAmount is returned when a charge amount is not positive.
	ErrInvalidAmount = errors.New("invalid payment amount")
)

// InputError aggregates field-level validation messages.
// A specific cause such as ErrCardExpired is reachable through errors.Is.
type InputError struct {
	fields map[string][]string
	cause  error
}

func newInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

// IsInputError returns the InputError wrapped in err, or nil.
func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError
	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) merge(other *InputError) {
	if other == nil {
		return
	}
	for field, msgs := range other.fields {
		ie.fields[field] = append(ie.fields[field], msgs...)
	}
	if ie.cause == nil {
		ie.cause = other.cause
	}
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

// orNil lets validators return a typed nil as a plain nil error.
func (ie *InputError) orNil() error {
	if ie.fieldsCount() == 0 {
		return nil
	}
	return ie
}

func (ie *InputError) Error() string {
	names := make([]string, 0, len(ie.fields))
	for field := range ie.fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, field+": "+strings.Join(ie.fields[field], ", "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (ie *InputError) Unwrap() error {
	return ie.cause
}

// Fields returns the messages per field.
func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

// Has reports whether the field has at least one message.
func (ie *InputError) Has(field string) bool {
	return len(ie.fields[field]) > 0
}

// SeatCountError explains why a seat count was rejected.
type SeatCountError struct {
	Requested int
	Remaining int
}

func (e *SeatCountError) Error() string {
	return fmt.Sprintf("invalid seat count %d: %d seats remaining", e.Requested, e.Remaining)
}

func (e *SeatCountError) Is(target error) bool {
	return target == ErrInvalidSeatCount
}

// CapacityError is returned when a reservation would oversell a run.
type CapacityError struct {
	ScheduleID string
	Requested  int
	Remaining  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("schedule %s: requested %d seats, %d remaining", e.ScheduleID, e.Requested, e.Remaining)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

func newCapacityError(schedule *domain.SharedTaxiSchedule, requested int) *CapacityError {
	return &CapacityError{ScheduleID: schedule.ID, Requested: requested, Remaining: schedule.RemainingSeats()}
}

// PaymentDeclinedError carries the gateway's decline reason verbatim.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

func (e *PaymentDeclinedError) Is(target error) bool {
	return target == ErrPaymentDeclined
}

// Reason codes reported in OrderResult.Code.
const (
	CodeOK                     = "ok"
	CodeInvalidInput           = "invalid_input"
	CodeInvalidDateRange       = "invalid_date_range"
	CodeInvalidSeatCount       = "invalid_seat_count"
	CodeCapacityExceeded       = "capacity_exceeded"
	CodeScheduleNotBookable    = "schedule_not_bookable"
	CodeRouteNotFound          = "route_not_found"
	CodeEmptyCart              = "empty_cart"
	CodeIdentityRequired       = "identity_required"
	CodeInvalidTransition      = "invalid_transition"
	CodeCheckoutCompleted      = "checkout_completed"
	CodeCheckoutClosed         = "checkout_closed"
	CodeCheckoutInProgress     = "checkout_in_progress"
	CodeCardExpired            = "card_expired"
	CodePaymentDeclined        = "payment_declined"
	CodeGatewayUnavailable     = "gateway_unavailable"
	CodeReconciliationRequired = "reconciliation_required"
	CodeInternal               = "internal_error"
)

// ResultCode maps an error to a stable reason code.
func ResultCode(err error) string {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrCardExpired):
		return CodeCardExpired
	case IsInputError(err) != nil:
		return CodeInvalidInput
	case errors.Is(err, ErrInvalidDateRange):
		return CodeInvalidDateRange
	case errors.Is(err, ErrInvalidSeatCount):
		return CodeInvalidSeatCount
	case errors.Is(err, ErrCapacityExceeded):
		return CodeCapacityExceeded
	case errors.Is(err, ErrScheduleNotBookable):
		return CodeScheduleNotBookable
	case errors.Is(err, ErrRouteNotFound):
		return CodeRouteNotFound
	case errors.Is(err, ErrEmptyCart):
		return CodeEmptyCart
	case errors.Is(err, ErrIdentityNotBound):
		return CodeIdentityRequired
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrCheckoutClosed):
		return CodeCheckoutClosed
	case errors.Is(err, ErrCheckoutCompleted):
		return CodeCheckoutCompleted
	case errors.Is(err, ErrCheckoutInProgress):
		return CodeCheckoutInProgress
	case errors.Is(err, ErrPaymentDeclined):
		return CodePaymentDeclined
	case errors.Is(err, ErrGatewayUnavailable):
		return CodeGatewayUnavailable
	case errors.Is(err, ErrFinalizationFailed):
		return CodeReconciliationRequired
	default:
		return CodeInternal
	}
}
