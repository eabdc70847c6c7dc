package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
	"pethotel/internal/service"
)

const dateLayout = "2006-01-02"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}

	resp := ErrorResponse{Error: err.Error(), Code: service.ResultCode(err)}
	if ie := service.IsInputError(err); ie != nil {
		resp.Fields = ie.Fields()
	}
	c.JSON(code, resp)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// badRequest rejects a malformed request body or query.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: service.CodeInvalidInput})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrCheckoutNotFound),
		errors.Is(err, domain.ErrCartItemNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case service.IsInputError(err) != nil,
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrWrongTaxiType),
		errors.Is(err, service.ErrPetCapacityExceeded),
		errors.Is(err, service.ErrPetTooHeavy),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrRouteNotFound):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrIdentityNotBound):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrPaymentDeclined):
		return http.StatusPaymentRequired

	// Conflict errors
	case errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrScheduleNotBookable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrCheckoutCompleted),
		errors.Is(err, service.ErrCheckoutClosed),
		errors.Is(err, service.ErrCheckoutInProgress),
		errors.Is(err, service.ErrBookingAlreadyCancelled):
		return http.StatusConflict

	// Upstream failures
	case errors.Is(err, service.ErrGatewayUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// statusForCode maps an OrderResult reason code to an HTTP status.
func statusForCode(code string) int {
	switch code {
	case service.CodeOK:
		return http.StatusCreated
	case service.CodeInvalidInput, service.CodeInvalidDateRange, service.CodeInvalidSeatCount,
		service.CodeEmptyCart, service.CodeCardExpired, service.CodeRouteNotFound:
		return http.StatusBadRequest
	case service.CodeIdentityRequired:
		return http.StatusUnauthorized
	case service.CodePaymentDeclined:
		return http.StatusPaymentRequired
	case service.CodeGatewayUnavailable:
		return http.StatusBadGateway
	case service.CodeReconciliationRequired:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

// parseDate reads a calendar date in YYYY-MM-DD form.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return domain.StartOfDay(t), nil
}
