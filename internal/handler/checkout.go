package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pethotel/internal/domain"
	"pethotel/internal/service"
)

// CheckoutHandler handles HTTP requests for the checkout flow.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	cartService     *service.CartService
	auth            service.AuthProvider
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService, cartService *service.CartService, auth service.AuthProvider) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cartService,
		auth:            auth,
	}
}

// GuestInfoRequest is the HTTP request body for guest contact details.
type GuestInfoRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CardRequest carries card data. Only the last four digits are ever stored.
type CardRequest struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// InvoiceRequest carries billing data for either invoice type.
type InvoiceRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	NationalID  string `json:"national_id"`
	CompanyName string `json:"company_name"`
	TaxID       string `json:"tax_id"`
	Address     string `json:"address"`
}

// PayRequest is the HTTP request body for the payment step.
type PayRequest struct {
	Card    CardRequest    `json:"card"`
	Invoice InvoiceRequest `json:"invoice"`
}

// CompleteCheckoutRequest is the HTTP request body for a one-call checkout.
type CompleteCheckoutRequest struct {
	CheckoutID string            `json:"checkout_id"`
	Guest      *GuestInfoRequest `json:"guest"`
	Card       CardRequest       `json:"card"`
	Invoice    InvoiceRequest    `json:"invoice"`
}

func (r GuestInfoRequest) toDomain() domain.GuestInfo {
	return domain.GuestInfo{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

func (r CardRequest) toService() service.CardInput {
	return service.CardInput{Number: r.Number, Holder: r.Holder, Expiry: r.Expiry, CVV: r.CVV}
}

// toDomain returns nil for an unknown type; validation reports it.
func (r InvoiceRequest) toDomain() domain.InvoiceInfo {
	switch domain.InvoiceType(r.Type) {
	case domain.InvoiceTypeIndividual:
		return domain.IndividualInvoice{Name: r.Name, Surname: r.Surname, NationalID: r.NationalID}
	case domain.InvoiceTypeCorporate:
		return domain.CorporateInvoice{CompanyName: r.CompanyName, TaxID: r.TaxID, Address: r.Address}
	default:
		return nil
	}
}

// StartCheckout handles POST /v1/checkouts
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cart, err := h.cartService.Get(ctx, owner)
	if err != nil {
		respondError(c, err)
		return
	}

	checkout, err := h.checkoutService.Start(ctx, cart, h.auth.CurrentIdentity(ctx))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, checkoutResponse(checkout))
}

// requesterKeys lists the cart owner keys a request may act for. A guest who
// signs in during checkout still sends the session the cart was built under.
func requesterKeys(c *gin.Context) []string {
	var keys []string
	if user, ok := service.UserFromContext(c.Request.Context()); ok {
		keys = append(keys, user.OwnerKey())
	}
	if sid := c.GetHeader(HeaderSessionID); sid != "" {
		keys = append(keys, "session:"+sid)
	}
	return keys
}

// ownedCheckout loads a checkout for its owner. Anyone else gets not found.
func (h *CheckoutHandler) ownedCheckout(c *gin.Context, checkoutID string) (*service.Checkout, bool) {
	checkout, err := h.checkoutService.Get(c.Request.Context(), checkoutID)
	if err == nil && !checkout.OwnedBy(requesterKeys(c)...) {
		err = service.ErrCheckoutNotFound
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return checkout, true
}

// GetCheckout handles GET /v1/checkouts/:id
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	checkout, ok := h.ownedCheckout(c, c.Param("id"))
	if !ok {
		return
	}

	respondJSON(c, http.StatusOK, checkoutResponse(checkout))
}

// ChooseGuest handles POST /v1/checkouts/:id/guest
func (h *CheckoutHandler) ChooseGuest(c *gin.Context) {
	if _, ok := h.ownedCheckout(c, c.Param("id")); !ok {
		return
	}

	checkout, err := h.checkoutService.ChooseGuest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, checkoutResponse(checkout))
}

// SignIn handles POST /v1/checkouts/:id/sign-in
func (h *CheckoutHandler) SignIn(c *gin.Context) {
	if _, ok := h.ownedCheckout(c, c.Param("id")); !ok {
		return
	}

	ctx := c.Request.Context()
	user := h.auth.CurrentIdentity(ctx)
	if user == nil {
		respondError(c, service.ErrIdentityNotBound)
		return
	}

	checkout, err := h.checkoutService.SignIn(ctx, c.Param("id"), *user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, checkoutResponse(checkout))
}

// SubmitGuestInfo handles POST /v1/checkouts/:id/guest-info
func (h *CheckoutHandler) SubmitGuestInfo(c *gin.Context) {
	if _, ok := h.ownedCheckout(c, c.Param("id")); !ok {
		return
	}

	var req GuestInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	checkout, err := h.checkoutService.SubmitGuestInfo(c.Request.Context(), c.Param("id"), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, checkoutResponse(checkout))
}

// Pay handles POST /v1/checkouts/:id/pay
func (h *CheckoutHandler) Pay(c *gin.Context) {
	if _, ok := h.ownedCheckout(c, c.Param("id")); !ok {
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.checkoutService.Pay(c.Request.Context(), c.Param("id"), service.PaymentInput{
		Card:    req.Card.toService(),
		Invoice: req.Invoice.toDomain(),
	})
	h.respondResult(c, result, err)
}

// Complete handles POST /v1/checkout
func (h *CheckoutHandler) Complete(c *gin.Context) {
	var req CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()

	var identity domain.Identity
	if user := h.auth.CurrentIdentity(ctx); user != nil {
		identity = *user
	} else if req.Guest != nil {
		identity = req.Guest.toDomain()
	}

	var cart *domain.Cart
	if req.CheckoutID == "" {
		owner, ok := requireOwner(c)
		if !ok {
			return
		}
		var err error
		if cart, err = h.cartService.Get(ctx, owner); err != nil {
			respondError(c, err)
			return
		}
	} else if _, ok := h.ownedCheckout(c, req.CheckoutID); !ok {
		return
	}

	result, err := h.checkoutService.CompleteCheckout(ctx, service.CompleteCheckoutRequest{
		CheckoutID: req.CheckoutID,
		Cart:       cart,
		Identity:   identity,
		Invoice:    req.Invoice.toDomain(),
		Payment:    req.Card.toService(),
	})
	h.respondResult(c, result, err)
}

// ListAttempts handles GET /v1/checkouts/:id/attempts
func (h *CheckoutHandler) ListAttempts(c *gin.Context) {
	if _, ok := h.ownedCheckout(c, c.Param("id")); !ok {
		return
	}

	attempts, err := h.checkoutService.Attempts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]PaymentAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, PaymentAttemptResponse{
			ID:             a.ID,
			Amount:         moneyView(a.Amount),
			Status:         string(a.Status),
			TransactionID:  a.TransactionID,
			Reason:         a.Reason,
			CardLast4:      a.CardLast4,
			IdempotencyKey: a.IdempotencyKey,
			CreatedAt:      a.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}

func (h *CheckoutHandler) respondResult(c *gin.Context, result *service.OrderResult, err error) {
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, statusForCode(result.Code), orderResultResponse(result))
}
