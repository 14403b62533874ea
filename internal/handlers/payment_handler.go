package handlers

import (
	"net/http"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type PaymentHandler struct {
	checkout *services.Checkout
	ledger   services.PaymentLedger
}

func NewPaymentHandler(checkout *services.Checkout, ledger services.PaymentLedger) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, ledger: ledger}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	var req models.CreatePaymentIntentRequest
	if !decodeJSON(w, r, &req) || !validate(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	pi, err := h.checkout.CreateIntent(ctx, id.Email, &req)
	if err != nil {
		writeServiceError(w, "Payment", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.PaymentIntentResponse{ClientSecret: pi.ClientSecret}))
}

// Record stores a payment once the provider confirms it. The payer is
// always the session user.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	var req models.RecordPaymentRequest
	if !decodeJSON(w, r, &req) || !validate(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	p, err := h.checkout.Confirm(ctx, id.Email, &req)
	if err != nil {
		writeServiceError(w, "Payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(p))
}

func (h *PaymentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.ledger.ListByEmail(ctx, id.Email)
	if err != nil {
		writeServiceError(w, "Payment", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *PaymentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.ledger.List(ctx)
	if err != nil {
		writeServiceError(w, "Payment", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}
