package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type PremiumHandler struct {
	workflow *services.PremiumWorkflow
}

func NewPremiumHandler(workflow *services.PremiumWorkflow) *PremiumHandler {
	return &PremiumHandler{workflow: workflow}
}

func (h *PremiumHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	req, err := h.workflow.Submit(ctx, id.Email)
	if err != nil {
		writeServiceError(w, "Premium", err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(req))
}

// List returns every request to admins. With ?email= it returns the
// caller's own request as a one-element array, empty when none exists.
func (h *PremiumHandler) List(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	email := services.NormalizeEmail(r.URL.Query().Get("email"))

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if email != "" {
		if email != id.Email && !id.IsAdmin() {
			writeErr(w, http.StatusForbidden, models.KindAuthorization, "Forbidden")
			return
		}
		req, err := h.workflow.GetByEmail(ctx, email)
		if errors.Is(err, services.ErrPremiumRequestNotFound) {
			writeJSON(w, http.StatusOK, models.NewSuccessResponse([]*models.PremiumRequest{}))
			return
		}
		if err != nil {
			writeServiceError(w, "Premium", err)
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse([]*models.PremiumRequest{req}))
		return
	}

	if !id.IsAdmin() {
		writeErr(w, http.StatusForbidden, models.KindAuthorization, "Forbidden")
		return
	}
	list, err := h.workflow.List(ctx)
	if err != nil {
		writeServiceError(w, "Premium", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *PremiumHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req models.SetPremiumStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Status = models.PremiumStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	updated, err := h.workflow.SetStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, "Premium", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(updated))
}

func (h *PremiumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	deleted, err := h.workflow.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Premium", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(deleted))
}
