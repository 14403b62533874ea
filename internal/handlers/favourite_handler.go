package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type FavouriteHandler struct {
	favourites services.FavouriteStore
	biodatas   services.BiodataStore
	gate       *services.ContactGate
}

func NewFavouriteHandler(favourites services.FavouriteStore, biodatas services.BiodataStore, gate *services.ContactGate) *FavouriteHandler {
	return &FavouriteHandler{favourites: favourites, biodatas: biodatas, gate: gate}
}

func (h *FavouriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	var req models.AddFavouriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BiodataID <= 0 {
		validate(w, map[string]string{"biodataId": "Biodata ID is required"})
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	b, err := h.biodatas.GetByID(ctx, req.BiodataID)
	if err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}
	redactor, err := h.gate.Redactor(ctx, id)
	if err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}

	// The snapshot is stored whole; redaction happens on every read.
	f, err := h.favourites.Add(ctx, &models.Favourite{
		UserEmail:   id.Email,
		BiodataID:   b.BiodataID,
		Biodata:     *b,
		IsFavourite: true,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}

	log.Printf("[Favourite] added email=%s biodataId=%d", id.Email, b.BiodataID)
	f.Biodata = *redactor.Apply(&f.Biodata)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(f))
}

// List returns the caller's favourites with each snapshot redacted for the
// caller's current unlocks.
func (h *FavouriteHandler) List(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.favourites.ListByEmail(ctx, id.Email)
	if err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}
	redactor, err := h.gate.Redactor(ctx, id)
	if err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}
	for _, f := range list {
		f.Biodata = *redactor.Apply(&f.Biodata)
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *FavouriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	favID := chi.URLParam(r, "id")

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	f, err := h.favourites.GetByID(ctx, favID)
	if err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}
	if f.UserEmail != id.Email {
		writeServiceError(w, "Favourite", services.ErrUnauthorized)
		return
	}
	if err := h.favourites.Delete(ctx, favID); err != nil {
		writeServiceError(w, "Favourite", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Favourite removed"}))
}
