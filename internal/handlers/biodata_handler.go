package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

const featuredLimit = 6

type BiodataHandler struct {
	biodatas  services.BiodataStore
	stories   services.StoryStore
	gate      *services.ContactGate
	moderator services.ImageModerator
}

// NewBiodataHandler wires the biodata endpoints. moderator may be nil, in
// which case profile images are stored as given.
func NewBiodataHandler(biodatas services.BiodataStore, stories services.StoryStore, gate *services.ContactGate, moderator services.ImageModerator) *BiodataHandler {
	return &BiodataHandler{biodatas: biodatas, stories: stories, gate: gate, moderator: moderator}
}

func (h *BiodataHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.biodatas.List(ctx)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	h.writeRedacted(ctx, w, r, list)
}

func (h *BiodataHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.listPremium(w, r, featuredLimit)
}

func (h *BiodataHandler) Premium(w http.ResponseWriter, r *http.Request) {
	h.listPremium(w, r, 0)
}

func (h *BiodataHandler) listPremium(w http.ResponseWriter, r *http.Request, limit int) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.biodatas.ListPremium(ctx, limit)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	h.writeRedacted(ctx, w, r, list)
}

func (h *BiodataHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntParam(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, models.KindNotFound, "Biodata not found")
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	b, err := h.biodatas.GetByID(ctx, id)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}

	reveal, err := h.gate.Reveal(ctx, middleware.GetIdentity(r.Context()), b)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	if !reveal {
		b = b.Redacted()
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(b))
}

func (h *BiodataHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		validate(w, map[string]string{"email": "Email is required"})
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.biodatas.ListByEmail(ctx, email)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	h.writeRedacted(ctx, w, r, list)
}

func (h *BiodataHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	var in models.BiodataInput
	if !decodeJSON(w, r, &in) || !validate(w, in.Validate(true)) {
		return
	}
	if !id.Premium && !id.IsAdmin() && len(in.PremiumFieldsChanged(nil)) > 0 {
		writeServiceError(w, "Biodata", services.ErrPremiumFieldDenied)
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if err := h.moderateImage(ctx, &in, id.Email); err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}

	b, err := h.biodatas.Create(ctx, id.Email, &in)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	if id.Premium {
		if err := h.biodatas.SetPremiumByEmail(ctx, id.Email, true); err != nil {
			log.Printf("[Biodata] premium flag failed id=%d error=%v", b.BiodataID, err)
		} else {
			b.Premium = true
		}
	}

	log.Printf("[Biodata] created id=%d email=%s", b.BiodataID, b.ContactEmail)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(b))
}

// Update merges the given fields. Non-premium owners may resubmit premium
// fields only with their current values.
func (h *BiodataHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	biodataID, ok := parseIntParam(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, models.KindNotFound, "Biodata not found")
		return
	}

	var in models.BiodataInput
	if !decodeJSON(w, r, &in) || !validate(w, in.Validate(false)) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	current, err := h.ownedBiodata(ctx, id, biodataID)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	if !id.Premium && !id.IsAdmin() {
		if changed := in.PremiumFieldsChanged(current); len(changed) > 0 {
			log.Printf("[Biodata] premium fields denied id=%d email=%s fields=%v", biodataID, id.Email, changed)
			writeServiceError(w, "Biodata", services.ErrPremiumFieldDenied)
			return
		}
	}
	if in.ProfileImage != nil && *in.ProfileImage != current.ProfileImage {
		if err := h.moderateImage(ctx, &in, current.ContactEmail); err != nil {
			writeServiceError(w, "Biodata", err)
			return
		}
	}

	b, err := h.biodatas.Update(ctx, biodataID, &in)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(b))
}

func (h *BiodataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	biodataID, ok := parseIntParam(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, models.KindNotFound, "Biodata not found")
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if _, err := h.ownedBiodata(ctx, id, biodataID); err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	b, err := h.biodatas.Delete(ctx, biodataID)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}

	log.Printf("[Biodata] deleted id=%d by=%s", b.BiodataID, id.Email)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]int{"biodataId": b.BiodataID}))
}

func (h *BiodataHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	st, err := h.biodatas.Stats(ctx)
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	if st.Stories, err = h.stories.Count(ctx); err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(st))
}

func (h *BiodataHandler) ownedBiodata(ctx context.Context, id models.Identity, biodataID int) (*models.Biodata, error) {
	b, err := h.biodatas.GetByID(ctx, biodataID)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && services.NormalizeEmail(b.ContactEmail) != id.Email {
		return nil, services.ErrUnauthorized
	}
	return b, nil
}

func (h *BiodataHandler) moderateImage(ctx context.Context, in *models.BiodataInput, email string) error {
	if h.moderator == nil || in.ProfileImage == nil || *in.ProfileImage == "" {
		return nil
	}
	approved, err := h.moderator.ModerateAndPromote(ctx, *in.ProfileImage, email)
	if err != nil {
		return err
	}
	in.ProfileImage = &approved
	return nil
}

func (h *BiodataHandler) writeRedacted(ctx context.Context, w http.ResponseWriter, r *http.Request, list []*models.Biodata) {
	redactor, err := h.gate.Redactor(ctx, middleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, "Biodata", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(redactor.ApplyAll(list)))
}
