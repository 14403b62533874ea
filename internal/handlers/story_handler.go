package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

const topStoriesLimit = 4

type StoryHandler struct {
	stories  services.StoryStore
	biodatas services.BiodataStore
}

func NewStoryHandler(stories services.StoryStore, biodatas services.BiodataStore) *StoryHandler {
	return &StoryHandler{stories: stories, biodatas: biodatas}
}

// Create stores a story told by the caller. The caller's own biodata is
// taken from the session, so a story can only be filed for oneself.
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	var req models.CreateStoryRequest
	if !decodeJSON(w, r, &req) || !validate(w, req.Validate()) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	own, err := h.biodatas.ListByEmail(ctx, id.Email)
	if err != nil {
		writeServiceError(w, "Story", err)
		return
	}
	if len(own) == 0 {
		writeServiceError(w, "Story", services.ErrBiodataNotFound)
		return
	}
	if req.PartnerBiodataID == own[0].BiodataID {
		validate(w, map[string]string{"partnerBiodataId": "Partner biodata must differ from your own"})
		return
	}
	if _, err := h.biodatas.GetByID(ctx, req.PartnerBiodataID); err != nil {
		writeServiceError(w, "Story", err)
		return
	}

	st, err := h.stories.Create(ctx, &models.SuccessStory{
		SelfBiodataID:    own[0].BiodataID,
		PartnerBiodataID: req.PartnerBiodataID,
		CoupleImage:      strings.TrimSpace(req.CoupleImage),
		DateOfMarriage:   req.DateOfMarriage,
		Review:           strings.TrimSpace(req.Review),
		Rating:           req.Rating,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		writeServiceError(w, "Story", err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(st))
}

func (h *StoryHandler) Top(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, topStoriesLimit)
}

func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, 0)
}

func (h *StoryHandler) list(w http.ResponseWriter, r *http.Request, limit int) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.stories.List(ctx, limit)
	if err != nil {
		writeServiceError(w, "Story", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if err := h.stories.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Story", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Story deleted"}))
}
