package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type ImageHandler struct {
	imageService *services.ImageService
	maxSizeMB    int64
}

func NewImageHandler(imageService *services.ImageService, maxSizeMB int64) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxSizeMB:    maxSizeMB,
	}
}

// Upload stores a profile image. The profile image is a premium field, so
// only premium members and admins may upload.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if !id.Premium && !id.IsAdmin() {
		writeServiceError(w, "Image", services.ErrPremiumFieldDenied)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeMB*1024*1024)
	if err := r.ParseMultipartForm(h.maxSizeMB * 1024 * 1024); err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "File too large or invalid form data")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "No image file provided")
		return
	}
	defer file.Close()

	response, err := h.imageService.Upload(id.Email, file)
	if err != nil {
		writeServiceError(w, "Image", err)
		return
	}

	log.Printf("[Image] uploaded id=%s email=%s", response.ID, id.Email)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(response))
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	if err := h.imageService.Delete(id.Email, chi.URLParam(r, "imageId")); err != nil {
		writeServiceError(w, "Image", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Image deleted successfully"}))
}
