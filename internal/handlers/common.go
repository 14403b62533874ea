package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
	"github.com/bengalmatrimony/backend/internal/session"
)

const requestTimeout = 10 * time.Second

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, models.NewErrorResponse(kind, message))
}

func contextWithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, requestTimeout)
}

// decodeJSON reads a JSON body and writes a 400 when it is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "Invalid request body")
		return false
	}
	return true
}

func validate(w http.ResponseWriter, errs map[string]string) bool {
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return false
	}
	return true
}

func parseIntParam(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n > 0
}

type errorMapping struct {
	target  error
	status  int
	kind    string
	message string
}

// errorTable maps service errors onto response kinds. Order matters: the
// first match wins, so specific errors come before the ones they wrap.
var errorTable = []errorMapping{
	{session.ErrTokenNotFound, http.StatusUnauthorized, models.KindAuthentication, "Unauthorized access"},
	{session.ErrExpiredToken, http.StatusUnauthorized, models.KindAuthentication, "Session expired"},
	{session.ErrInvalidToken, http.StatusUnauthorized, models.KindAuthentication, "Invalid session"},

	{services.ErrUnauthorized, http.StatusForbidden, models.KindAuthorization, "Not authorized to modify this resource"},
	{services.ErrPremiumFieldDenied, http.StatusForbidden, models.KindAuthorization, "Premium membership required for this field"},

	{services.ErrUserNotFound, http.StatusNotFound, models.KindNotFound, "User not found"},
	{services.ErrBiodataNotFound, http.StatusNotFound, models.KindNotFound, "Biodata not found"},
	{services.ErrFavouriteNotFound, http.StatusNotFound, models.KindNotFound, "Favourite not found"},
	{services.ErrPremiumRequestNotFound, http.StatusNotFound, models.KindNotFound, "Premium request not found"},
	{services.ErrMessageNotFound, http.StatusNotFound, models.KindNotFound, "Message not found"},
	{services.ErrStoryNotFound, http.StatusNotFound, models.KindNotFound, "Story not found"},
	{services.ErrImageNotFound, http.StatusNotFound, models.KindNotFound, "Image not found"},

	{services.ErrEmailExists, http.StatusConflict, models.KindConflict, "User already exists"},
	{services.ErrBiodataExists, http.StatusConflict, models.KindConflict, "Biodata already exists for this email"},
	{services.ErrAlreadyFavourited, http.StatusConflict, models.KindConflict, "Biodata already in favourites"},
	{services.ErrPremiumRequestExists, http.StatusConflict, models.KindConflict, "Premium request already sent"},
	{services.ErrPaymentExists, http.StatusConflict, models.KindConflict, "Payment already recorded"},

	{services.ErrInvalidRole, http.StatusBadRequest, models.KindValidation, "Invalid role"},
	{services.ErrInvalidPremiumStatus, http.StatusBadRequest, models.KindValidation, "Invalid status"},
	{services.ErrInvalidImage, http.StatusBadRequest, models.KindValidation, "Invalid image type. Allowed: JPEG, PNG, GIF, WebP"},
	{services.ErrPaymentNotConfirmed, http.StatusBadRequest, models.KindValidation, "Payment has not succeeded"},
	{services.ErrPaymentMismatch, http.StatusBadRequest, models.KindValidation, "Payment does not match this purchase"},
	{services.ErrImageRejected, http.StatusUnprocessableEntity, models.KindValidation, "Image rejected: violates community guidelines"},

	{services.ErrPaymentProvider, http.StatusBadGateway, models.KindUpstream, "Payment provider unavailable"},
	{services.ErrPremiumSyncFailed, http.StatusInternalServerError, models.KindInternal, "Failed to update premium status"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, models.KindUpstream, "Request timed out"},
}

// writeServiceError logs unexpected failures under tag and writes the
// mapped response.
func writeServiceError(w http.ResponseWriter, tag string, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				log.Printf("[%s] error=%v", tag, err)
			}
			writeErr(w, m.status, m.kind, m.message)
			return
		}
	}
	log.Printf("[%s] error=%v", tag, err)
	writeErr(w, http.StatusInternalServerError, models.KindInternal, "Internal server error")
}

func clientIP(r *http.Request) string {
	// Cloud Run typically provides X-Forwarded-For. Use first IP if present.
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
