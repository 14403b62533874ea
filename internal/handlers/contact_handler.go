package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

const forwardTimeout = 15 * time.Second

type ContactHandler struct {
	messages  services.MessageStore
	captcha   services.CaptchaVerifier
	forwarder services.MessageForwarder
}

// NewContactHandler wires the contact form. captcha and forwarder are
// optional; a nil captcha skips the challenge and a nil forwarder only
// stores the message.
func NewContactHandler(messages services.MessageStore, captcha services.CaptchaVerifier, forwarder services.MessageForwarder) *ContactHandler {
	return &ContactHandler{messages: messages, captcha: captcha, forwarder: forwarder}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	errs := req.Validate()
	if h.captcha != nil && strings.TrimSpace(req.RecaptchaToken) == "" {
		errs["recaptchaToken"] = "reCAPTCHA token is required"
	}
	if !validate(w, errs) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if h.captcha != nil {
		remoteIP := clientIP(r)
		if err := h.captcha.Verify(ctx, req.RecaptchaToken, remoteIP); err != nil {
			if errors.Is(err, services.ErrCaptchaRejected) {
				log.Printf("[Contact] captcha rejected ip=%s error=%v", remoteIP, err)
				writeErr(w, http.StatusForbidden, models.KindAuthorization, "reCAPTCHA verification failed")
				return
			}
			log.Printf("[Contact] captcha unavailable ip=%s error=%v", remoteIP, err)
			writeErr(w, http.StatusBadGateway, models.KindUpstream, "Failed to verify reCAPTCHA")
			return
		}
	}

	msg, err := h.messages.Create(ctx, &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
		Date:    time.Now().UTC(),
	})
	if err != nil {
		writeServiceError(w, "Contact", err)
		return
	}

	if h.forwarder != nil {
		// Forwarding outlives the request; the message is already stored.
		go func(m models.ContactMessage) {
			fctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
			defer cancel()
			if err := h.forwarder.ForwardContactMessage(fctx, &m); err != nil {
				log.Printf("[Contact] forward failed id=%s error=%v", m.ID, err)
			}
		}(*msg)
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(msg))
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	list, err := h.messages.List(ctx)
	if err != nil {
		writeServiceError(w, "Contact", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(list))
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if err := h.messages.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Contact", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Message deleted"}))
}
