package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type UserHandler struct {
	users    services.UserStore
	premium  *services.PremiumWorkflow
	accounts *services.AccountService
	verifier middleware.IdentityVerifier
}

func NewUserHandler(users services.UserStore, premium *services.PremiumWorkflow, accounts *services.AccountService, verifier middleware.IdentityVerifier) *UserHandler {
	return &UserHandler{users: users, premium: premium, accounts: accounts, verifier: verifier}
}

// Create registers the verified caller. Role and premium always start at
// their defaults whatever the body says.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	verified := middleware.GetVerifiedEmail(r.Context())

	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) || !validate(w, req.Validate()) {
		return
	}
	if services.NormalizeEmail(req.Email) != verified {
		writeErr(w, http.StatusForbidden, models.KindAuthorization, "Forbidden access")
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	now := time.Now().UTC()
	u := &models.User{
		Email:          verified,
		Name:           strings.TrimSpace(req.Name),
		Photo:          strings.TrimSpace(req.Photo),
		Role:           models.RoleUser,
		CreationTime:   now,
		LastSignInTime: now,
	}
	if t, err := models.ParseClientTime(req.CreationTime); err == nil {
		u.CreationTime = t
	}
	if t, err := models.ParseClientTime(req.LastSignInTime); err == nil {
		u.LastSignInTime = t
	}
	if (u.Name == "" || u.Photo == "") && h.verifier != nil {
		if p, err := h.verifier.LookupUser(ctx, verified); err == nil {
			if u.Name == "" {
				u.Name = p.DisplayName
			}
			if u.Photo == "" {
				u.Photo = p.PhotoURL
			}
		}
	}

	created, err := h.users.Create(ctx, u)
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}

	log.Printf("[Users] created email=%s", created.Email)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(created))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(users))
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		validate(w, map[string]string{"email": "Email is required"})
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	u, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
}

// UpdateLastSignIn is self-service: the body email, when given, must be
// the verified one.
func (h *UserHandler) UpdateLastSignIn(w http.ResponseWriter, r *http.Request) {
	verified := middleware.GetVerifiedEmail(r.Context())

	var req models.LastSignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email != "" && services.NormalizeEmail(req.Email) != verified {
		writeErr(w, http.StatusForbidden, models.KindAuthorization, "Forbidden access")
		return
	}

	at := time.Now().UTC()
	if req.LastSignInTime != "" {
		t, err := models.ParseClientTime(req.LastSignInTime)
		if err != nil {
			validate(w, map[string]string{"lastSignInTime": "Invalid timestamp"})
			return
		}
		at = t
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	if err := h.users.UpdateLastSignIn(ctx, verified, at); err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{"lastSignInTime": at}))
}

func (h *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())

	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil && len(strings.TrimSpace(*req.Name)) > 120 {
		validate(w, map[string]string{"name": "Name is too long"})
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	u, err := h.users.UpdateProfile(ctx, id.Email, &req)
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req models.SetRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	u, err := h.users.SetRole(ctx, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}

	log.Printf("[Users] role email=%s role=%s by=%s", u.Email, u.Role, middleware.GetIdentity(r.Context()).Email)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
}

func (h *UserHandler) SetPremium(w http.ResponseWriter, r *http.Request) {
	var req models.SetPremiumRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	u, err := h.premium.SetUserPremium(ctx, chi.URLParam(r, "id"), bool(req.Premium))
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
}

func (h *UserHandler) SetPremiumByEmail(w http.ResponseWriter, r *http.Request) {
	var req models.SetPremiumRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	u, err := h.premium.SetUserPremiumByEmail(ctx, chi.URLParam(r, "email"), bool(req.Premium))
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r.Context())
	defer cancel()

	u, err := h.accounts.DeleteAccount(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Users", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(u))
}
