package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
	"github.com/bengalmatrimony/backend/internal/session"
)

// SessionAuth requires a valid session cookie and attaches the caller's
// Identity, with role and premium flag read fresh from the user store.
func SessionAuth(sessions *session.Manager, users services.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolveIdentity(r, sessions, users)
			switch {
			case err == nil:
			case errors.Is(err, session.ErrTokenNotFound):
				writeError(w, http.StatusUnauthorized, models.KindAuthentication, "Unauthorized access")
				return
			case errors.Is(err, session.ErrExpiredToken):
				writeError(w, http.StatusUnauthorized, models.KindAuthentication, "Session expired")
				return
			case errors.Is(err, session.ErrInvalidToken):
				writeError(w, http.StatusUnauthorized, models.KindAuthentication, "Invalid session")
				return
			default:
				log.Printf("[Session] identity lookup failed error=%v", err)
				writeError(w, http.StatusInternalServerError, models.KindInternal, "Failed to load session")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *id)))
		})
	}
}

// OptionalSession attaches an Identity when a valid session cookie is
// present and otherwise lets the request through anonymously.
func OptionalSession(sessions *session.Manager, users services.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := resolveIdentity(r, sessions, users); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), *id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetIdentity(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, models.KindAuthorization, "Forbidden access")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller, or an anonymous Identity.
func GetIdentity(ctx context.Context) models.Identity {
	id, _ := ctx.Value(identityKey).(models.Identity)
	return id
}

// resolveIdentity verifies the cookie and loads the caller's entitlements.
// A signed-in email with no user record yet gets the default role.
func resolveIdentity(r *http.Request, sessions *session.Manager, users services.UserStore) (*models.Identity, error) {
	claims, err := sessions.FromRequest(r)
	if err != nil {
		return nil, err
	}

	id := &models.Identity{Email: services.NormalizeEmail(claims.Email), Role: models.RoleUser}
	u, err := users.GetByEmail(r.Context(), id.Email)
	switch {
	case err == nil:
		id.Role = u.Role
		id.Premium = bool(u.Premium)
	case errors.Is(err, services.ErrUserNotFound):
	default:
		return nil, err
	}
	return id, nil
}
