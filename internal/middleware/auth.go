package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
)

type contextKey string

const (
	verifiedEmailKey contextKey = "verifiedEmail"
	identityKey      contextKey = "identity"
)

var ErrNoEmailClaim = errors.New("identity token has no email")

// VerifiedIdentity is what the identity provider vouches for.
type VerifiedIdentity struct {
	UID   string
	Email string
}

// ProviderProfile is the display data the identity provider holds for a user.
type ProviderProfile struct {
	DisplayName string
	PhotoURL    string
}

// IdentityVerifier checks an identity token issued by the auth provider.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*VerifiedIdentity, error)
	LookupUser(ctx context.Context, email string) (*ProviderProfile, error)
}

type FirebaseAuthConfig struct {
	ProjectID       string
	CredentialsJSON []byte
}

// FirebaseVerifier verifies Firebase ID tokens against Google's rotating
// public keys through the Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier uses the given service account, or Application
// Default Credentials when none is provided.
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseAuthConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*VerifiedIdentity, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	email, _ := tok.Claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return nil, ErrNoEmailClaim
	}
	return &VerifiedIdentity{UID: tok.UID, Email: services.NormalizeEmail(email)}, nil
}

func (v *FirebaseVerifier) LookupUser(ctx context.Context, email string) (*ProviderProfile, error) {
	u, err := v.client.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &ProviderProfile{DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}, nil
}

// FirebaseAuth requires a valid identity token in the Authorization header
// and exposes the verified email through GetVerifiedEmail.
func FirebaseAuth(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				writeError(w, http.StatusServiceUnavailable, models.KindUpstream, "Identity provider not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, models.KindAuthentication, "Authorization header required")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, models.KindAuthentication, "Invalid authorization header format")
				return
			}

			id, err := verifier.VerifyIDToken(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				log.Printf("[Auth] identity token rejected error=%v", err)
				writeError(w, http.StatusUnauthorized, models.KindAuthentication, "Invalid or expired identity token")
				return
			}

			ctx := context.WithValue(r.Context(), verifiedEmailKey, id.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetVerifiedEmail returns the email proven by the identity token, if any.
func GetVerifiedEmail(ctx context.Context) string {
	email, _ := ctx.Value(verifiedEmailKey).(string)
	return email
}
