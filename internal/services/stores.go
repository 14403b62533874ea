package services

import (
	"context"
	"time"

	"github.com/bengalmatrimony/backend/internal/models"
)

// UserStore holds the role and entitlement record of every user.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastSignIn(ctx context.Context, email string, at time.Time) error
	UpdateProfile(ctx context.Context, email string, req *models.UpdateProfileRequest) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) (*models.User, error)
	SetPremium(ctx context.Context, id string, premium bool) (*models.User, error)
	SetPremiumByEmail(ctx context.Context, email string, premium bool) (*models.User, error)
	AddStrike(ctx context.Context, email string) error
	Delete(ctx context.Context, id string) (*models.User, error)
}

// BiodataStore holds biodata profiles keyed by their sequential id.
type BiodataStore interface {
	List(ctx context.Context) ([]*models.Biodata, error)
	ListPremium(ctx context.Context, limit int) ([]*models.Biodata, error)
	GetByID(ctx context.Context, id int) (*models.Biodata, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Biodata, error)
	Create(ctx context.Context, email string, in *models.BiodataInput) (*models.Biodata, error)
	Update(ctx context.Context, id int, in *models.BiodataInput) (*models.Biodata, error)
	SetPremiumByEmail(ctx context.Context, email string, premium bool) error
	// ReplaceProfileImage points every biodata referencing from at to and
	// returns how many were changed.
	ReplaceProfileImage(ctx context.Context, from, to string) (int, error)
	Delete(ctx context.Context, id int) (*models.Biodata, error)
	Stats(ctx context.Context) (*models.BiodataStats, error)
}

// PaymentLedger is the append-only record of confirmed payments.
type PaymentLedger interface {
	Record(ctx context.Context, p *models.Payment) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Payment, error)
	// UnlockedBiodataIDs returns the target biodata id of every succeeded
	// payment made by email. Legacy payments without a target report 0.
	UnlockedBiodataIDs(ctx context.Context, email string) ([]int, error)
}

type PremiumRequestStore interface {
	Create(ctx context.Context, req *models.PremiumRequest) (*models.PremiumRequest, error)
	List(ctx context.Context) ([]*models.PremiumRequest, error)
	GetByID(ctx context.Context, id string) (*models.PremiumRequest, error)
	GetByEmail(ctx context.Context, email string) (*models.PremiumRequest, error)
	// SetStatus updates the status and returns the request as it was before.
	SetStatus(ctx context.Context, id string, status models.PremiumStatus) (*models.PremiumRequest, error)
	Delete(ctx context.Context, id string) (*models.PremiumRequest, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type FavouriteStore interface {
	Add(ctx context.Context, f *models.Favourite) (*models.Favourite, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Favourite, error)
	GetByID(ctx context.Context, id string) (*models.Favourite, error)
	Delete(ctx context.Context, id string) error
	DeleteByEmail(ctx context.Context, email string) error
}

type MessageStore interface {
	Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error)
	List(ctx context.Context) ([]*models.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

type StoryStore interface {
	Create(ctx context.Context, s *models.SuccessStory) (*models.SuccessStory, error)
	// List returns stories newest marriage first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*models.SuccessStory, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Transactor runs fn so that its store writes commit or roll back together
// where the backing store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTransactor runs fn directly. Used by the in-memory stores.
type NoopTransactor struct{}

func (NoopTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
