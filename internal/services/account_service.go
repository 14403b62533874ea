package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bengalmatrimony/backend/internal/models"
)

// AccountService removes a user together with the records keyed on their
// email. The biodata is left in place; admins delete it separately.
type AccountService struct {
	users      UserStore
	favourites FavouriteStore
	premium    PremiumRequestStore
	tx         Transactor
}

func NewAccountService(users UserStore, favourites FavouriteStore, premium PremiumRequestStore, tx Transactor) *AccountService {
	if tx == nil {
		tx = NoopTransactor{}
	}
	return &AccountService{users: users, favourites: favourites, premium: premium, tx: tx}
}

// DeleteAccount deletes the user record by id, then:
// - favourites owned by the user
// - the user's premium request, if any
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) (*models.User, error) {
	var deleted *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.Delete(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.favourites.DeleteByEmail(ctx, u.Email); err != nil {
			return fmt.Errorf("delete favourites: %w", err)
		}
		if err := s.premium.DeleteByEmail(ctx, u.Email); err != nil {
			return fmt.Errorf("delete premium request: %w", err)
		}
		deleted = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Account] deleted user id=%s email=%s", deleted.ID, deleted.Email)
	return deleted, nil
}

// Helper for handlers that want a sane timeout.
func DefaultAccountTimeout() time.Duration { return 20 * time.Second }
