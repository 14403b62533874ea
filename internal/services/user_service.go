package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bengalmatrimony/backend/internal/models"
)

// UserService is an in-memory UserStore.
type UserService struct {
	mu      sync.RWMutex
	users   map[string]*models.User // id -> user
	byEmail map[string]string       // email -> id
}

func NewUserService() *UserService {
	return &UserService{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserService) Create(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrEmailExists
	}

	user := *u
	user.ID = primitive.NewObjectID().Hex()
	user.Email = email
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	s.users[user.ID] = &user
	s.byEmail[email] = user.ID

	out := user
	return &out, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.Before(out[j].CreationTime) })
	return out, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[NormalizeEmail(email)]
	if !exists {
		return nil, ErrUserNotFound
	}
	c := *s.users[id]
	return &c, nil
}

func (s *UserService) UpdateLastSignIn(ctx context.Context, email string, at time.Time) error {
	_, err := s.mutateByEmail(email, func(u *models.User) { u.LastSignInTime = at })
	return err
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, req *models.UpdateProfileRequest) (*models.User, error) {
	return s.mutateByEmail(email, func(u *models.User) {
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Photo != nil {
			u.Photo = strings.TrimSpace(*req.Photo)
		}
	})
}

func (s *UserService) SetRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.mutateByID(id, func(u *models.User) { u.Role = role })
}

func (s *UserService) SetPremium(ctx context.Context, id string, premium bool) (*models.User, error) {
	return s.mutateByID(id, func(u *models.User) { u.Premium = models.BoolFlag(premium) })
}

func (s *UserService) SetPremiumByEmail(ctx context.Context, email string, premium bool) (*models.User, error) {
	return s.mutateByEmail(email, func(u *models.User) { u.Premium = models.BoolFlag(premium) })
}

func (s *UserService) AddStrike(ctx context.Context, email string) error {
	_, err := s.mutateByEmail(email, func(u *models.User) { u.ImageStrikes++ })
	return err
}

func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.byEmail, u.Email)
	return u, nil
}

func (s *UserService) mutateByID(id string, fn func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	fn(u)
	c := *u
	return &c, nil
}

func (s *UserService) mutateByEmail(email string, fn func(u *models.User)) (*models.User, error) {
	s.mu.RLock()
	id, exists := s.byEmail[NormalizeEmail(email)]
	s.mu.RUnlock()
	if !exists {
		return nil, ErrUserNotFound
	}
	return s.mutateByID(id, fn)
}

// NormalizeEmail is the canonical form used for every email key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
