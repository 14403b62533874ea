package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bengalmatrimony/backend/internal/models"
)

type FavouriteService struct {
	mu             sync.RWMutex
	favourites     map[string]*models.Favourite // favouriteID -> favourite
	userFavourites map[string]map[int]string    // email -> biodataID -> favouriteID
}

func NewFavouriteService() *FavouriteService {
	return &FavouriteService{
		favourites:     make(map[string]*models.Favourite),
		userFavourites: make(map[string]map[int]string),
	}
}

func (s *FavouriteService) Add(ctx context.Context, f *models.Favourite) (*models.Favourite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(f.UserEmail)
	if userFavs, exists := s.userFavourites[email]; exists {
		if _, exists := userFavs[f.BiodataID]; exists {
			return nil, ErrAlreadyFavourited
		}
	}

	fav := *f
	fav.ID = uuid.New().String()
	fav.UserEmail = email
	fav.IsFavourite = true
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}

	s.favourites[fav.ID] = &fav
	if s.userFavourites[email] == nil {
		s.userFavourites[email] = make(map[int]string)
	}
	s.userFavourites[email][fav.BiodataID] = fav.ID

	c := fav
	return &c, nil
}

func (s *FavouriteService) ListByEmail(ctx context.Context, email string) ([]*models.Favourite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Favourite, 0)
	for _, favouriteID := range s.userFavourites[NormalizeEmail(email)] {
		if fav, exists := s.favourites[favouriteID]; exists {
			c := *fav
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FavouriteService) GetByID(ctx context.Context, id string) (*models.Favourite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fav, exists := s.favourites[id]
	if !exists {
		return nil, ErrFavouriteNotFound
	}
	c := *fav
	return &c, nil
}

func (s *FavouriteService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fav, exists := s.favourites[id]
	if !exists {
		return ErrFavouriteNotFound
	}
	delete(s.favourites, id)
	delete(s.userFavourites[fav.UserEmail], fav.BiodataID)
	return nil
}

func (s *FavouriteService) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = NormalizeEmail(email)
	for _, favouriteID := range s.userFavourites[email] {
		delete(s.favourites, favouriteID)
	}
	delete(s.userFavourites, email)
	return nil
}
