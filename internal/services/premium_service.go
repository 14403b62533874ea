package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bengalmatrimony/backend/internal/models"
)

// PremiumRequestService is an in-memory PremiumRequestStore holding at
// most one request per email.
type PremiumRequestService struct {
	mu       sync.RWMutex
	requests map[string]*models.PremiumRequest // id -> request
	byEmail  map[string]string                 // email -> id
}

func NewPremiumRequestService() *PremiumRequestService {
	return &PremiumRequestService{
		requests: make(map[string]*models.PremiumRequest),
		byEmail:  make(map[string]string),
	}
}

func (s *PremiumRequestService) Create(ctx context.Context, req *models.PremiumRequest) (*models.PremiumRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(req.Email)
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrPremiumRequestExists
	}

	r := *req
	r.ID = primitive.NewObjectID().Hex()
	r.Email = email
	if r.Status == "" {
		r.Status = models.PremiumPending
	}
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now().UTC()
	}
	s.requests[r.ID] = &r
	s.byEmail[email] = r.ID

	c := r
	return &c, nil
}

func (s *PremiumRequestService) List(ctx context.Context) ([]*models.PremiumRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.PremiumRequest, 0, len(s.requests))
	for _, r := range s.requests {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (s *PremiumRequestService) GetByID(ctx context.Context, id string) (*models.PremiumRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.requests[id]
	if !exists {
		return nil, ErrPremiumRequestNotFound
	}
	c := *r
	return &c, nil
}

func (s *PremiumRequestService) GetByEmail(ctx context.Context, email string) (*models.PremiumRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[NormalizeEmail(email)]
	if !exists {
		return nil, ErrPremiumRequestNotFound
	}
	c := *s.requests[id]
	return &c, nil
}

func (s *PremiumRequestService) SetStatus(ctx context.Context, id string, status models.PremiumStatus) (*models.PremiumRequest, error) {
	if !status.Valid() {
		return nil, ErrInvalidPremiumStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.requests[id]
	if !exists {
		return nil, ErrPremiumRequestNotFound
	}
	prev := *r
	r.Status = status
	return &prev, nil
}

func (s *PremiumRequestService) Delete(ctx context.Context, id string) (*models.PremiumRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.requests[id]
	if !exists {
		return nil, ErrPremiumRequestNotFound
	}
	delete(s.requests, id)
	delete(s.byEmail, r.Email)
	return r, nil
}

func (s *PremiumRequestService) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = NormalizeEmail(email)
	if id, exists := s.byEmail[email]; exists {
		delete(s.requests, id)
		delete(s.byEmail, email)
	}
	return nil
}
