package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bengalmatrimony/backend/internal/models"
)

// PaymentService is an in-memory PaymentLedger. Entries are never
// modified once recorded.
type PaymentService struct {
	mu       sync.RWMutex
	payments []*models.Payment
	byIntent map[string]struct{} // provider payment id
}

func NewPaymentService() *PaymentService {
	return &PaymentService{
		byIntent: make(map[string]struct{}),
	}
}

func (s *PaymentService) Record(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIntent[p.PaymentID]; exists {
		return nil, ErrPaymentExists
	}

	c := *p
	c.ID = uuid.New().String()
	c.Email = NormalizeEmail(c.Email)
	s.payments = append(s.payments, &c)
	s.byIntent[c.PaymentID] = struct{}{}

	out := c
	return &out, nil
}

func (s *PaymentService) List(ctx context.Context) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filter(func(*models.Payment) bool { return true }), nil
}

func (s *PaymentService) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = NormalizeEmail(email)
	return s.filter(func(p *models.Payment) bool { return p.Email == email }), nil
}

func (s *PaymentService) UnlockedBiodataIDs(ctx context.Context, email string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = NormalizeEmail(email)
	ids := make([]int, 0)
	for _, p := range s.payments {
		if p.Email == email && p.Status == models.PaymentStatusSucceeded {
			ids = append(ids, p.BiodataID)
		}
	}
	return ids, nil
}

// filter returns copies newest first.
func (s *PaymentService) filter(match func(*models.Payment) bool) []*models.Payment {
	out := make([]*models.Payment, 0)
	for _, p := range s.payments {
		if match(p) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
