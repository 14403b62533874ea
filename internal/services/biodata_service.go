package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bengalmatrimony/backend/internal/models"
)

// BiodataService is an in-memory BiodataStore.
type BiodataService struct {
	mu      sync.RWMutex
	nextID  int
	records map[int]*models.Biodata // biodataId -> biodata
}

func NewBiodataService() *BiodataService {
	return &BiodataService{
		records: make(map[int]*models.Biodata),
	}
}

func (s *BiodataService) List(ctx context.Context) ([]*models.Biodata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(*models.Biodata) bool { return true }, 0), nil
}

func (s *BiodataService) ListPremium(ctx context.Context, limit int) ([]*models.Biodata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(b *models.Biodata) bool { return bool(b.Premium) }, limit), nil
}

func (s *BiodataService) GetByID(ctx context.Context, id int) (*models.Biodata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.records[id]
	if !exists {
		return nil, ErrBiodataNotFound
	}
	c := *b
	return &c, nil
}

func (s *BiodataService) ListByEmail(ctx context.Context, email string) ([]*models.Biodata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = NormalizeEmail(email)
	return s.sorted(func(b *models.Biodata) bool { return b.ContactEmail == email }, 0), nil
}

func (s *BiodataService) Create(ctx context.Context, email string, in *models.BiodataInput) (*models.Biodata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = NormalizeEmail(email)
	for _, b := range s.records {
		if b.ContactEmail == email {
			return nil, ErrBiodataExists
		}
	}

	s.nextID++
	now := time.Now().UTC()
	b := &models.Biodata{
		BiodataID:    s.nextID,
		ContactEmail: email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	in.ApplyTo(b)
	s.records[b.BiodataID] = b

	c := *b
	return &c, nil
}

func (s *BiodataService) Update(ctx context.Context, id int, in *models.BiodataInput) (*models.Biodata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.records[id]
	if !exists {
		return nil, ErrBiodataNotFound
	}
	in.ApplyTo(b)
	b.UpdatedAt = time.Now().UTC()

	c := *b
	return &c, nil
}

func (s *BiodataService) SetPremiumByEmail(ctx context.Context, email string, premium bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = NormalizeEmail(email)
	for _, b := range s.records {
		if b.ContactEmail == email {
			b.Premium = models.BoolFlag(premium)
		}
	}
	return nil
}

func (s *BiodataService) ReplaceProfileImage(ctx context.Context, from, to string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, b := range s.records {
		if b.ProfileImage == from {
			b.ProfileImage = to
			b.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (s *BiodataService) Delete(ctx context.Context, id int) (*models.Biodata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.records[id]
	if !exists {
		return nil, ErrBiodataNotFound
	}
	delete(s.records, id)
	return b, nil
}

func (s *BiodataService) Stats(ctx context.Context) (*models.BiodataStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &models.BiodataStats{Total: len(s.records)}
	for _, b := range s.records {
		switch b.BiodataType {
		case "Male":
			st.Male++
		case "Female":
			st.Female++
		}
		if b.Premium {
			st.Premium++
		}
	}
	return st, nil
}

// sorted returns copies of the matching records ascending by age, then id.
func (s *BiodataService) sorted(match func(*models.Biodata) bool, limit int) []*models.Biodata {
	out := make([]*models.Biodata, 0)
	for _, b := range s.records {
		if match(b) {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Age != out[j].Age {
			return out[i].Age < out[j].Age
		}
		return out[i].BiodataID < out[j].BiodataID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
