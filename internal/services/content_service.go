package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bengalmatrimony/backend/internal/models"
)

// MessageService is an in-memory MessageStore for contact-form submissions.
type MessageService struct {
	mu       sync.RWMutex
	messages map[string]*models.ContactMessage
}

func NewMessageService() *MessageService {
	return &MessageService{messages: make(map[string]*models.ContactMessage)}
}

func (s *MessageService) Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *m
	c.ID = uuid.New().String()
	if c.Date.IsZero() {
		c.Date = time.Now().UTC()
	}
	s.messages[c.ID] = &c

	out := c
	return &out, nil
}

func (s *MessageService) List(ctx context.Context) ([]*models.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ContactMessage, 0, len(s.messages))
	for _, m := range s.messages {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[id]; !exists {
		return ErrMessageNotFound
	}
	delete(s.messages, id)
	return nil
}

// StoryService is an in-memory StoryStore.
type StoryService struct {
	mu      sync.RWMutex
	stories map[string]*models.SuccessStory
}

func NewStoryService() *StoryService {
	return &StoryService{stories: make(map[string]*models.SuccessStory)}
}

func (s *StoryService) Create(ctx context.Context, st *models.SuccessStory) (*models.SuccessStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *st
	c.ID = uuid.New().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.stories[c.ID] = &c

	out := c
	return &out, nil
}

func (s *StoryService) List(ctx context.Context, limit int) ([]*models.SuccessStory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SuccessStory, 0, len(s.stories))
	for _, st := range s.stories {
		c := *st
		out = append(out, &c)
	}
	// dateOfMarriage is YYYY-MM-DD so string order is date order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateOfMarriage != out[j].DateOfMarriage {
			return out[i].DateOfMarriage > out[j].DateOfMarriage
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *StoryService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stories[id]; !exists {
		return ErrStoryNotFound
	}
	delete(s.stories, id)
	return nil
}

func (s *StoryService) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.stories), nil
}
