package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stockwatch/internal/model"
)

// MemoryAlertStore is an in-memory AlertStore with the same conditional
// transition semantics as the Mongo implementation. Error fields inject
// failures for tests.
type MemoryAlertStore struct {
	ListErr error
	MarkErr error

	mu     sync.Mutex
	alerts map[string]model.Alert
}

func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{alerts: make(map[string]model.Alert)}
}

func (s *MemoryAlertStore) Create(_ context.Context, a *model.Alert) error {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.IsActive = true
	a.IsTriggered = false
	a.TriggeredAt = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = *a
	return nil
}

func (s *MemoryAlertStore) ListEligible(_ context.Context) ([]model.Alert, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.list(func(a *model.Alert) bool { return a.Eligible() }), nil
}

func (s *MemoryAlertStore) ListByUser(_ context.Context, userID string) ([]model.Alert, error) {
	return s.list(func(a *model.Alert) bool { return a.UserID == userID }), nil
}

func (s *MemoryAlertStore) ListBySymbol(_ context.Context, userID, symbol string) ([]model.Alert, error) {
	symbol = strings.ToUpper(symbol)
	return s.list(func(a *model.Alert) bool {
		return a.UserID == userID && a.Symbol == symbol
	}), nil
}

func (s *MemoryAlertStore) list(match func(*model.Alert) bool) []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Alert
	for _, a := range s.alerts {
		if match(&a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryAlertStore) MarkTriggered(_ context.Context, alertID string) (*model.Alert, error) {
	if s.MarkErr != nil {
		return nil, s.MarkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	if !a.Eligible() {
		return nil, fmt.Errorf("alert %s: %w", alertID, ErrAlreadyTriggered)
	}
	now := time.Now()
	a.IsTriggered = true
	a.IsActive = false
	a.TriggeredAt = &now
	a.UpdatedAt = now
	s.alerts[alertID] = a
	return &a, nil
}

// Get returns a snapshot of one alert, for test assertions.
func (s *MemoryAlertStore) Get(alertID string) (model.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	return a, ok
}

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemoryUserStore(users ...model.User) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[string]model.User, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *MemoryUserStore) GetByID(_ context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return &u, nil
}
