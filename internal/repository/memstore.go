package repository

import (
	"context"
	"sync"

	"deckcast/internal/domain"
)

// MemStore is an in-memory implementation of both store interfaces,
// used by tests and by the sync controller tests that need to observe
// and fail individual reads and writes.
type MemStore struct {
	mu            sync.Mutex
	presentations map[string]domain.Presentation
	polls         map[string]domain.Poll

	// FailLoads / FailSaves make the next calls return this error.
	FailLoads error
	FailSaves error
	SaveCount int
	LoadCount int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		presentations: make(map[string]domain.Presentation),
		polls:         make(map[string]domain.Poll),
	}
}

// Presentations returns the PresentationStore view.
func (m *MemStore) Presentations() PresentationStore { return (*memPresentations)(m) }

// Polls returns the PollStore view.
func (m *MemStore) Polls() PollStore { return (*memPolls)(m) }

type memPresentations MemStore

func (m *memPresentations) Load(ctx context.Context, id string) (domain.Presentation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCount++
	if m.FailLoads != nil {
		return domain.Presentation{}, m.FailLoads
	}
	p, ok := m.presentations[id]
	if !ok {
		return domain.Presentation{}, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *memPresentations) Save(ctx context.Context, p domain.Presentation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCount++
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.presentations[p.ID] = p.Clone()
	return nil
}

func (m *memPresentations) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.presentations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.presentations, id)
	return nil
}

func (m *memPresentations) ListByCreator(ctx context.Context, creatorID string) ([]domain.Presentation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Presentation
	for _, p := range m.presentations {
		if creatorID == "" || p.CreatorID == creatorID {
			out = append(out, p.Clone())
		}
	}
	sortPresentationsByUpdated(out)
	return out, nil
}

type memPolls MemStore

func (m *memPolls) Load(ctx context.Context, id string) (domain.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLoads != nil {
		return domain.Poll{}, m.FailLoads
	}
	p, ok := m.polls[id]
	if !ok {
		return domain.Poll{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPolls) LoadByShortCode(ctx context.Context, code string) (domain.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.polls {
		if p.ShortCode == code {
			return p, nil
		}
	}
	return domain.Poll{}, domain.ErrNotFound
}

func (m *memPolls) Save(ctx context.Context, p domain.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.polls[p.ID] = p
	return nil
}

func (m *memPolls) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.polls[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.polls, id)
	return nil
}

func (m *memPolls) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.LoadByShortCode(ctx, code)
	if err == domain.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
