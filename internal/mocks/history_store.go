package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/store"
)

// MockHistoryStore implements store.HistoryStore for testing
type MockHistoryStore struct {
	// Function fields for customizable behavior
	HasEntryFn     func(ctx context.Context, profileID uuid.UUID, kind domain.OffsetKind, targetDate time.Time) (bool, error)
	RecordEntryFn  func(ctx context.Context, entry domain.HistoryEntry) error
	ClearEntriesFn func(ctx context.Context, profileID uuid.UUID) error
	EntriesFn      func(ctx context.Context, profileID uuid.UUID) ([]domain.HistoryEntry, error)

	mu      sync.Mutex
	entries map[uuid.UUID]map[domain.OffsetKind]domain.HistoryEntry
}

var _ store.HistoryStore = (*MockHistoryStore)(nil)

// NewMockHistoryStore creates an empty mock store
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{
		entries: make(map[uuid.UUID]map[domain.OffsetKind]domain.HistoryEntry),
	}
}

// HasEntry implements the HistoryStore interface
func (m *MockHistoryStore) HasEntry(
	ctx context.Context,
	profileID uuid.UUID,
	kind domain.OffsetKind,
	targetDate time.Time,
) (bool, error) {
	if m.HasEntryFn != nil {
		return m.HasEntryFn(ctx, profileID, kind, targetDate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[profileID][kind]
	return ok && domain.SameTargetDate(entry.TargetDate, targetDate), nil
}

// RecordEntry implements the HistoryStore interface
func (m *MockHistoryStore) RecordEntry(ctx context.Context, entry domain.HistoryEntry) error {
	if m.RecordEntryFn != nil {
		return m.RecordEntryFn(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[entry.ProfileID] == nil {
		m.entries[entry.ProfileID] = make(map[domain.OffsetKind]domain.HistoryEntry)
	}
	m.entries[entry.ProfileID][entry.Kind] = entry
	return nil
}

// ClearEntries implements the HistoryStore interface
func (m *MockHistoryStore) ClearEntries(ctx context.Context, profileID uuid.UUID) error {
	if m.ClearEntriesFn != nil {
		return m.ClearEntriesFn(ctx, profileID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, profileID)
	return nil
}

// Entries implements the HistoryStore interface
func (m *MockHistoryStore) Entries(ctx context.Context, profileID uuid.UUID) ([]domain.HistoryEntry, error) {
	if m.EntriesFn != nil {
		return m.EntriesFn(ctx, profileID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.HistoryEntry, 0, len(m.entries[profileID]))
	for _, e := range m.entries[profileID] {
		out = append(out, e)
	}
	return out, nil
}

// Count returns the number of entries held for the profile
func (m *MockHistoryStore) Count(profileID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[profileID])
}
