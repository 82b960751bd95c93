package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/store"
)

// MockProfileStore implements store.ProfileStore for testing
type MockProfileStore struct {
	// Function fields for customizable behavior
	LoadFn   func(ctx context.Context) (*domain.Profile, error)
	SaveFn   func(ctx context.Context, profile *domain.Profile) error
	DeleteFn func(ctx context.Context) error

	mu        sync.Mutex
	profile   *domain.Profile
	saveCalls int
}

var _ store.ProfileStore = (*MockProfileStore)(nil)

// NewMockProfileStore creates an empty mock store
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{}
}

// NewMockProfileStoreWith creates a mock store holding a copy of profile
func NewMockProfileStoreWith(profile *domain.Profile) *MockProfileStore {
	return &MockProfileStore{profile: profile.Clone()}
}

// Load implements the ProfileStore interface
func (m *MockProfileStore) Load(ctx context.Context) (*domain.Profile, error) {
	if m.LoadFn != nil {
		return m.LoadFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, store.ErrProfileNotFound
	}
	return m.profile.Clone(), nil
}

// Save implements the ProfileStore interface
func (m *MockProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	m.saveCalls++
	m.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, profile)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = profile.Clone()
	return nil
}

// Delete implements the ProfileStore interface
func (m *MockProfileStore) Delete(ctx context.Context) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = nil
	return nil
}

// Stored returns a copy of the stored profile, or nil
func (m *MockProfileStore) Stored() *domain.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	return m.profile.Clone()
}

// SaveCalls reports how many times Save was called
func (m *MockProfileStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}
