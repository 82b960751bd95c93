package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/notify"
)

// MockPermissionGate implements notify.PermissionGate for testing
type MockPermissionGate struct {
	CanDeliverNowFn     func(ctx context.Context) (bool, error)
	RequestPermissionFn func(ctx context.Context) (bool, error)

	// Granted is returned when no function field is set
	Granted bool
}

var _ notify.PermissionGate = (*MockPermissionGate)(nil)

// CanDeliverNow implements the PermissionGate interface
func (m *MockPermissionGate) CanDeliverNow(ctx context.Context) (bool, error) {
	if m.CanDeliverNowFn != nil {
		return m.CanDeliverNowFn(ctx)
	}
	return m.Granted, nil
}

// RequestPermission implements the PermissionGate interface
func (m *MockPermissionGate) RequestPermission(ctx context.Context) (bool, error) {
	if m.RequestPermissionFn != nil {
		return m.RequestPermissionFn(ctx)
	}
	return m.Granted, nil
}

// MockRegistrar implements notify.Registrar for testing. The default
// implementation records registrations and cancellations.
type MockRegistrar struct {
	RegisterFn func(ctx context.Context, point domain.CampaignPoint) error
	CancelFn   func(ctx context.Context, identity string) error

	mu            sync.Mutex
	registered    map[string]domain.CampaignPoint
	registerCalls []domain.CampaignPoint
	cancelCalls   []string
}

var _ notify.Registrar = (*MockRegistrar)(nil)

// NewMockRegistrar creates an empty mock registrar
func NewMockRegistrar() *MockRegistrar {
	return &MockRegistrar{registered: make(map[string]domain.CampaignPoint)}
}

// Register implements the Registrar interface
func (m *MockRegistrar) Register(ctx context.Context, point domain.CampaignPoint) error {
	m.mu.Lock()
	m.registerCalls = append(m.registerCalls, point)
	m.mu.Unlock()

	if m.RegisterFn != nil {
		if err := m.RegisterFn(ctx, point); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered[point.Identity()] = point
	return nil
}

// Cancel implements the Registrar interface
func (m *MockRegistrar) Cancel(ctx context.Context, identity string) error {
	m.mu.Lock()
	m.cancelCalls = append(m.cancelCalls, identity)
	m.mu.Unlock()

	if m.CancelFn != nil {
		return m.CancelFn(ctx, identity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.registered, identity)
	return nil
}

// Registered returns the currently armed points keyed by identity
func (m *MockRegistrar) Registered() map[string]domain.CampaignPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.CampaignPoint, len(m.registered))
	for k, v := range m.registered {
		out[k] = v
	}
	return out
}

// RegisterCalls returns every point passed to Register, including failed ones
func (m *MockRegistrar) RegisterCalls() []domain.CampaignPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CampaignPoint(nil), m.registerCalls...)
}

// CancelCalls returns every identity passed to Cancel
func (m *MockRegistrar) CancelCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelCalls...)
}

// MockCampaignRetirer records CancelCampaign calls for testing
type MockCampaignRetirer struct {
	CancelCampaignFn func(ctx context.Context, profileID uuid.UUID) error

	mu      sync.Mutex
	retired []uuid.UUID
}

// CancelCampaign retires the campaign of the profile
func (m *MockCampaignRetirer) CancelCampaign(ctx context.Context, profileID uuid.UUID) error {
	m.mu.Lock()
	m.retired = append(m.retired, profileID)
	m.mu.Unlock()

	if m.CancelCampaignFn != nil {
		return m.CancelCampaignFn(ctx, profileID)
	}
	return nil
}

// Retired returns the profile IDs passed to CancelCampaign
func (m *MockCampaignRetirer) Retired() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.retired...)
}
