package notify

import (
	"context"
	"sync/atomic"
)

// SwitchGate is a PermissionGate backed by a flag that can be flipped at
// runtime, e.g. from configuration or an admin endpoint.
type SwitchGate struct {
	granted atomic.Bool

	// grantOnRequest decides what RequestPermission does when permission is off
	grantOnRequest bool
}

var _ PermissionGate = (*SwitchGate)(nil)

// NewSwitchGate creates a gate in the given state. When grantOnRequest is
// true, RequestPermission turns the gate on, mirroring a user accepting a
// permission prompt.
func NewSwitchGate(granted, grantOnRequest bool) *SwitchGate {
	g := &SwitchGate{grantOnRequest: grantOnRequest}
	g.granted.Store(granted)
	return g
}

// CanDeliverNow implements PermissionGate.
func (g *SwitchGate) CanDeliverNow(ctx context.Context) (bool, error) {
	return g.granted.Load(), nil
}

// RequestPermission implements PermissionGate.
func (g *SwitchGate) RequestPermission(ctx context.Context) (bool, error) {
	if g.grantOnRequest {
		g.granted.Store(true)
	}
	return g.granted.Load(), nil
}

// Set changes the permission state.
func (g *SwitchGate) Set(granted bool) {
	g.granted.Store(granted)
}
