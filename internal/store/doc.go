// Package store defines the persistence contracts for profiles and
// notification history. Implementations live under internal/platform and
// replace whole records on every write; callers never see partial state.
package store
