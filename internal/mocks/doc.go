// Package mocks provides centralized mock implementations for testing.
//
// Each mock has function fields for every interface method. When a function
// field is nil the mock falls back to a small in-memory implementation that
// records calls, so most tests only override the behavior they care about.
//
// Usage:
//
//	import "github.com/phrazzld/sprout/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    profiles := mocks.NewMockProfileStore()
//	    profiles.SaveFn = func(ctx context.Context, p *domain.Profile) error {
//	        return errors.New("disk full")
//	    }
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Keep the default implementation safe for concurrent use
package mocks
