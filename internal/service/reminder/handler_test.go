package reminder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/sprout/internal/events"
)

func TestProfileEventHandler(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	h := NewProfileEventHandler(f.scheduler, nil)
	ctx := context.Background()

	profile := prenatal(testNow.AddDate(0, 0, 10))
	event, err := events.NewProfileEvent(events.ProfileUpdated, profile)
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(ctx, event))
	assert.Len(t, f.registrar.Registered(), len(Template))

	t.Run("ignores other event types", func(t *testing.T) {
		other, err := events.NewProfileEvent("profile.viewed", profile)
		require.NoError(t, err)
		assert.NoError(t, h.HandleEvent(ctx, other))
		assert.NoError(t, h.HandleEvent(ctx, nil))
	})

	t.Run("rejects unreadable payload", func(t *testing.T) {
		bad := &events.ProfileEvent{Type: events.ProfileUpdated, Payload: json.RawMessage(`{"stage":`)}
		assert.Error(t, h.HandleEvent(ctx, bad))
	})
}
