package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler counts the events it receives.
type recordingHandler struct {
	err       error
	handled   int
	lastEvent *ProfileEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *ProfileEvent) error {
	h.handled++
	h.lastEvent = event
	return h.err
}

func testEvent(t *testing.T) *ProfileEvent {
	t.Helper()
	p, err := domain.NewPrenatalProfile("Robin", time.Now().AddDate(0, 1, 0), nil)
	require.NoError(t, err)
	event, err := NewProfileEvent(ProfileUpdated, p)
	require.NoError(t, err)
	return event
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), testEvent(t)))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event := testEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, h1.handled)
		assert.Equal(t, 1, h2.handled)
		assert.Same(t, event, h2.lastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		after := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(after)

		err := emitter.EmitEvent(context.Background(), testEvent(t))
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, after.handled, "later handlers still run")
	})
}
