package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/sprout/internal/domain"
	"github.com/phrazzld/sprout/internal/platform/logger"
)

// DefaultMaxPending mirrors the pending local notification cap of mobile platforms.
const DefaultMaxPending = 64

type pending struct {
	point domain.CampaignPoint
	timer *time.Timer
}

// LocalRegistrar arms reminders as in-process timers and hands them to a
// Sink when they fire. It stands in for the platform notification service.
type LocalRegistrar struct {
	sink       Sink
	maxPending int
	now        func() time.Time
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string]*pending
	closed  bool
}

var (
	_ Registrar     = (*LocalRegistrar)(nil)
	_ ArmedReporter = (*LocalRegistrar)(nil)
)

// LocalOption customizes a LocalRegistrar.
type LocalOption func(*LocalRegistrar)

// WithMaxPending caps how many reminders may be armed at once.
func WithMaxPending(n int) LocalOption {
	return func(r *LocalRegistrar) {
		if n > 0 {
			r.maxPending = n
		}
	}
}

// WithClock replaces the registrar's time source.
func WithClock(now func() time.Time) LocalOption {
	return func(r *LocalRegistrar) {
		if now != nil {
			r.now = now
		}
	}
}

// NewLocalRegistrar creates a registrar delivering to sink.
func NewLocalRegistrar(sink Sink, l *slog.Logger, opts ...LocalOption) *LocalRegistrar {
	if sink == nil {
		panic("sink cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	r := &LocalRegistrar{
		sink:       sink,
		maxPending: DefaultMaxPending,
		now:        time.Now,
		logger:     l.With(slog.String("component", "local_registrar")),
		pending:    make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register implements Registrar.
func (r *LocalRegistrar) Register(ctx context.Context, point domain.CampaignPoint) error {
	log := logger.FromContextOrDefault(ctx, r.logger)
	identity := point.Identity()

	delay := point.FireAt.Sub(r.now())
	if delay <= 0 {
		return fmt.Errorf("%w: %s at %s", ErrPastInstant, identity, point.FireAt.Format(time.RFC3339))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	if existing, ok := r.pending[identity]; ok {
		existing.timer.Stop()
		delete(r.pending, identity)
	} else if len(r.pending) >= r.maxPending {
		return fmt.Errorf("%w: %d armed", ErrCapacity, len(r.pending))
	}

	entry := &pending{point: point}
	entry.timer = time.AfterFunc(delay, func() { r.fire(identity, entry) })
	r.pending[identity] = entry
	pendingReminders.Set(float64(len(r.pending)))

	log.Debug("reminder armed",
		slog.String("identity", identity),
		slog.Time("fire_at", point.FireAt))
	return nil
}

// Cancel implements Registrar.
func (r *LocalRegistrar) Cancel(ctx context.Context, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.pending[identity]; ok {
		entry.timer.Stop()
		delete(r.pending, identity)
		pendingReminders.Set(float64(len(r.pending)))
		logger.FromContextOrDefault(ctx, r.logger).Debug("reminder cancelled",
			slog.String("identity", identity))
	}
	return nil
}

// IsArmed implements ArmedReporter. Timers do not outlive the process, so
// a fresh registrar reports nothing armed.
func (r *LocalRegistrar) IsArmed(_ context.Context, identity string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.pending[identity]
	return ok, nil
}

func (r *LocalRegistrar) fire(identity string, entry *pending) {
	r.mu.Lock()
	current, ok := r.pending[identity]
	if !ok || current != entry {
		// replaced or cancelled after the timer was already running
		r.mu.Unlock()
		return
	}
	delete(r.pending, identity)
	pendingReminders.Set(float64(len(r.pending)))
	r.mu.Unlock()

	kind := string(entry.point.Kind)
	if err := r.sink.Deliver(context.Background(), entry.point); err != nil {
		deliveries.WithLabelValues(kind, "failed").Inc()
		r.logger.Error("reminder delivery failed",
			slog.String("identity", identity),
			slog.String("error", err.Error()))
		return
	}
	deliveries.WithLabelValues(kind, "delivered").Inc()
}

// Pending lists the armed reminders ordered by fire time.
func (r *LocalRegistrar) Pending() []domain.CampaignPoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.CampaignPoint, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.point)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].Identity() < out[j].Identity()
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

// Close disarms every reminder. Later registrations fail with ErrClosed.
func (r *LocalRegistrar) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, p := range r.pending {
		p.timer.Stop()
		delete(r.pending, identity)
	}
	r.closed = true
	pendingReminders.Set(0)
}
