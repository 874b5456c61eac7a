package artsource

import (
	"context"
	"sync"
	"time"

	"github.com/ulmus/onweekdays/util"
	"github.com/ulmus/onweekdays/util/log"
	"golang.org/x/time/rate"
)

// Retry backoff applied by the host when a tick asks for a retry.
const (
	InitialRetryDelay = 10 * time.Second
	MaxRetryDelay     = time.Hour
)

// Manual "next artwork" requests are limited to one per ManualNextInterval.
const ManualNextInterval = 5 * time.Second

// Updater runs one tick.
type Updater interface {
	TryUpdate(ctx context.Context, reason UpdateReason) Decision
}

// ScheduleStore persists the next planned update so restarts keep the rotation.
type ScheduleStore interface {
	NextUpdate() (time.Time, bool, error)
	SetNextUpdate(t time.Time) error
}

// Scheduler invokes the updater on time, applies retry backoff and takes user commands.
type Scheduler struct {
	updater Updater
	store   ScheduleStore
	now     func() time.Time

	wake    chan UpdateReason
	limiter *rate.Limiter
	retries *util.SafeCounter

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu          sync.Mutex
	next        time.Time
	lastOutcome Outcome
	ticked      bool
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithBackoff overrides the retry backoff bounds.
func WithBackoff(initial, maxDelay time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.initialBackoff = initial
		s.maxBackoff = maxDelay
	}
}

// WithManualLimit overrides how often manual updates are accepted.
func WithManualLimit(every time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// NewScheduler creates a Scheduler.
func NewScheduler(updater Updater, store ScheduleStore, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		updater:        updater,
		store:          store,
		now:            time.Now,
		wake:           make(chan UpdateReason, 1),
		limiter:        rate.NewLimiter(rate.Every(ManualNextInterval), 1),
		retries:        util.NewSafeCounter(),
		initialBackoff: InitialRetryDelay,
		maxBackoff:     MaxRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next asks for a new artwork right away. It returns false when the request was rate limited.
func (s *Scheduler) Next() bool {
	if !s.limiter.Allow() {
		log.Print("Next artwork request ignored: too many requests")
		return false
	}
	s.signal(ReasonUserNext)
	return true
}

// Reschedule tells the scheduler the settings changed. A source that is waiting out a
// deferral or a retry tries again immediately; a source showing a fresh artwork keeps
// its schedule.
func (s *Scheduler) Reschedule() {
	s.signal(ReasonSettingsChanged)
}

func (s *Scheduler) signal(reason UpdateReason) {
	select {
	case s.wake <- reason:
	default:
		// An update is already pending.
	}
}

// ScheduleNext plans the next update at t and persists it.
func (s *Scheduler) ScheduleNext(t time.Time) {
	s.mu.Lock()
	s.next = t
	s.mu.Unlock()
	if err := s.store.SetNextUpdate(t); err != nil {
		log.Printf("Failed to persist next update time: %v", err)
	}
}

// NextUpdate returns the time of the next planned update.
func (s *Scheduler) NextUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// RetryAttempts returns the number of consecutive retriable failures.
func (s *Scheduler) RetryAttempts() int {
	return s.retries.Value()
}

// Run drives the updater until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	reason := ReasonScheduled
	next, ok, err := s.store.NextUpdate()
	if err != nil {
		log.Printf("Failed to read persisted schedule, updating now: %v", err)
	}
	if !ok || err != nil {
		reason = ReasonInitial
		next = s.now()
	}
	s.mu.Lock()
	s.next = next
	s.mu.Unlock()
	log.Printf("Scheduler started, first update at %s", next.Format(time.RFC3339))

	timer := time.NewTimer(s.until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Print("Scheduler stopped.")
			return nil
		case <-timer.C:
		case r := <-s.wake:
			if r == ReasonSettingsChanged && !s.pending() {
				log.Debug("Settings changed, keeping current schedule")
				continue
			}
			reason = r
		}

		d := s.updater.TryUpdate(ctx, reason)
		if ctx.Err() != nil {
			return nil
		}

		s.mu.Lock()
		s.lastOutcome = d.Outcome
		s.ticked = true
		s.mu.Unlock()

		if d.Outcome == RetryRequested {
			attempt := s.retries.Increment()
			delay := Backoff(attempt, s.initialBackoff, s.maxBackoff)
			log.Printf("Retrying in %v (attempt %d)", delay, attempt)
			s.ScheduleNext(s.now().Add(delay))
			reason = ReasonRetry
		} else {
			s.retries.Reset()
			s.ScheduleNext(d.NextUpdate)
			reason = ReasonScheduled
		}
		timer.Reset(s.until(s.NextUpdate()))
	}
}

// pending reports whether the last tick ended without a fresh artwork.
func (s *Scheduler) pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticked && s.lastOutcome != Published
}

func (s *Scheduler) until(t time.Time) time.Duration {
	d := t.Sub(s.now())
	if d < 0 {
		return 0
	}
	return d
}

// Backoff returns the delay before retry number attempt (1-based): initial, doubled for
// every further attempt, never more than maxDelay.
func Backoff(attempt int, initial, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := initial
	for i := 1; i < attempt && d < maxDelay; i++ {
		d *= 2
	}
	return min(d, maxDelay)
}
