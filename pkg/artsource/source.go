package artsource

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ulmus/onweekdays/util/log"
)

// SettingsProvider reads the user preferences the policy depends on.
type SettingsProvider interface {
	GetWifiOnly() bool
	GetIntervalHours() int
}

// ConnectivityChecker reports the current network state.
type ConnectivityChecker interface {
	Check(ctx context.Context) Connectivity
}

// PhotoFetcher asks the origin for a photo.
type PhotoFetcher interface {
	RandomPhoto(ctx context.Context) (*PhotoRecord, error)
}

// Publisher displays or forwards a newly published artwork.
type Publisher interface {
	Publish(ctx context.Context, art Artwork) error
}

// ArtworkStore keeps the current artwork across restarts.
type ArtworkStore interface {
	CurrentArtwork() (*Artwork, error)
	SaveArtwork(art Artwork, publishedAt time.Time) error
}

// LoadSettings snapshots the preferences for one tick.
func LoadSettings(p SettingsProvider) Settings {
	if p == nil {
		return DefaultSettings()
	}
	return Settings{WifiOnly: p.GetWifiOnly(), IntervalHours: p.GetIntervalHours()}
}

// Source is the host side of the policy: it gathers the inputs of a tick, runs it and
// carries out the publish step.
type Source struct {
	settings   SettingsProvider
	conn       ConnectivityChecker
	fetcher    PhotoFetcher
	store      ArtworkStore
	now        func() time.Time
	mu         sync.Mutex // one invocation at a time
	pubMu      sync.RWMutex
	publishers []Publisher
}

// NewSource creates a Source.
func NewSource(settings SettingsProvider, conn ConnectivityChecker, fetcher PhotoFetcher, store ArtworkStore) *Source {
	return &Source{
		settings: settings,
		conn:     conn,
		fetcher:  fetcher,
		store:    store,
		now:      time.Now,
	}
}

// AddPublisher registers a publisher. Publishers run in registration order.
func (s *Source) AddPublisher(p Publisher) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.publishers = append(s.publishers, p)
}

// CurrentArtwork returns the artwork on display, or nil before the first publish.
func (s *Source) CurrentArtwork() (*Artwork, error) {
	return s.store.CurrentArtwork()
}

// TryUpdate runs one tick. The fetch blocks; callers run it off any interactive goroutine.
func (s *Source) TryUpdate(ctx context.Context, reason UpdateReason) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()[:8]
	settings := LoadSettings(s.settings)
	now := s.now()

	var conn Connectivity
	if settings.WifiOnly {
		conn = s.conn.Check(ctx)
		log.Debugf("[%s] connectivity: connected=%v type=%s", id, conn.Connected, conn.Type)
	}

	log.Printf("[%s] Update requested (%s), wifi only=%v, interval=%dh", id, reason, settings.WifiOnly, settings.IntervalHours)
	d := Tick(now, settings, conn, func() (*PhotoRecord, error) {
		return s.fetcher.RandomPhoto(ctx)
	})

	switch d.Outcome {
	case Published:
		if err := s.store.SaveArtwork(*d.Artwork, now); err != nil {
			log.Printf("[%s] Failed to persist current artwork: %v", id, err)
		}
		s.publish(ctx, id, *d.Artwork)
		log.Printf("[%s] Published %q by %s, next update at %s", id, d.Artwork.Title, d.Artwork.Byline, d.NextUpdate.Format(time.RFC3339))
	case Deferred:
		if d.Err != nil {
			log.Printf("[%s] Origin request failed, checking again at %s: %v", id, d.NextUpdate.Format(time.RFC3339), d.Err)
		} else {
			log.Printf("[%s] Not on Wi-Fi, checking again at %s", id, d.NextUpdate.Format(time.RFC3339))
		}
	case RetryRequested:
		log.Printf("[%s] Retriable failure: %v", id, d.Err)
	}
	return d
}

func (s *Source) publish(ctx context.Context, id string, art Artwork) {
	s.pubMu.RLock()
	pubs := make([]Publisher, len(s.publishers))
	copy(pubs, s.publishers)
	s.pubMu.RUnlock()

	for _, p := range pubs {
		if err := p.Publish(ctx, art); err != nil {
			log.Printf("[%s] Publisher %T failed: %v", id, p, err)
		}
	}
}
