package artsource

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeSettings struct {
	wifiOnly bool
	hours    int
}

func (f fakeSettings) GetWifiOnly() bool     { return f.wifiOnly }
func (f fakeSettings) GetIntervalHours() int { return f.hours }

type fakeConn struct {
	mu    sync.Mutex
	state Connectivity
	calls int
}

func (f *fakeConn) Check(ctx context.Context) Connectivity {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.state
}

type fakeFetcher struct {
	mu    sync.Mutex
	photo *PhotoRecord
	err   error
	calls int
}

func (f *fakeFetcher) RandomPhoto(ctx context.Context) (*PhotoRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.photo, f.err
}

// memStore is an in-memory ArtworkStore and ScheduleStore.
type memStore struct {
	mu        sync.Mutex
	art       *Artwork
	published time.Time
	next      time.Time
	hasNext   bool
	saveErr   error
}

func (m *memStore) CurrentArtwork() (*Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.art, nil
}

func (m *memStore) SaveArtwork(art Artwork, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.art = &art
	m.published = publishedAt
	return nil
}

func (m *memStore) NextUpdate() (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next, m.hasNext, nil
}

func (m *memStore) SetNextUpdate(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = t
	m.hasNext = true
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	received []Artwork
	fail     bool
}

func (r *recordingPublisher) Publish(ctx context.Context, art Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, art)
	if r.fail {
		return errors.New("display unavailable")
	}
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

// scriptedUpdater replays decisions in order and repeats the last one.
type scriptedUpdater struct {
	mu        sync.Mutex
	decisions []Decision
	reasons   []UpdateReason
}

func (s *scriptedUpdater) TryUpdate(ctx context.Context, reason UpdateReason) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.reasons)
	s.reasons = append(s.reasons, reason)
	if i >= len(s.decisions) {
		i = len(s.decisions) - 1
	}
	return s.decisions[i]
}

func (s *scriptedUpdater) calls() []UpdateReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UpdateReason, len(s.reasons))
	copy(out, s.reasons)
	return out
}
