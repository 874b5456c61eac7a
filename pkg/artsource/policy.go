package artsource

import (
	"fmt"
	"time"
)

// RecheckDelay is how long to wait before trying again after a deferred update.
const RecheckDelay = time.Hour

// Default settings, matching the original preferences screen.
const (
	DefaultWifiOnly      = true
	DefaultIntervalHours = 6
)

// Outcome is the result of one update attempt.
type Outcome int

// Outcomes
const (
	Published      Outcome = iota // a new artwork was produced
	Deferred                      // nothing fetched or nothing usable; check again after RecheckDelay
	RetryRequested                // transient failure; the host should retry with its own backoff
)

func (o Outcome) String() string {
	switch o {
	case Published:
		return "published"
	case Deferred:
		return "deferred"
	case RetryRequested:
		return "retry"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// UpdateReason says why the host asked for an update. It is logged and otherwise ignored.
type UpdateReason int

// Update reasons
const (
	ReasonInitial UpdateReason = iota
	ReasonScheduled
	ReasonUserNext
	ReasonRetry
	ReasonSettingsChanged
)

func (r UpdateReason) String() string {
	switch r {
	case ReasonInitial:
		return "initial"
	case ReasonScheduled:
		return "scheduled"
	case ReasonUserNext:
		return "user-next"
	case ReasonRetry:
		return "retry"
	case ReasonSettingsChanged:
		return "settings-changed"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Settings is the snapshot of user preferences a single tick works with.
type Settings struct {
	WifiOnly      bool
	IntervalHours int
}

// DefaultSettings returns the settings used when the user never changed anything.
func DefaultSettings() Settings {
	return Settings{WifiOnly: DefaultWifiOnly, IntervalHours: DefaultIntervalHours}
}

// Interval returns the rotation interval, falling back to the default for non-positive hours.
func (s Settings) Interval() time.Duration {
	hours := s.IntervalHours
	if hours <= 0 {
		hours = DefaultIntervalHours
	}
	return time.Duration(hours) * time.Hour
}

// NetworkType is the kind of link the default route goes over.
type NetworkType int

// Network types
const (
	NetworkUnknown NetworkType = iota
	NetworkWiFi
	NetworkEthernet
	NetworkCellular
)

func (n NetworkType) String() string {
	switch n {
	case NetworkWiFi:
		return "wifi"
	case NetworkEthernet:
		return "ethernet"
	case NetworkCellular:
		return "cellular"
	default:
		return "unknown"
	}
}

// Connectivity describes the network state at the start of a tick.
type Connectivity struct {
	Connected bool
	Type      NetworkType
}

// OnWiFi reports whether the device is connected over Wi-Fi.
func (c Connectivity) OnWiFi() bool {
	return c.Connected && c.Type == NetworkWiFi
}

// FetchFunc performs exactly one request to the origin.
type FetchFunc func() (*PhotoRecord, error)

// Decision is what a tick concluded.
type Decision struct {
	Outcome Outcome
	// NextUpdate is zero for RetryRequested; the host picks the retry time.
	NextUpdate time.Time
	// Artwork is set only when Outcome is Published.
	Artwork *Artwork
	// Err is the failure behind a Deferred or RetryRequested outcome, if any.
	Err error
}

// Tick runs the update policy once. It performs at most one fetch and has no state of
// its own: the same inputs always yield the same decision.
func Tick(now time.Time, settings Settings, conn Connectivity, fetch FetchFunc) Decision {
	if settings.WifiOnly && !conn.OnWiFi() {
		return Decision{Outcome: Deferred, NextUpdate: now.Add(RecheckDelay)}
	}

	photo, err := fetch()
	if err != nil {
		if IsTransient(err) {
			return Decision{Outcome: RetryRequested, Err: err}
		}
		return Decision{Outcome: Deferred, NextUpdate: now.Add(RecheckDelay), Err: err}
	}
	if photo.Empty() {
		return Decision{Outcome: RetryRequested, Err: ErrEmptyPayload}
	}

	art := NewArtwork(*photo)
	return Decision{
		Outcome:    Published,
		NextUpdate: now.Add(settings.Interval()),
		Artwork:    &art,
	}
}
