package service

import (
	"sync"
	"time"

	"weather_station/internal/models"
)

// StationStatus is a point-in-time copy of the engine state for readers
// outside the tick loop.
type StationStatus struct {
	UpdatedAt           time.Time              `json:"updated_at"`
	Snapshot            models.WeatherSnapshot `json:"snapshot"`
	Runtime             models.RuntimeConfig   `json:"runtime"`
	Persisted           models.PersistedState  `json:"persisted"`
	Notifications       map[string]bool        `json:"notifications"`
	Targets             []models.UploadTarget  `json:"targets"`
	ConsecutiveFailures int                    `json:"consecutive_failures"`
	KeepRunning         bool                   `json:"keep_running"`
	RebootRequested     bool                   `json:"reboot_requested"`
	ShutdownRequested   bool                   `json:"shutdown_requested"`
}

// StatusBoard holds the latest published StationStatus and fans each
// publish out to subscribers.
type StatusBoard struct {
	mu        sync.RWMutex
	status    StationStatus
	published bool
	subs      map[chan StationStatus]struct{}
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{subs: make(map[chan StationStatus]struct{})}
}

// Publish never blocks the engine: a subscriber that has not drained its
// previous status gets the newer one in its place.
func (b *StatusBoard) Publish(s StationStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
	b.published = true
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Current returns the last published status and whether anything was published yet.
func (b *StatusBoard) Current() (StationStatus, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status, b.published
}

// Subscribe registers a channel that receives every later publish.
// cancel closes the channel and is safe to call more than once.
func (b *StatusBoard) Subscribe() (updates <-chan StationStatus, cancel func()) {
	ch := make(chan StationStatus, 1)
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[chan StationStatus]struct{})
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
}

func (b *StatusBoard) subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
