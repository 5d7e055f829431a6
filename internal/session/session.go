// Package session holds per-browser-tab state: the selected dates, the two
// calendar views, and the last loaded bookings snapshot with its bulk
// selection. Sessions live in memory only and expire after a TTL.
package session

import (
	"sync"
	"time"

	"github.com/matej-podzemny/hotdesk-helper/internal/bookinglist"
	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
)

type Session struct {
	ID string

	mu       sync.Mutex
	lastSeen time.Time

	Dates   *selection.DateSet
	Views   *selection.ViewState
	Snap    *bookinglist.Snapshot
	Checked *bookinglist.BulkSelection
}

func newSession(id string, now time.Time, clock selection.Clock) *Session {
	return &Session{
		ID:       id,
		lastSeen: now,
		Dates:    selection.NewDateSet(clock),
		Views:    selection.NewViewState(now),
		Checked:  bookinglist.NewBulkSelection(),
	}
}

// WithLock runs fn while holding the session mutex. All state access goes
// through here; the mutex also serializes the remote calls an operation
// makes on behalf of the session.
func (s *Session) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}
