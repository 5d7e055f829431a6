package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
)

// Store keeps live sessions in memory and sweeps out expired ones in the
// background.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl   time.Duration
	clock selection.Clock
	log   *logger.Logger

	done chan struct{}
	once sync.Once
}

func NewStore(ttl time.Duration, clock selection.Clock, log *logger.Logger) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clock:    clock,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Create registers a fresh session and returns it.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.clock(), s.clock)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Debug("Session created", "session_id", sess.ID)
	return sess
}

// Get returns a live session and refreshes its TTL.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("Session")
	}

	now := s.clock()
	if sess.expired(now, s.ttl) {
		s.remove(id)
		return nil, apperrors.NotFound("Session")
	}

	sess.touch(now)
	return sess, nil
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Count reports the number of sessions currently held, expired or not.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeping launches the background expiry sweep. Stop terminates it.
func (s *Store) StartSweeping(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Store) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweep() {
	now := s.clock()

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if sess.expired(now, s.ttl) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	if len(stale) == 0 {
		return
	}

	s.mu.Lock()
	for _, id := range stale {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	s.log.Debug("Expired sessions removed", "count", len(stale))
}
