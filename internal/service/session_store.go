package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

const (
	defaultSessionTTL        = 15 * time.Minute
	defaultSessionMaxEntries = 10000
)

// SessionStore keeps per-user workflow state in memory. Entries expire after the
// configured TTL and the least recently used ones are evicted past the size bound.
type SessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[int64, models.Session]
}

// NewSessionStore builds a session store.
func NewSessionStore(maxEntries int, ttl time.Duration) *SessionStore {
	if maxEntries <= 0 {
		maxEntries = defaultSessionMaxEntries
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{cache: expirable.NewLRU[int64, models.Session](maxEntries, nil, ttl)}
}

// Get returns a copy of the user's session. Missing sessions are empty.
func (s *SessionStore) Get(userID int64) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _ := s.cache.Get(userID)
	return sess
}

// Update applies fn to the user's session atomically and returns the result.
// A session left empty by fn is removed.
func (s *SessionStore) Update(userID int64, fn func(*models.Session)) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _ := s.cache.Get(userID)
	fn(&sess)
	if sess.Empty() {
		s.cache.Remove(userID)
	} else {
		s.cache.Add(userID, sess)
	}
	return sess
}

// Clear drops the user's session, pending upload and delete alike.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(userID)
}

// ClearUpload abandons a pending upload and keeps any pending delete.
func (s *SessionStore) ClearUpload(userID int64) {
	s.Update(userID, func(sess *models.Session) { sess.ClearUpload() })
}

// ClearDelete forgets a pending delete confirmation.
func (s *SessionStore) ClearDelete(userID int64) {
	s.Update(userID, func(sess *models.Session) { sess.PendingDeleteID = 0 })
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
