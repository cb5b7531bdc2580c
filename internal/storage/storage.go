package storage

import (
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

// SessionStore keeps processed covers in memory
type SessionStore struct {
	sessions map[string]*models.BookSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.BookSession),
	}
}

func (s *SessionStore) Get(bookID string) (*models.BookSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[bookID]
	return session, exists
}

func (s *SessionStore) Set(bookID string, session *models.BookSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[bookID] = session
}

// List returns all sessions, newest first
func (s *SessionStore) List() []*models.BookSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.BookSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Page returns up to limit sessions starting at offset, newest first, and the total count
func (s *SessionStore) Page(offset, limit int) ([]*models.BookSession, int) {
	all := s.List()
	total := len(all)
	if offset < 0 || offset >= total {
		return []*models.BookSession{}, total
	}
	end := min(offset+limit, total)
	return all[offset:end], total
}

// Update applies fn to a copy of the session under the write lock and stores the copy
func (s *SessionStore) Update(bookID string, fn func(*models.BookSession)) (*models.BookSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.sessions[bookID]
	if !exists {
		return nil, false
	}

	updated := *current
	if current.Metadata != nil {
		md := *current.Metadata
		updated.Metadata = &md
	}
	fn(&updated)
	s.sessions[bookID] = &updated
	return &updated, true
}

// Delete removes a session and reports whether it existed
func (s *SessionStore) Delete(bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[bookID]
	delete(s.sessions, bookID)
	return exists
}
