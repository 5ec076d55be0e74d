package app

import (
	"sync"

	"github.com/corey/adsaver/internal/domain/combo"
)

// Session holds the last generated result and the order it is presented in.
// Re-sorting never regenerates and never touches the generated sequence.
type Session struct {
	mu        sync.RWMutex
	generated []string // generation order
	key       combo.SortKey
	view      []string // generated, ordered by key
}

// Set replaces the last result and returns it ordered by key.
func (s *Session) Set(keywords []string, key combo.SortKey) []string {
	view := combo.Sort(keywords, key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated = keywords
	s.key = key
	s.view = view
	return view
}

// Sort re-orders the last result by key.
func (s *Session) Sort(key combo.SortKey) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key != s.key {
		s.view = combo.Sort(s.generated, key)
		s.key = key
	}
	return s.view
}

// View returns the current presentation and its key.
func (s *Session) View() ([]string, combo.SortKey) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.key
}

// Len is the size of the last result.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.generated)
}
