package storefront

import "sync"

// Token identifies one issued request.
type Token uint64

// Sequencer implements last-request-wins: only the completion of the most
// recently issued request is applied, and nothing is applied once the
// sequencer is closed.
type Sequencer struct {
	mu     sync.Mutex
	latest Token
	closed bool
}

// Next issues a token and makes every earlier token stale.
func (s *Sequencer) Next() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// IsCurrent reports whether t is still the latest token of an open sequencer.
func (s *Sequencer) IsCurrent(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && t == s.latest
}

// Apply runs fn if t is current. fn runs under the sequencer's lock so no
// newer token can be issued while it applies; it must not call back into s.
func (s *Sequencer) Apply(t Token, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || t != s.latest {
		return false
	}
	fn()
	return true
}

// Close discards every pending completion.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
