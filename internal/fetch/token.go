package fetch

import "sync/atomic"

// Token identifies one issued load. Tokens only ever increase, so the
// latest-issued token tells whether a resolving load is stale.
type Token uint64

// NoToken is never issued.
const NoToken Token = 0

// Sequence mints tokens.
type Sequence struct {
	last atomic.Uint64
}

// Next mints a new token and records it as the latest.
func (s *Sequence) Next() Token {
	return Token(s.last.Add(1))
}

// Latest returns the most recently minted token.
func (s *Sequence) Latest() Token {
	return Token(s.last.Load())
}

// Current reports whether t is still the latest-issued token.
func (s *Sequence) Current(t Token) bool {
	return t != NoToken && t == s.Latest()
}
