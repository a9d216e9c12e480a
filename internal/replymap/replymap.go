// Package replymap tracks outstanding ping requests and routes incoming
// replies back to the goroutine awaiting each one.
package replymap

import (
	"fmt"
	"net"
	"sync"
)

// Token uniquely names one outstanding request: the host it was sent to,
// its identifier (unset when the kernel assigns/rewrites identifiers and the
// caller has no way to know it ahead of time), and its sequence number.
type Token struct {
	Host     string
	HasIdent bool
	Ident    uint16
	Seq      uint16
}

func newToken(host net.IP, ident *uint16, seq uint16) Token {
	tok := Token{Host: host.String(), Seq: seq}
	if ident != nil {
		tok.HasIdent = true
		tok.Ident = *ident
	}
	return tok
}

// IdenticalRequestError is returned by NewWaiter when a request with the
// same host, identifier and sequence is already outstanding.
type IdenticalRequestError struct {
	Host  net.IP
	Ident *uint16
	Seq   uint16
}

func (e *IdenticalRequestError) Error() string {
	return "multiple identical request"
}

// ErrClientDestroyed is returned by NewWaiter once MarkDestroyed has been
// called.
var ErrClientDestroyed = fmt.Errorf("client has been destroyed, ping operations are no longer available")

// Map is a concurrency-safe registry of one-shot reply waiters, keyed by
// Token. An entry is delivered to at most once, by Deliver; entries dropped
// by Remove or left in place by MarkDestroyed receive nothing, and their
// channels are never closed.
type Map[T any] struct {
	mu        sync.Mutex
	waiters   map[Token]chan T
	destroyed bool
}

// New creates an empty Map.
func New[T any]() *Map[T] {
	return &Map[T]{waiters: make(map[Token]chan T)}
}

// NewWaiter registers a new one-shot waiter for the given token and returns
// the channel it will be delivered on. It is an error to register a second
// waiter for the same (host, ident, seq) while the first is still pending.
func (m *Map[T]) NewWaiter(host net.IP, ident *uint16, seq uint16) (<-chan T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return nil, ErrClientDestroyed
	}
	tok := newToken(host, ident, seq)
	if _, ok := m.waiters[tok]; ok {
		return nil, &IdenticalRequestError{Host: host, Ident: ident, Seq: seq}
	}
	ch := make(chan T, 1)
	m.waiters[tok] = ch
	return ch, nil
}

// Remove unregisters the waiter for the given token without delivering
// anything to it, reporting whether one was actually registered. Callers
// that own the channel (the ones that called NewWaiter) should treat the
// channel as abandoned afterward; it is never closed, only forgotten.
func (m *Map[T]) Remove(host net.IP, ident *uint16, seq uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok := newToken(host, ident, seq)
	if _, ok := m.waiters[tok]; !ok {
		return false
	}
	delete(m.waiters, tok)
	return true
}

// Deliver looks up the waiter for the given token and sends v to it,
// removing the waiter in the process. It reports whether a waiter was
// found; a miss is not an error; the caller should simply drop the reply.
func (m *Map[T]) Deliver(host net.IP, ident *uint16, seq uint16, v T) bool {
	m.mu.Lock()
	tok := newToken(host, ident, seq)
	ch, ok := m.waiters[tok]
	if ok {
		delete(m.waiters, tok)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	ch <- v
	return true
}

// MarkDestroyed prevents any further waiters from being registered and
// causes every future NewWaiter call to fail with ErrClientDestroyed. It
// does not forcibly wake waiters already registered; those continue to
// observe their own timeouts or the closing of their underlying socket.
func (m *Map[T]) MarkDestroyed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = true
}
