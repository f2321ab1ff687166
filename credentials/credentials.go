// Package credentials holds the session state shared by every request issued through a client.
package credentials

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/mo"
)

// Credentials is an immutable snapshot of the tokens and client identity.
type Credentials struct {
	Session      mo.Option[string]    `json:"session"`
	Refresh      mo.Option[string]    `json:"refresh"`
	ClientID     mo.Option[string]    `json:"client_id"`
	ClientSecret mo.Option[string]    `json:"client_secret"`
	ExpiresAt    mo.Option[time.Time] `json:"expires_at"`
}

// IsZero reports whether the snapshot carries nothing at all.
func (c Credentials) IsZero() bool {
	return c.Session.IsAbsent() &&
		c.Refresh.IsAbsent() &&
		c.ClientID.IsAbsent() &&
		c.ClientSecret.IsAbsent() &&
		c.ExpiresAt.IsAbsent()
}

// Expired reports whether the session is past its known expiry.
// An unknown expiry is never considered expired.
func (c Credentials) Expired(now time.Time) bool {
	at, ok := c.ExpiresAt.Get()
	return ok && !now.Before(at)
}

// HasClient reports whether a personal client identity is present.
func (c Credentials) HasClient() bool {
	return c.ClientID.IsPresent()
}

// Observer is notified after every mutation with the new contents of the store.
type Observer func(mo.Option[Credentials])

// Store is a concurrency-safe holder of Credentials.
// Readers never observe a partially updated snapshot.
type Store struct {
	current  atomic.Pointer[Credentials]
	observer Observer
	notifyMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithCredentials seeds the store.
func WithCredentials(c Credentials) Option {
	return func(s *Store) {
		if !c.IsZero() {
			s.current.Store(&c)
		}
	}
}

// WithObserver registers a callback invoked after each mutation.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// NewStore creates a Store, empty unless seeded.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current snapshot, or None when nothing is stored.
func (s *Store) Get() mo.Option[Credentials] {
	c := s.current.Load()
	if c == nil {
		return mo.None[Credentials]()
	}
	return mo.Some(*c)
}

// Session returns the current session token, if any.
func (s *Store) Session() mo.Option[string] {
	c := s.current.Load()
	if c == nil {
		return mo.None[string]()
	}
	return c.Session
}

// Set replaces the whole snapshot. A zero value empties the store.
func (s *Store) Set(c Credentials) {
	if c.IsZero() {
		s.current.Store(nil)
	} else {
		s.current.Store(&c)
	}
	s.notify()
}

// SetTokens replaces the token pair while preserving the client identity.
// A non-positive expiresIn leaves the expiry unknown.
func (s *Store) SetTokens(session, refresh string, expiresIn time.Duration) {
	s.update(func(c Credentials) Credentials {
		c.Session = mo.Some(session)
		c.Refresh = mo.EmptyableToOption(refresh)
		if expiresIn > 0 {
			c.ExpiresAt = mo.Some(time.Now().Add(expiresIn))
		} else {
			c.ExpiresAt = mo.None[time.Time]()
		}
		return c
	})
}

// SetClient records the personal client identity, leaving the tokens untouched.
func (s *Store) SetClient(id, secret string) {
	s.update(func(c Credentials) Credentials {
		c.ClientID = mo.EmptyableToOption(id)
		c.ClientSecret = mo.EmptyableToOption(secret)
		return c
	})
}

// Clear drops the tokens and expiry. The client identity survives so a later login can reuse it.
func (s *Store) Clear() {
	s.update(func(c Credentials) Credentials {
		return Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
	})
}

func (s *Store) update(fn func(Credentials) Credentials) {
	for {
		old := s.current.Load()
		var base Credentials
		if old != nil {
			base = *old
		}

		next := fn(base)
		var ptr *Credentials
		if !next.IsZero() {
			ptr = &next
		}

		if s.current.CompareAndSwap(old, ptr) {
			break
		}
	}
	s.notify()
}

// notify reads the snapshot under notifyMu so the last observed value is always the final state.
func (s *Store) notify() {
	if s.observer == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.observer(s.Get())
}
