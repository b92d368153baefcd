// Package session holds the per-user application state of a client: who is
// acting, with which role, and which product is being quoted. A session is
// opened once, passed explicitly to whoever needs it and closed at teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/assurlink/courtage/internal/domain"
)

// ErrClosed is returned by operations on a closed session
var ErrClosed = errors.New("session closed")

// Role is the platform role of the acting user
type Role string

const (
	RoleClient Role = "client"
	RoleBroker Role = "broker"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a role claim
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleBroker, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Allows reports whether r is one of roles. Admin is allowed everywhere.
func (r Role) Allows(roles ...Role) bool {
	if r == RoleAdmin {
		return true
	}
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// Identity describes the authenticated user
type Identity struct {
	Subject string
	Email   string
	Role    Role
}

// Session is the explicit application state of one user interaction
type Session struct {
	identity Identity
	openedAt time.Time

	mu       sync.RWMutex
	closed   bool
	product  domain.Product
	last     *domain.Quote
	onClose  []func()
	closedAt time.Time
}

// Open starts a session for identity
func Open(identity Identity, now time.Time) *Session {
	return &Session{identity: identity, openedAt: now}
}

// Identity returns who the session belongs to
func (s *Session) Identity() Identity {
	return s.identity
}

// OpenedAt returns when the session started
func (s *Session) OpenedAt() time.Time {
	return s.openedAt
}

// SelectProduct sets the product being quoted
func (s *Session) SelectProduct(p domain.Product) error {
	if !p.Valid() {
		return domain.NewValidationError("product", "unknown product %q", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.product = p
	s.last = nil
	return nil
}

// Product returns the selected product, empty when none
func (s *Session) Product() (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}
	return s.product, nil
}

// RecordQuote keeps the latest quote computed in this session
func (s *Session) RecordQuote(q *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.last = q
	if q != nil {
		s.product = q.Product
	}
	return nil
}

// LastQuote returns the latest recorded quote, nil when none
func (s *Session) LastQuote() (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.last, nil
}

// OnClose registers fn to run when the session closes
func (s *Session) OnClose(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.onClose = append(s.onClose, fn)
	return nil
}

// Close ends the session and runs teardown hooks in reverse order.
// Closing twice returns ErrClosed.
func (s *Session) Close(now time.Time) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.closedAt = now
	s.last = nil
	hooks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	return nil
}

// Closed reports whether the session has ended
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Duration returns how long the session lasted, or has lasted so far
func (s *Session) Duration(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return s.closedAt.Sub(s.openedAt)
	}
	return now.Sub(s.openedAt)
}

type ctxKey struct{}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
