package services

import (
	"sync"

	"github.com/google/uuid"
)

// Actor is the authenticated identity attached to a session token
type Actor struct {
	UserID   uint
	FullName string
	Role     string
}

// SessionInterface defines the session directory consumed by the auth
// middleware and controllers. Tokens are opaque; logout revokes server-side.
type SessionInterface interface {
	Issue(actor Actor) string
	Resolve(token string) (Actor, bool)
	Revoke(token string)
}

// SessionService is an in-memory session directory. The lock is never held
// across I/O.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]Actor
}

var sessionServiceInstance SessionInterface

// InitSessionService initializes the in-memory session directory
func InitSessionService() SessionInterface {
	sessionServiceInstance = NewSessionService()
	return sessionServiceInstance
}

// GetSessionService returns the initialized session service instance
func GetSessionService() SessionInterface {
	return sessionServiceInstance
}

// SetSessionService sets the session service instance (primarily for testing)
func SetSessionService(service SessionInterface) {
	sessionServiceInstance = service
}

// NewSessionService creates an empty session directory
func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]Actor),
	}
}

// Issue creates a session for the actor and returns the opaque token
func (s *SessionService) Issue(actor Actor) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.sessions[token] = actor
	s.mu.Unlock()

	return token
}

// Resolve maps a token back to its actor
func (s *SessionService) Resolve(token string) (Actor, bool) {
	s.mu.RLock()
	actor, ok := s.sessions[token]
	s.mu.RUnlock()

	return actor, ok
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (s *SessionService) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
