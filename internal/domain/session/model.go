package session

import (
	"errors"
	"fmt"
)

// Durable storage keys for the teacher session.
const (
	KeyToken = "teacherToken"
	KeyName  = "teacherName"
)

// Session states
const (
	StateAnonymous     = "anonymous"
	StateAuthenticated = "authenticated"
)

// Domain errors
var (
	ErrEmptyToken = errors.New("session token cannot be empty")
	ErrEmptyName  = errors.New("teacher name cannot be empty")
)

// Session is client-held evidence of teacher authentication.
// A Session value is never mutated after construction; transitions replace it.
type Session struct {
	TeacherName string
	Token       string // opaque bearer credential
}

// New builds a session from a successful login.
// PRE: name and token are non-empty
// POST: Returns a valid Session or an error
func New(name, token string) (Session, error) {
	s := Session{TeacherName: name, Token: token}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// FromStored rebuilds a session from persisted values.
// Both values must be present; anything else is the anonymous state.
func FromStored(token, name string) (Session, bool) {
	s, err := New(name, token)
	if err != nil {
		return Session{}, false
	}
	return s, true
}

// Validate checks if the Session has valid data.
func (s Session) Validate() error {
	if s.Token == "" {
		return ErrEmptyToken
	}
	if s.TeacherName == "" {
		return ErrEmptyName
	}
	return nil
}

// Greeting returns the welcome text shown for an active session.
func (s Session) Greeting() string {
	return fmt.Sprintf("Welcome, %s", s.TeacherName)
}

// BearerHeader returns the Authorization header value for privileged calls.
func (s Session) BearerHeader() string {
	return "Bearer " + s.Token
}

// State returns the state name for a possibly absent session.
func State(s *Session) string {
	if s == nil {
		return StateAnonymous
	}
	return StateAuthenticated
}
