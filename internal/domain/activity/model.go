package activity

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName  = errors.New("activity name cannot be empty")
	ErrEmptyEmail = errors.New("student email cannot be empty")
)

// Activity is a named school activity as reported by the activities service.
// Participants keep the order the service returned them in.
type Activity struct {
	Name            string
	Description     string // Markdown content
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// SpotsLeft returns the remaining capacity.
// INVARIANT: Participants is not mutated
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// IsFull returns true when no spots are left.
func (a Activity) IsFull() bool {
	return a.SpotsLeft() <= 0
}

// HasParticipant reports whether email is enrolled.
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Catalog is an ordered snapshot of activities, in service response order.
type Catalog []Activity

// Names returns the activity names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, a := range c {
		names = append(names, a.Name)
	}
	return names
}

// Find returns the activity with the given name.
func (c Catalog) Find(name string) (Activity, bool) {
	for _, a := range c {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// Registration identifies one student in one activity.
type Registration struct {
	Activity string
	Email    string
}

// Validate checks that both identifiers are present.
// PRE: Registration struct is populated
// POST: Returns nil if valid, error otherwise
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Activity) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
