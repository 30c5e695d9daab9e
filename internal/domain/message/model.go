package message

import (
	"errors"
	"time"
)

// Message kinds
const (
	KindSuccess = "success"
	KindError   = "error"
)

// DisplayDuration is how long a message stays visible.
const DisplayDuration = 5 * time.Second

// ErrInvalidKind is returned for kinds other than success or error.
var ErrInvalidKind = errors.New("message kind must be one of: success, error")

// Message is a transient status line shown to the user.
type Message struct {
	Text string
	Kind string
}

// Success builds a success message.
func Success(text string) Message {
	return Message{Text: text, Kind: KindSuccess}
}

// Error builds an error message.
func Error(text string) Message {
	return Message{Text: text, Kind: KindError}
}

// Validate checks the message kind.
func (m Message) Validate() error {
	if m.Kind != KindSuccess && m.Kind != KindError {
		return ErrInvalidKind
	}
	return nil
}

// IsError returns true for error styling.
func (m Message) IsError() bool {
	return m.Kind == KindError
}
