package controller

import (
	"sync"
	"time"

	"signupdesk/internal/domain/message"
)

// Messenger holds the one transient status message.
// Each Show replaces the previous message and restarts the display window.
type Messenger struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *message.Message
	shownAt time.Time
	timer   *time.Timer
	seq     uint64
}

// NewMessenger creates a messenger whose messages stay visible for ttl.
// A non-positive ttl falls back to message.DisplayDuration.
func NewMessenger(ttl time.Duration) *Messenger {
	if ttl <= 0 {
		ttl = message.DisplayDuration
	}
	return &Messenger{ttl: ttl}
}

// Show replaces the current message and cancels the previous hide timer.
func (m *Messenger) Show(msg message.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.seq++
	id := m.seq
	m.current = &msg
	m.shownAt = time.Now()
	m.timer = time.AfterFunc(m.ttl, func() { m.hide(id) })
}

// hide clears the message only if it is still the one the timer was armed for.
func (m *Messenger) hide(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq != id {
		return
	}
	m.current = nil
	m.timer = nil
}

// Current returns the visible message and how long it has left.
func (m *Messenger) Current() (message.Message, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return message.Message{}, 0, false
	}
	remaining := m.ttl - time.Since(m.shownAt)
	if remaining <= 0 {
		return message.Message{}, 0, false
	}
	return *m.current, remaining, true
}

// TTL returns the display window.
func (m *Messenger) TTL() time.Duration {
	return m.ttl
}

// Stop cancels any pending hide.
func (m *Messenger) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
