package controller

import (
	"time"

	"signupdesk/internal/application/orchestrators"
	"signupdesk/internal/application/projections"
	"signupdesk/internal/domain/message"
)

// View is everything the page needs, built from one consistent read of the state.
type View struct {
	Chrome  projections.Chrome
	Board   projections.Board
	Loaded  bool
	Login   LoginDialog
	Draft   Draft
	Message *MessageView
}

// MessageView is the visible message with its remaining display time.
type MessageView struct {
	Text        string `json:"text"`
	Kind        string `json:"kind"`
	RemainingMs int64  `json:"remaining_ms"`
}

// View renders the current state.
// INVARIANT: Removal controls and the signup form appear iff a session is active now
func (c *Controller) View() View {
	sess := c.Session()

	c.mu.Lock()
	v := View{
		Chrome: projections.BuildChrome(sess),
		Loaded: c.attempted,
		Login:  c.login,
		Draft:  c.draft,
	}
	if c.loadFailed {
		v.Board = projections.BuildFailedBoard(c.options, orchestrators.LoadFailedText)
	} else {
		v.Board = projections.BuildBoard(c.catalog, sess != nil)
	}
	c.mu.Unlock()

	v.Message = c.CurrentMessage()
	return v
}

// CurrentMessage returns the visible message, or nil.
func (c *Controller) CurrentMessage() *MessageView {
	msg, remaining, ok := c.messenger.Current()
	if !ok {
		return nil
	}
	return newMessageView(msg, remaining)
}

func newMessageView(msg message.Message, remaining time.Duration) *MessageView {
	return &MessageView{Text: msg.Text, Kind: msg.Kind, RemainingMs: remaining.Milliseconds()}
}
