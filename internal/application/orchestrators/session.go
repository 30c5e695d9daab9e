package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"signupdesk/internal/domain/session"
)

// SessionStore defines the durable storage used for the teacher session.
type SessionStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItems(ctx context.Context, items map[string]string) error
	RemoveItems(ctx context.Context, keys ...string) error
}

// SessionDeps holds dependencies for restoring and saving the session.
type SessionDeps struct {
	Store SessionStore
}

// ExecuteRestoreSession reads the stored session.
// PRE: none
// POST: Returns the session when both keys are present; otherwise nil, and
//
//	any partial leftovers are removed
func ExecuteRestoreSession(ctx context.Context, deps SessionDeps) (*session.Session, error) {
	token, _, err := deps.Store.GetItem(ctx, session.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", session.KeyToken, err)
	}
	name, _, err := deps.Store.GetItem(ctx, session.KeyName)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", session.KeyName, err)
	}

	if sess, ok := session.FromStored(token, name); ok {
		slog.Info("auth_event", "event", "session_restored", "teacher", sess.TeacherName)
		return &sess, nil
	}

	if token != "" || name != "" {
		slog.Info("auth_event", "event", "session_discarded", "reason", "partial")
	}
	if err := deps.Store.RemoveItems(ctx, session.KeyToken, session.KeyName); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	return nil, nil
}

// ExecuteSaveSession writes sess to storage, or removes both keys when sess is nil.
// PRE: sess is nil or valid
// POST: Storage holds exactly the given session
func ExecuteSaveSession(ctx context.Context, sess *session.Session, deps SessionDeps) error {
	if sess == nil {
		if err := deps.Store.RemoveItems(ctx, session.KeyToken, session.KeyName); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	if err := sess.Validate(); err != nil {
		return err
	}
	err := deps.Store.SetItems(ctx, map[string]string{
		session.KeyToken: sess.Token,
		session.KeyName:  sess.TeacherName,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
