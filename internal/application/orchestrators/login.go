package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"signupdesk/internal/adapters/activityapi"
	"signupdesk/internal/domain/session"
)

// LoginAPI defines the upstream call needed by Login.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (activityapi.LoginResult, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	API LoginAPI
}

// Login failure texts shown inline in the login dialog.
const (
	LoginMissingCredentialsText = "Please enter a username and password."
	LoginFailedText             = "Login failed. Please try again."
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrLoginRejected      = errors.New("login rejected")
	ErrLoginUnavailable   = errors.New("login request failed")
)

// LoginError carries the text to show in the login dialog.
type LoginError struct {
	Reason error
	Text   string
}

func (e *LoginError) Error() string {
	return e.Reason.Error() + ": " + e.Text
}

func (e *LoginError) Unwrap() error {
	return e.Reason
}

// ExecuteLogin exchanges credentials for a teacher session.
// The session is returned, not stored; persisting it is a session transition.
// PRE: none
// POST: Returns a valid session, or a *LoginError wrapping ErrMissingCredentials,
//
//	ErrLoginRejected or ErrLoginUnavailable
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (session.Session, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return session.Session{}, &LoginError{Reason: ErrMissingCredentials, Text: LoginMissingCredentialsText}
	}

	result, err := deps.API.Login(ctx, username, input.Password)
	if err != nil {
		slog.Error("auth_event", "event", "login_error", "username", username, "error", err)
		return session.Session{}, &LoginError{Reason: ErrLoginUnavailable, Text: LoginFailedText}
	}

	if !result.Success {
		slog.Info("auth_event", "event", "login_failed", "username", username)
		text := result.Message
		if text == "" {
			text = LoginFailedText
		}
		return session.Session{}, &LoginError{Reason: ErrLoginRejected, Text: text}
	}

	sess, err := session.New(result.TeacherName, result.Token)
	if err != nil {
		// success:true without a token or name cannot be used for later calls
		slog.Error("auth_event", "event", "login_error", "username", username, "error", err)
		return session.Session{}, &LoginError{Reason: ErrLoginUnavailable, Text: LoginFailedText}
	}

	slog.Info("auth_event", "event", "login_success", "username", username, "teacher", sess.TeacherName)
	return sess, nil
}

// LoginErrorText returns the inline text for a login failure.
func LoginErrorText(err error) string {
	var le *LoginError
	if errors.As(err, &le) {
		return le.Text
	}
	return LoginFailedText
}
