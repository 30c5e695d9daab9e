package orchestrators

import (
	"context"
	"errors"
	"testing"

	"signupdesk/internal/adapters/activityapi"
)

// TestExecuteLogin_Success tests a successful login builds the session.
func TestExecuteLogin_Success(t *testing.T) {
	api := &mockAPI{loginResult: activityapi.LoginResult{Success: true, Token: "tok", TeacherName: "Ms. Rodriguez"}}
	sess, err := ExecuteLogin(context.Background(), LoginInput{Username: "rodriguez", Password: "art123"}, LoginDeps{API: api})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "tok" || sess.TeacherName != "Ms. Rodriguez" {
		t.Errorf("unexpected session: %+v", sess)
	}
}

// TestExecuteLogin_Failures tests each failure path and its dialog text.
func TestExecuteLogin_Failures(t *testing.T) {
	tests := []struct {
		name      string
		input     LoginInput
		api       *mockAPI
		wantErr   error
		wantText  string
		wantCalls int
	}{
		{
			name:      "empty username",
			input:     LoginInput{Username: "  ", Password: "x"},
			api:       &mockAPI{},
			wantErr:   ErrMissingCredentials,
			wantText:  LoginMissingCredentialsText,
			wantCalls: 0,
		},
		{
			name:      "empty password",
			input:     LoginInput{Username: "rodriguez"},
			api:       &mockAPI{},
			wantErr:   ErrMissingCredentials,
			wantText:  LoginMissingCredentialsText,
			wantCalls: 0,
		},
		{
			name:      "rejected with message",
			input:     LoginInput{Username: "rodriguez", Password: "nope"},
			api:       &mockAPI{loginResult: activityapi.LoginResult{Message: "Invalid username or password"}},
			wantErr:   ErrLoginRejected,
			wantText:  "Invalid username or password",
			wantCalls: 1,
		},
		{
			name:      "rejected without message",
			input:     LoginInput{Username: "rodriguez", Password: "nope"},
			api:       &mockAPI{},
			wantErr:   ErrLoginRejected,
			wantText:  LoginFailedText,
			wantCalls: 1,
		},
		{
			name:      "transport failure",
			input:     LoginInput{Username: "rodriguez", Password: "art123"},
			api:       &mockAPI{err: transportErr("login")},
			wantErr:   ErrLoginUnavailable,
			wantText:  LoginFailedText,
			wantCalls: 1,
		},
		{
			name:      "success without token",
			input:     LoginInput{Username: "rodriguez", Password: "art123"},
			api:       &mockAPI{loginResult: activityapi.LoginResult{Success: true, TeacherName: "Ms. Rodriguez"}},
			wantErr:   ErrLoginUnavailable,
			wantText:  LoginFailedText,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteLogin(context.Background(), tt.input, LoginDeps{API: tt.api})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := LoginErrorText(err); got != tt.wantText {
				t.Errorf("LoginErrorText() = %q, want %q", got, tt.wantText)
			}
			if tt.api.calls != tt.wantCalls {
				t.Errorf("expected %d upstream calls, got %d", tt.wantCalls, tt.api.calls)
			}
		})
	}
}
