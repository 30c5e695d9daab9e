package orchestrators

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"signupdesk/internal/adapters/activityapi"
	"signupdesk/internal/domain/message"
	"signupdesk/internal/domain/session"
)

var teacherSession = &session.Session{TeacherName: "Ms. Rodriguez", Token: "tok"}

// TestExecuteSignup_Success tests the token and trimmed input reach the API.
func TestExecuteSignup_Success(t *testing.T) {
	api := &mockAPI{text: "Signed up kid@x.com for Chess Club"}
	text, err := ExecuteSignup(context.Background(), RegistrationInput{
		Session:      teacherSession,
		ActivityName: "Chess Club",
		Email:        " kid@x.com ",
	}, SignupDeps{API: api})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Signed up kid@x.com for Chess Club" {
		t.Errorf("text = %q", text)
	}
	if api.lastToken != "tok" || api.lastName != "Chess Club" || api.lastEmail != "kid@x.com" {
		t.Errorf("unexpected call: token=%q name=%q email=%q", api.lastToken, api.lastName, api.lastEmail)
	}
}

// TestExecuteUnregister_FallbackText tests an empty service message gets a default.
func TestExecuteUnregister_FallbackText(t *testing.T) {
	api := &mockAPI{}
	text, err := ExecuteUnregister(context.Background(), RegistrationInput{
		Session:      teacherSession,
		ActivityName: "Gym Class",
		Email:        "kid@x.com",
	}, UnregisterDeps{API: api})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Unregistered kid@x.com from Gym Class" {
		t.Errorf("text = %q", text)
	}
}

// TestRegistration_Guards tests rejected input never reaches the API.
func TestRegistration_Guards(t *testing.T) {
	tests := []struct {
		name    string
		input   RegistrationInput
		wantErr error
	}{
		{name: "anonymous", input: RegistrationInput{ActivityName: "Chess Club", Email: "a@x.com"}, wantErr: ErrNotAuthenticated},
		{name: "missing email", input: RegistrationInput{Session: teacherSession, ActivityName: "Chess Club", Email: " "}, wantErr: ErrMissingEmail},
		{name: "missing activity", input: RegistrationInput{Session: teacherSession, Email: "a@x.com"}, wantErr: ErrMissingActivity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			if _, err := ExecuteSignup(context.Background(), tt.input, SignupDeps{API: api}); !errors.Is(err, tt.wantErr) {
				t.Errorf("signup: expected %v, got %v", tt.wantErr, err)
			}
			if _, err := ExecuteUnregister(context.Background(), tt.input, UnregisterDeps{API: api}); !errors.Is(err, tt.wantErr) {
				t.Errorf("unregister: expected %v, got %v", tt.wantErr, err)
			}
			if api.calls != 0 {
				t.Errorf("expected no upstream calls, got %d", api.calls)
			}
		})
	}
}

// TestFailureMessage tests every failure class maps to its text.
func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		err    error
		want   string
	}{
		{name: "signup guard", action: ActionSignup, err: ErrNotAuthenticated, want: "Only teachers can register students"},
		{name: "unregister guard", action: ActionUnregister, err: ErrNotAuthenticated, want: "Only teachers can unregister students"},
		{name: "missing email", action: ActionSignup, err: ErrMissingEmail, want: MissingEmailText},
		{name: "missing activity", action: ActionSignup, err: ErrMissingActivity, want: MissingActivityText},
		{
			name:   "detail",
			action: ActionSignup,
			err:    &activityapi.APIError{Op: "signup", Status: http.StatusBadRequest, Detail: "Student is already signed up"},
			want:   "Student is already signed up",
		},
		{
			name:   "no detail",
			action: ActionUnregister,
			err:    &activityapi.APIError{Op: "unregister", Status: http.StatusUnprocessableEntity},
			want:   GenericErrorText,
		},
		{name: "signup transport", action: ActionSignup, err: transportErr("signup"), want: "Failed to register student. Please try again."},
		{name: "unregister transport", action: ActionUnregister, err: transportErr("unregister"), want: "Failed to unregister. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FailureMessage(tt.action, tt.err)
			if got.Kind != message.KindError {
				t.Errorf("Kind = %q, want error", got.Kind)
			}
			if got.Text != tt.want {
				t.Errorf("Text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}
