package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"signupdesk/internal/adapters/activityapi"
	"signupdesk/internal/domain/activity"
	"signupdesk/internal/domain/message"
	"signupdesk/internal/domain/session"
)

// SignupAPI defines the upstream call needed by Signup.
type SignupAPI interface {
	Signup(ctx context.Context, token, activityName, email string) (string, error)
}

// UnregisterAPI defines the upstream call needed by Unregister.
type UnregisterAPI interface {
	Unregister(ctx context.Context, token, activityName, email string) (string, error)
}

// RegistrationInput carries input for signup and unregister.
type RegistrationInput struct {
	Session      *session.Session
	ActivityName string
	Email        string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	API SignupAPI
}

// UnregisterDeps holds dependencies for Unregister.
type UnregisterDeps struct {
	API UnregisterAPI
}

var (
	ErrNotAuthenticated = errors.New("teacher session required")
	ErrMissingEmail     = errors.New("student email is required")
	ErrMissingActivity  = errors.New("activity is required")
)

// Action identifies a registration action and its user-facing texts.
type Action struct {
	Name          string
	GuardText     string
	TransportText string
	SuccessFormat string
}

// Registration actions.
var (
	ActionSignup = Action{
		Name:          "signup",
		GuardText:     "Only teachers can register students",
		TransportText: "Failed to register student. Please try again.",
		SuccessFormat: "Signed up %s for %s",
	}
	ActionUnregister = Action{
		Name:          "unregister",
		GuardText:     "Only teachers can unregister students",
		TransportText: "Failed to unregister. Please try again.",
		SuccessFormat: "Unregistered %s from %s",
	}
)

// GenericErrorText is shown when the service rejects a request without a usable detail.
const GenericErrorText = "An error occurred"

// Texts for rejected form input.
const (
	MissingEmailText    = "Please enter the student's email."
	MissingActivityText = "Please select an activity."
)

// ExecuteSignup registers a student for an activity.
// PRE: none
// POST: Returns the success text, or an error to be classified with FailureMessage
// INVARIANT: No request is sent without a session, an email and an activity
func ExecuteSignup(ctx context.Context, input RegistrationInput, deps SignupDeps) (string, error) {
	reg, err := checkRegistration(input)
	if err != nil {
		return "", err
	}
	text, err := deps.API.Signup(ctx, input.Session.Token, reg.Activity, reg.Email)
	return finishRegistration(ActionSignup, reg, text, err)
}

// ExecuteUnregister removes a student from an activity.
// PRE: none
// POST: Returns the success text, or an error to be classified with FailureMessage
// INVARIANT: No request is sent without a session, an email and an activity
func ExecuteUnregister(ctx context.Context, input RegistrationInput, deps UnregisterDeps) (string, error) {
	reg, err := checkRegistration(input)
	if err != nil {
		return "", err
	}
	text, err := deps.API.Unregister(ctx, input.Session.Token, reg.Activity, reg.Email)
	return finishRegistration(ActionUnregister, reg, text, err)
}

func checkRegistration(input RegistrationInput) (activity.Registration, error) {
	if input.Session == nil {
		return activity.Registration{}, ErrNotAuthenticated
	}
	reg := activity.Registration{
		Activity: strings.TrimSpace(input.ActivityName),
		Email:    strings.TrimSpace(input.Email),
	}
	switch err := reg.Validate(); {
	case errors.Is(err, activity.ErrEmptyEmail):
		return reg, ErrMissingEmail
	case errors.Is(err, activity.ErrEmptyName):
		return reg, ErrMissingActivity
	case err != nil:
		return reg, err
	}
	return reg, nil
}

func finishRegistration(action Action, reg activity.Registration, text string, err error) (string, error) {
	if err != nil {
		if activityapi.IsTransport(err) {
			slog.Error("registration_failed", "action", action.Name, "activity", reg.Activity, "email", reg.Email, "error", err)
		} else {
			slog.Info("registration_rejected", "action", action.Name, "activity", reg.Activity, "email", reg.Email, "error", err)
		}
		return "", err
	}
	slog.Info("registration_event", "action", action.Name, "activity", reg.Activity, "email", reg.Email)
	if text == "" {
		text = fmt.Sprintf(action.SuccessFormat, reg.Email, reg.Activity)
	}
	return text, nil
}

// FailureMessage maps a signup or unregister error to the message shown to the user.
func FailureMessage(action Action, err error) message.Message {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return message.Error(action.GuardText)
	case errors.Is(err, ErrMissingEmail):
		return message.Error(MissingEmailText)
	case errors.Is(err, ErrMissingActivity):
		return message.Error(MissingActivityText)
	}
	if apiErr, ok := activityapi.AsAPIError(err); ok {
		if apiErr.Detail != "" {
			return message.Error(apiErr.Detail)
		}
		return message.Error(GenericErrorText)
	}
	return message.Error(action.TransportText)
}
