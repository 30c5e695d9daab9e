package projections

import "signupdesk/internal/domain/session"

// Chrome holds the visibility of every login-dependent part of the page.
type Chrome struct {
	Authenticated     bool
	Greeting          string
	ShowLoginButton   bool
	ShowUserInfo      bool
	ShowTeacherNotice bool
	ShowStudentNotice bool
	ShowSignupForm    bool
}

// BuildChrome derives the page toggles from the session snapshot.
// POST: Teacher-only parts are visible iff sess is non-nil
func BuildChrome(sess *session.Session) Chrome {
	if sess == nil {
		return Chrome{
			ShowLoginButton:   true,
			ShowStudentNotice: true,
		}
	}
	return Chrome{
		Authenticated:     true,
		Greeting:          sess.Greeting(),
		ShowUserInfo:      true,
		ShowTeacherNotice: true,
		ShowSignupForm:    true,
	}
}
