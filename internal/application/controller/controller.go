// Package controller owns the client state: the teacher session, the last
// activity snapshot, the login dialog, the signup form draft and the
// transient message. HTTP handlers call into it concurrently.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"signupdesk/internal/application/orchestrators"
	"signupdesk/internal/domain/activity"
	"signupdesk/internal/domain/message"
	"signupdesk/internal/domain/session"
)

// API is the upstream surface the controller drives.
type API interface {
	orchestrators.LoginAPI
	orchestrators.CatalogAPI
	orchestrators.SignupAPI
	orchestrators.UnregisterAPI
}

// Deps holds dependencies for the controller.
type Deps struct {
	API       API
	Store     orchestrators.SessionStore
	Messenger *Messenger
}

// LoginDialog is the state of the login modal.
type LoginDialog struct {
	Open  bool
	Error string
}

// Draft is the signup form content kept after a failed submission.
type Draft struct {
	Email    string
	Activity string
}

// Controller coordinates session, listing, registration and messaging.
type Controller struct {
	api       API
	store     orchestrators.SessionStore
	messenger *Messenger
	inflight  singleflight.Group

	session atomic.Pointer[session.Session]
	transMu sync.Mutex // serializes session transitions

	mu         sync.Mutex
	catalog    activity.Catalog
	options    []string
	attempted  bool
	loadFailed bool
	fetchSeq   uint64
	appliedSeq uint64
	login      LoginDialog
	draft      Draft
}

// New creates a controller. Call Start before serving.
func New(deps Deps) *Controller {
	m := deps.Messenger
	if m == nil {
		m = NewMessenger(message.DisplayDuration)
	}
	return &Controller{api: deps.API, store: deps.Store, messenger: m}
}

// Start restores the stored session and fetches the first snapshot.
// PRE: none
// POST: Session is restored or storage is normalised to anonymous; a fetch was attempted
func (c *Controller) Start(ctx context.Context) error {
	sess, err := orchestrators.ExecuteRestoreSession(ctx, orchestrators.SessionDeps{Store: c.store})
	if err != nil {
		return err
	}
	c.session.Store(sess)
	c.Refresh(ctx)
	return nil
}

// Session returns the current session snapshot, nil when anonymous.
func (c *Controller) Session() *session.Session {
	return c.session.Load()
}

// Messenger returns the message holder.
func (c *Controller) Messenger() *Messenger {
	return c.messenger
}

// transition is the only place the session changes.
// INVARIANT: storage and the in-memory snapshot agree after a successful call
func (c *Controller) transition(ctx context.Context, next *session.Session) error {
	c.transMu.Lock()
	defer c.transMu.Unlock()

	err := orchestrators.ExecuteSaveSession(ctx, next, orchestrators.SessionDeps{Store: c.store})
	if err != nil && next != nil {
		return err
	}
	// A failed clear still logs out in memory.
	prev := c.session.Swap(next)
	slog.Info("auth_event", "event", "session_transition", "from", session.State(prev), "to", session.State(next))
	return err
}

// OpenLogin shows the login dialog.
func (c *Controller) OpenLogin() {
	c.mu.Lock()
	c.login = LoginDialog{Open: true}
	c.mu.Unlock()
}

// CloseLogin hides the login dialog and clears its error.
func (c *Controller) CloseLogin() {
	c.mu.Lock()
	c.login = LoginDialog{}
	c.mu.Unlock()
}

// Login authenticates the teacher.
// PRE: none
// POST: On success the session is stored and active, the dialog is closed and
//
//	the listing re-fetched; otherwise the dialog shows the failure text
func (c *Controller) Login(ctx context.Context, username, password string) error {
	_, err, _ := c.inflight.Do("login\x00"+username+"\x00"+password, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		sess, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{
			Username: username,
			Password: password,
		}, orchestrators.LoginDeps{API: c.api})
		if err != nil {
			c.setLoginError(orchestrators.LoginErrorText(err))
			return nil, err
		}
		if err := c.transition(ctx, &sess); err != nil {
			slog.Error("auth_event", "event", "login_error", "error", err)
			c.setLoginError(orchestrators.LoginFailedText)
			return nil, err
		}
		c.CloseLogin()
		c.Refresh(ctx)
		return nil, nil
	})
	return err
}

func (c *Controller) setLoginError(text string) {
	c.mu.Lock()
	c.login = LoginDialog{Open: true, Error: text}
	c.mu.Unlock()
}

// Logout ends the session and re-fetches the listing.
// POST: Both storage keys are removed and every teacher-only part is hidden
func (c *Controller) Logout(ctx context.Context) {
	if err := c.transition(ctx, nil); err != nil {
		slog.Error("auth_event", "event", "logout_error", "error", err)
	}
	c.mu.Lock()
	c.draft = Draft{}
	c.mu.Unlock()
	c.Refresh(ctx)
}

// EnsureLoaded fetches the listing if no fetch has completed yet.
func (c *Controller) EnsureLoaded(ctx context.Context) {
	c.mu.Lock()
	attempted := c.attempted
	c.mu.Unlock()
	if !attempted {
		c.Refresh(ctx)
	}
}

// Refresh re-fetches the catalog. It never fails; a failed fetch replaces the
// listing with the load failure text and keeps the select options.
// INVARIANT: A slower, older fetch never overwrites a newer result
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	catalog, err := orchestrators.ExecuteRefresh(ctx, orchestrators.RefreshDeps{API: c.api})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.appliedSeq {
		return
	}
	c.appliedSeq = seq
	c.attempted = true
	if err != nil {
		c.loadFailed = true
		return
	}
	c.loadFailed = false
	c.catalog = catalog
	c.options = catalog.Names()
}

// Signup registers a student and returns the message that was shown.
// Identical submissions already in flight share one request.
func (c *Controller) Signup(ctx context.Context, email, activityName string) message.Message {
	return c.register(ctx, orchestrators.ActionSignup, activityName, email, func(ctx context.Context, in orchestrators.RegistrationInput) (string, error) {
		return orchestrators.ExecuteSignup(ctx, in, orchestrators.SignupDeps{API: c.api})
	})
}

// Unregister removes a student and returns the message that was shown.
// Identical submissions already in flight share one request.
func (c *Controller) Unregister(ctx context.Context, activityName, email string) message.Message {
	return c.register(ctx, orchestrators.ActionUnregister, activityName, email, func(ctx context.Context, in orchestrators.RegistrationInput) (string, error) {
		return orchestrators.ExecuteUnregister(ctx, in, orchestrators.UnregisterDeps{API: c.api})
	})
}

type registerFunc func(ctx context.Context, in orchestrators.RegistrationInput) (string, error)

func (c *Controller) register(ctx context.Context, action orchestrators.Action, activityName, email string, run registerFunc) message.Message {
	key := action.Name + "\x00" + activityName + "\x00" + email
	v, _, _ := c.inflight.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		text, err := run(ctx, orchestrators.RegistrationInput{
			Session:      c.Session(),
			ActivityName: activityName,
			Email:        email,
		})
		if err != nil {
			msg := orchestrators.FailureMessage(action, err)
			c.messenger.Show(msg)
			if action.Name == orchestrators.ActionSignup.Name {
				c.keepDraft(Draft{Email: email, Activity: activityName})
			}
			return msg, nil
		}
		msg := message.Success(text)
		c.messenger.Show(msg)
		if action.Name == orchestrators.ActionSignup.Name {
			c.keepDraft(Draft{})
		}
		c.Refresh(ctx)
		return msg, nil
	})
	return v.(message.Message)
}

func (c *Controller) keepDraft(d Draft) {
	c.mu.Lock()
	c.draft = d
	c.mu.Unlock()
}
