package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"signupdesk/internal/application/orchestrators"
	"signupdesk/internal/domain/message"
	"signupdesk/internal/domain/session"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// wantsJSON reports whether the caller is a script rather than the page.
func wantsJSON(r *http.Request) bool {
	if isJSONBody(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// decodeInput fills v from a JSON body or from the named form fields.
func decodeInput(r *http.Request, v any, fields map[string]*string) error {
	if isJSONBody(r) {
		return strictDecode(r, v)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	for name, dst := range fields {
		*dst = r.PostFormValue(name)
	}
	return nil
}

// handleIndex renders the page. The catalog is fetched only before the first snapshot.
func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.ctrl.EnsureLoaded(r.Context())
	view := s.ctrl.View()
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}
	s.pages.render(w, r, http.StatusOK, view)
}

// handleRefresh re-fetches the catalog.
func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Refresh(r.Context())
	if wantsJSON(r) {
		view := s.ctrl.View()
		writeJSON(w, http.StatusOK, map[string]any{
			"load_failed": view.Board.LoadFailed,
			"activities":  len(view.Board.Cards),
		})
		return
	}
	redirectHome(w, r)
}

// handleLoginOpen renders the page with the login dialog shown.
func (s *server) handleLoginOpen(w http.ResponseWriter, r *http.Request) {
	s.ctrl.OpenLogin()
	s.pages.render(w, r, http.StatusOK, s.ctrl.View())
}

// handleLoginClose hides the dialog and drops its error.
func (s *server) handleLoginClose(w http.ResponseWriter, r *http.Request) {
	s.ctrl.CloseLogin()
	redirectHome(w, r)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin authenticates the teacher.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeInput(r, &in, map[string]*string{"username": &in.Username, "password": &in.Password}); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := s.ctrl.Login(r.Context(), in.Username, in.Password)
	if wantsJSON(r) {
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, orchestrators.ErrLoginUnavailable) {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]any{"success": false, "message": orchestrators.LoginErrorText(err)})
			return
		}
		resp := map[string]any{"success": true}
		if sess := s.ctrl.Session(); sess != nil {
			resp["teacher_name"] = sess.TeacherName
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		s.pages.render(w, r, http.StatusOK, s.ctrl.View())
		return
	}
	redirectHome(w, r)
}

// handleLogout ends the session.
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Logout(r.Context())
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	redirectHome(w, r)
}

type registrationRequest struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

// handleSignup registers a student from the signup form.
func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in registrationRequest
	if err := decodeInput(r, &in, map[string]*string{"activity": &in.Activity, "email": &in.Email}); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s.respondMessage(w, r, s.ctrl.Signup(r.Context(), in.Email, in.Activity))
}

// handleUnregister removes a student via a participant's removal control.
func (s *server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	var in registrationRequest
	if err := decodeInput(r, &in, map[string]*string{"activity": &in.Activity, "email": &in.Email}); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s.respondMessage(w, r, s.ctrl.Unregister(r.Context(), in.Activity, in.Email))
}

func (s *server) respondMessage(w http.ResponseWriter, r *http.Request, msg message.Message) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"message": msg.Text, "kind": msg.Kind})
		return
	}
	redirectHome(w, r)
}

// messageResponse is the JSON shape of GET /message.
type messageResponse struct {
	Visible     bool   `json:"visible"`
	Text        string `json:"text,omitempty"`
	Kind        string `json:"kind,omitempty"`
	RemainingMs int64  `json:"remaining_ms"`
}

// handleMessage reports the transient message so the page can hide it on time.
func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	resp := messageResponse{}
	if m := s.ctrl.CurrentMessage(); m != nil {
		resp = messageResponse{Visible: true, Text: m.Text, Kind: m.Kind, RemainingMs: m.RemainingMs}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": session.State(s.ctrl.Session()),
	})
}

// handlePerf returns request, query and upstream timing stats.
// ?minutes=N selects the window (default 15).
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	minutes := 15
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
			return
		}
		minutes = n
	}
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, s.collector.Snapshot(since, 10))
}
