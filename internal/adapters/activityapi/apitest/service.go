// Package apitest runs an in-process stand-in for the activities service.
package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"signupdesk/internal/domain/activity"
)

// Teacher is a login the fake service accepts.
type Teacher struct {
	Username string
	Password string
	Name     string
}

// Service is an in-memory activities service speaking the same JSON as the real one.
type Service struct {
	mu         sync.Mutex
	activities activity.Catalog
	teachers   []Teacher
	hits       map[string]int
	failList   bool

	// Hold, when set, blocks signup and unregister until it is closed.
	Hold chan struct{}
}

// Route names counted by Hits.
const (
	RouteList       = "list"
	RouteLogin      = "login"
	RouteSignup     = "signup"
	RouteUnregister = "unregister"
)

// NewService returns a service seeded with the given catalog and teachers.
func NewService(catalog activity.Catalog, teachers ...Teacher) *Service {
	cp := make(activity.Catalog, len(catalog))
	for i, a := range catalog {
		a.Participants = append([]string{}, a.Participants...)
		cp[i] = a
	}
	return &Service{activities: cp, teachers: teachers, hits: map[string]int{}}
}

// DefaultService returns a small school catalog and one teacher (rodriguez / art123).
func DefaultService() *Service {
	return NewService(activity.Catalog{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn **programming** fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{},
		},
	}, Teacher{Username: "rodriguez", Password: "art123", Name: "Ms. Rodriguez"})
}

// TokenFor returns the bearer token issued to username.
func TokenFor(username string) string {
	return "token-" + username
}

// Start serves the service on an httptest server closed at test cleanup.
func (s *Service) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// Handler returns the routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /activities", s.handleList)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /activities/{name}/signup", s.handleSignup)
	mux.HandleFunc("DELETE /activities/{name}/unregister", s.handleUnregister)
	return mux
}

// Hits returns how many requests reached the named route.
func (s *Service) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Catalog returns a copy of the current catalog.
func (s *Service) Catalog() activity.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(activity.Catalog, len(s.activities))
	for i, a := range s.activities {
		a.Participants = slices.Clone(a.Participants)
		cp[i] = a
	}
	return cp
}

// SetFailList makes GET /activities answer 500 while on.
func (s *Service) SetFailList(on bool) {
	s.mu.Lock()
	s.failList = on
	s.mu.Unlock()
}

func (s *Service) count(route string) {
	s.mu.Lock()
	s.hits[route]++
	s.mu.Unlock()
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	s.count(RouteList)
	s.mu.Lock()
	fail := s.failList
	s.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keys are written in catalog order; a Go map would shuffle them.
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range s.activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(a.Name)
		val, _ := json.Marshal(map[string]any{
			"description":      a.Description,
			"schedule":         a.Schedule,
			"max_participants": a.MaxParticipants,
			"participants":     a.Participants,
		})
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.count(RouteLogin)
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []string{"invalid body"}})
		return
	}
	for _, t := range s.teachers {
		if t.Username == req.Username && t.Password == req.Password {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true, "token": TokenFor(t.Username), "teacher_name": t.Name, "message": "Login successful",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid username or password"})
}

func (s *Service) authorized(r *http.Request) bool {
	for _, t := range s.teachers {
		if r.Header.Get("Authorization") == "Bearer "+TokenFor(t.Username) {
			return true
		}
	}
	return false
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	s.count(RouteSignup)
	s.wait()
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Teacher authentication required"})
		return
	}
	name, email := r.PathValue("name"), r.URL.Query().Get("email")

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Activity not found"})
		return
	}
	if s.activities[i].HasParticipant(email) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Student is already signed up"})
		return
	}
	s.activities[i].Participants = append(s.activities[i].Participants, email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed up " + email + " for " + name})
}

func (s *Service) handleUnregister(w http.ResponseWriter, r *http.Request) {
	s.count(RouteUnregister)
	s.wait()
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Teacher authentication required"})
		return
	}
	name, email := r.PathValue("name"), r.URL.Query().Get("email")

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Activity not found"})
		return
	}
	j := slices.Index(s.activities[i].Participants, email)
	if j < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Student is not signed up for this activity"})
		return
	}
	s.activities[i].Participants = slices.Delete(s.activities[i].Participants, j, j+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unregistered " + email + " from " + name})
}

func (s *Service) wait() {
	if s.Hold != nil {
		<-s.Hold
	}
}

func (s *Service) index(name string) int {
	for i, a := range s.activities {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
