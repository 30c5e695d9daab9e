package orchestrators

import (
	"context"
	"errors"

	"signupdesk/internal/adapters/activityapi"
	"signupdesk/internal/domain/activity"
)

// mockAPI implements the upstream interfaces with canned responses.
type mockAPI struct {
	loginResult activityapi.LoginResult
	catalog     activity.Catalog
	text        string
	err         error

	calls     int
	lastToken string
	lastName  string
	lastEmail string
}

func (m *mockAPI) Login(_ context.Context, _, _ string) (activityapi.LoginResult, error) {
	m.calls++
	return m.loginResult, m.err
}

func (m *mockAPI) ListActivities(_ context.Context) (activity.Catalog, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.catalog, nil
}

func (m *mockAPI) Signup(_ context.Context, token, name, email string) (string, error) {
	m.calls++
	m.lastToken, m.lastName, m.lastEmail = token, name, email
	return m.text, m.err
}

func (m *mockAPI) Unregister(_ context.Context, token, name, email string) (string, error) {
	m.calls++
	m.lastToken, m.lastName, m.lastEmail = token, name, email
	return m.text, m.err
}

// mockStore implements SessionStore over a map.
type mockStore struct {
	items map[string]string
	err   error
}

func newMockStore(items map[string]string) *mockStore {
	if items == nil {
		items = map[string]string{}
	}
	return &mockStore{items: items}
}

func (m *mockStore) GetItem(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *mockStore) SetItems(_ context.Context, items map[string]string) error {
	if m.err != nil {
		return m.err
	}
	for k, v := range items {
		m.items[k] = v
	}
	return nil
}

func (m *mockStore) RemoveItems(_ context.Context, keys ...string) error {
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

var errNetwork = errors.New("connection refused")

func transportErr(op string) error {
	return &activityapi.TransportError{Op: op, Err: errNetwork}
}
