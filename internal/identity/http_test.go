// ABOUTME: Tests for the /auth HTTP endpoints
// ABOUTME: Uses httptest against a real service and SQLite store

package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, _ := newTestService(t)
	mux := http.NewServeMux()
	NewHandler(svc, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, authResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded authResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandleRegister(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv, "/auth/register",
		`{"name":"ada","email":"ada@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Token)
	require.NotNil(t, body.User)
	assert.Equal(t, "ada", body.User.Name)
}

func TestHandleRegister_MissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv, "/auth/register", `{"email":"ada@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Msg)
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)

	_, first := postJSON(t, srv, "/auth/register",
		`{"name":"ada","email":"ada@example.com","password":"hunter22"}`)
	require.True(t, first.Success)

	resp, body := postJSON(t, srv, "/auth/register",
		`{"name":"imposter","email":"ada@example.com","password":"other"}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestHandleLogin(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv, "/auth/register",
		`{"name":"ada","email":"ada@example.com","password":"hunter22"}`)

	resp, body := postJSON(t, srv, "/auth/login",
		`{"email":"ada@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Token)
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv, "/auth/register",
		`{"name":"ada","email":"ada@example.com","password":"hunter22"}`)

	resp, body := postJSON(t, srv, "/auth/login",
		`{"email":"ada@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Empty(t, body.Token)
}

func TestHandleLogin_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv, "/auth/login", `{not json`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}
