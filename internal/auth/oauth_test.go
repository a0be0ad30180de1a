package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeGitHub serves the token endpoint and the /user API.
func fakeGitHub(t *testing.T, user map[string]any, emails ...map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "gho_test", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(srv *httptest.Server) *GitHubProvider {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost:3000/auth/github/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.userURL = srv.URL + "/user"
	p.emailsURL = srv.URL + "/user/emails"
	return p
}

func TestGitHubProvider_AuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "secret", "http://localhost:3000/auth/github/callback")

	u, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "user:email")
}

func TestGitHubProvider_Exchange(t *testing.T) {
	srv := fakeGitHub(t, map[string]any{
		"id": 4242, "login": "octocat", "name": "", "email": "octo@example.com",
	})

	user, err := testProvider(srv).Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, int64(4242), user.ID)
	assert.Equal(t, "octo@example.com", user.Email)
	assert.Equal(t, "octocat", user.DisplayName(), "empty name falls back to login")
}

func TestGitHubProvider_Exchange_ZeroID(t *testing.T) {
	srv := fakeGitHub(t, map[string]any{"id": 0, "login": "ghost"})

	_, err := testProvider(srv).Exchange(context.Background(), "the-code")
	assert.Error(t, err)
}

func TestGitHubProvider_Exchange_HiddenEmail(t *testing.T) {
	srv := fakeGitHub(t,
		map[string]any{"id": 7, "login": "private", "email": nil},
		map[string]any{"email": "old@example.com", "primary": false, "verified": true},
		map[string]any{"email": "unverified@example.com", "primary": true, "verified": false},
	)

	user, err := testProvider(srv).Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Empty(t, user.Email, "only a verified primary address is taken")

	srv = fakeGitHub(t,
		map[string]any{"id": 7, "login": "private"},
		map[string]any{"email": "me@example.com", "primary": true, "verified": true},
	)

	user, err = testProvider(srv).Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", user.Email)
}
