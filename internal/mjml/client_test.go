package mjml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach-platform/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.MJMLConfig{
		BaseURL:        srv.URL,
		AppID:          "app",
		SecretKey:      "secret",
		TimeoutSeconds: 5,
	}, srv.Client())
}

func TestCompileSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/render", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "app", user)
		assert.Equal(t, "secret", pass)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["mjml"], "<mjml>")

		json.NewEncoder(w).Encode(map[string]any{"html": "<!doctype html><html></html>"})
	})

	html, errs, err := client.Compile(context.Background(), "<mjml><mj-body></mj-body></mjml>")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Contains(t, html, "<!doctype html>")
}

func TestCompileMarkupErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{
				{"line": 3, "message": "mj-bogus is not a known element", "tagName": "mj-bogus"},
			},
		})
	})

	html, errs, err := client.Compile(context.Background(), "<mjml><mj-bogus/></mjml>")
	require.NoError(t, err)
	assert.Empty(t, html)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "line 3")
	assert.Contains(t, errs[0], "mj-bogus")
}

func TestCompileServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"message": "bad credentials"})
	})

	_, _, err := client.Compile(context.Background(), "<mjml></mjml>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
