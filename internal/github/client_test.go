// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a httptest server and a client pointing to it.
func setupTestClient(t *testing.T, token string, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := NewClient(server.URL, token, logger)
	require.NoError(t, err)

	return client, server
}

func TestClient_SendSearchRequest(t *testing.T) {
	since := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("builds the search query and headers", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/repositories", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "language:java created:>2023-01-15", q.Get("q"))
			assert.Equal(t, "3", q.Get("page"))
			assert.Equal(t, "25", q.Get("per_page"))
			assert.Equal(t, "updated", q.Get("sort"))
			assert.Equal(t, "desc", q.Get("order"))
			assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
			assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
			assert.Empty(t, r.Header.Get("Authorization"))

			w.Header().Set("X-RateLimit-Remaining", "9")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"total_count": 0, "items": []}`)
		})
		client, server := setupTestClient(t, NoCredential, handler)
		defer server.Close()

		resp, err := client.SendSearchRequest(context.Background(), "java", since, 3, 25)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"total_count": 0, "items": []}`, string(resp.Body))
		assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
	})

	t.Run("sends the bearer credential when configured", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{}`)
		})
		client, server := setupTestClient(t, "secret-token", handler)
		defer server.Close()

		_, err := client.SendSearchRequest(context.Background(), "rust", since, 0, 1)
		require.NoError(t, err)
	})

	t.Run("returns non-success statuses without retrying", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
		})
		client, server := setupTestClient(t, NoCredential, handler)
		defer server.Close()

		resp, err := client.SendSearchRequest(context.Background(), "java", since, 0, 100)

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, string(resp.Body), "rate limit")
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
	})

	t.Run("returns transport failures as errors", func(t *testing.T) {
		client, server := setupTestClient(t, NoCredential, http.NotFoundHandler())
		server.Close()

		_, err := client.SendSearchRequest(context.Background(), "java", since, 0, 1)
		assert.Error(t, err)
	})
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	_, err := NewClient("://bad", NoCredential, logger)
	assert.Error(t, err)
}
