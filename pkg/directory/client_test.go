package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizsync/pkg/directory/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) types.Client {
	return NewClient(types.ClientConfig{
		BaseURL:      serverURL,
		Timeout:      5 * time.Second,
		ProbeTimeout: time.Second,
	})
}

func TestDoResolvesRelativeURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"biz-1"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/")

	resp, err := client.Do(context.Background(), types.ReplayRequest{
		Method: http.MethodPost,
		URL:    "/api/businesses",
		Body:   json.RawMessage(`{"name":"Corner Bakery"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/businesses", gotPath)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"biz-1"}`, string(resp.Body))
}

func TestDoSetsHeaders(t *testing.T) {
	var gotAuth, gotKey, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Do(context.Background(), types.ReplayRequest{
		Method:         http.MethodPut,
		URL:            "/api/businesses/biz-1",
		Body:           json.RawMessage(`{"name":"Renamed"}`),
		Token:          "secret-token",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"name":"Renamed"}`, string(gotBody))
}

func TestDoOmitsEmptyHeaders(t *testing.T) {
	var hasAuth, hasKey bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		_, hasKey = r.Header["Idempotency-Key"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Do(context.Background(), types.ReplayRequest{
		Method: http.MethodPost,
		URL:    "/api/businesses",
	})
	require.NoError(t, err)

	assert.False(t, hasAuth)
	assert.False(t, hasKey)
}

func TestDoNon2xxReturnsResponseAndError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"name is required"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Do(context.Background(), types.ReplayRequest{
		Method: http.MethodPost,
		URL:    "/api/businesses",
	})

	// The caller gets both: the error for control flow, the response for
	// the status code and body.
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.JSONEq(t, `{"error":"name is required"}`, string(resp.Body))
}

func TestDoAbsoluteURLBypassesBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Base points somewhere unreachable; the absolute URL wins.
	client := NewClient(types.ClientConfig{
		BaseURL:      "http://127.0.0.1:1",
		Timeout:      5 * time.Second,
		ProbeTimeout: time.Second,
	})

	_, err := client.Do(context.Background(), types.ReplayRequest{
		Method: http.MethodGet,
		URL:    server.URL + "/api/businesses",
	})
	assert.NoError(t, err)
}

func TestDoConnectionRefused(t *testing.T) {
	client := NewClient(types.ClientConfig{
		BaseURL:      "http://127.0.0.1:1",
		Timeout:      time.Second,
		ProbeTimeout: time.Second,
	})

	resp, err := client.Do(context.Background(), types.ReplayRequest{
		Method: http.MethodPost,
		URL:    "/api/businesses",
	})
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestPing(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(types.ClientConfig{
		BaseURL:      server.URL,
		HealthPath:   "/api/health",
		Timeout:      5 * time.Second,
		ProbeTimeout: time.Second,
	})

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, http.MethodHead, gotMethod)
	assert.Equal(t, "/api/health", gotPath)
}

func TestPingDefaultsHealthPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "/health", gotPath)
}

func TestPingFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.Error(t, client.Ping(context.Background()))

	down := NewClient(types.ClientConfig{
		BaseURL:      "http://127.0.0.1:1",
		Timeout:      time.Second,
		ProbeTimeout: time.Second,
	})
	assert.Error(t, down.Ping(context.Background()))
}
