package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink(quietLogger())
	err := sink.Show(context.Background(), Notification{Title: "Sync complete", Body: "Synced 2 action(s)"})
	assert.NoError(t, err)
}

func TestWebhookSinkPostsNotification(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, quietLogger())
	err := sink.Show(context.Background(), Notification{
		Title:   "Sync incomplete",
		Body:    "2 pending retry",
		Options: json.RawMessage(`{"tag":"sync"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)

	var got Notification
	require.NoError(t, json.Unmarshal(gotBody, &got))
	assert.Equal(t, "Sync incomplete", got.Title)
	assert.Equal(t, "2 pending retry", got.Body)
}

func TestWebhookSinkNon2xxIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, quietLogger())
	err := sink.Show(context.Background(), Notification{Title: "Sync complete"})
	assert.Error(t, err)
}

func TestWebhookSinkUnreachableEndpoint(t *testing.T) {
	sink := NewWebhookSink("http://127.0.0.1:1/notify", quietLogger())
	err := sink.Show(context.Background(), Notification{Title: "Sync complete"})
	assert.Error(t, err)
}
