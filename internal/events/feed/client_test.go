package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbell/campusbell/internal/events/feed"
	"github.com/campusbell/campusbell/internal/provider/resilience"
)

func newTestClient(url string) *feed.Client {
	cfg := resilience.DefaultClientConfig("test-feed")
	cfg.MaxRetries = 1
	return feed.NewClient(feed.ClientConfig{
		URL:        url,
		HTTPClient: resilience.NewClient(cfg),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_FetchCalendar(t *testing.T) {
	const payload = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/calendar", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	body, err := client.FetchCalendar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestClient_FetchCalendar_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCalendar(context.Background())
	assert.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, feed.ProviderName, newTestClient("http://localhost").Name())
}
