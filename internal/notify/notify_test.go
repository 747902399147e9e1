package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gallop/internal/models"
)

func testEvent() RaceEvent {
	return RaceEvent{
		Race: models.RaceRecord{
			ID:     "r_00003",
			Horses: []string{"h_a", "h_b"},
			Order:  []string{"h_b", "h_a"},
			Winner: "h_b",
		},
		WinnerName: "Echo",
	}
}

func fastClientConfig() ClientConfig {
	cfg := DefaultClientConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 0
	return cfg
}

func TestWebhookPublish(t *testing.T) {
	var received RaceEvent
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(fastClientConfig(), nil)
	defer client.Close()
	publisher := NewWebhookPublisher(server.URL, "s3cret", client)

	require.NoError(t, publisher.Publish(context.Background(), testEvent()))
	assert.Equal(t, "Bearer s3cret", auth)
	assert.Equal(t, "r_00003", received.Race.ID)
	assert.Equal(t, "Echo", received.WinnerName)
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(server.URL, "", NewClient(fastClientConfig(), nil))
	require.NoError(t, publisher.Publish(context.Background(), testEvent()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWebhookClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	publisher := NewWebhookPublisher(server.URL, "", NewClient(fastClientConfig(), nil))
	err := publisher.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerOpens(t *testing.T) {
	cfg := fastClientConfig()
	cfg.MaxRetries = 0
	cfg.BreakerThreshold = 2
	client := NewClient(cfg, nil)
	publisher := NewWebhookPublisher("http://127.0.0.1:1/hook", "", client)

	for i := 0; i < 2; i++ {
		assert.Error(t, publisher.Publish(context.Background(), testEvent()))
	}
	err := publisher.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestRedisPublishUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	publisher := NewRedisPublisherWithClient(client, "gallop:races")
	defer publisher.Close()

	assert.Equal(t, "redis", publisher.Name())
	assert.Error(t, publisher.Publish(context.Background(), testEvent()))
}

type recordingPublisher struct {
	name   string
	err    error
	events []RaceEvent
}

func (r *recordingPublisher) Name() string { return r.name }

func (r *recordingPublisher) Publish(_ context.Context, event RaceEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiContinuesPastFailures(t *testing.T) {
	failing := &recordingPublisher{name: "broken", err: errors.New("boom")}
	healthy := &recordingPublisher{name: "healthy"}
	multi := NewMulti(nil, failing, healthy)

	err := multi.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.Len(t, healthy.events, 1)
	assert.Equal(t, 2, multi.Len())

	assert.NoError(t, NewMulti(nil).Publish(context.Background(), testEvent()))
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	b := newBreaker(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	boom := errors.New("boom")

	assert.False(t, b.failed(boom))
	assert.True(t, b.failed(boom))
	require.Error(t, b.allow())

	now = now.Add(time.Minute)
	require.NoError(t, b.allow(), "one trial after the cooldown")
	assert.Error(t, b.allow(), "only one trial at a time")

	// a failed trial re-opens for another cooldown
	assert.True(t, b.failed(boom))
	assert.Error(t, b.allow())

	now = now.Add(time.Minute)
	require.NoError(t, b.allow())
	b.succeeded()
	assert.NoError(t, b.allow())
	assert.NoError(t, b.allow())
}

func TestBreakerCountsServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastClientConfig()
	cfg.MaxRetries = 0
	cfg.BreakerThreshold = 1
	publisher := NewWebhookPublisher(server.URL, "", NewClient(cfg, nil))

	assert.Error(t, publisher.Publish(context.Background(), testEvent()))
	err := publisher.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
