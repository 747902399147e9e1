package feed

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/race"
)

func startFeed(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil)
	go hub.Run(ctx)

	server := httptest.NewServer(NewHandler(ctx, hub))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubStreamsRace(t *testing.T) {
	hub, conn := startFeed(t)

	field := []models.Horse{
		{ID: "h_a", Name: "Alpha", Stats: models.Stats{Energy: 8, Agility: 7, Discipline: 6, Temperament: 5}, RetireAfter: 10},
		{ID: "h_b", Name: "Bravo", Stats: models.Stats{Energy: 6, Agility: 6, Discipline: 6, Temperament: 5}, RetireAfter: 10},
	}
	run, err := race.Stream(race.Config{Distance: 60, Seed: race.Seeded(7), Field: field})
	require.NoError(t, err)

	hub.RaceStarted("r_00001", run, map[string]float64{"h_a": 1.8, "h_b": 2.4})
	run.Next()
	hub.Tick("r_00001", run.Snapshot())
	summary, err := run.Finish()
	require.NoError(t, err)
	hub.RaceFinished(models.RaceRecord{ID: "r_00001", Order: summary.Order, Winner: summary.Winner})

	start := readMessage(t, conn)
	assert.Equal(t, string(MessageTypeRaceStart), start["type"])
	assert.Equal(t, "r_00001", start["race_id"])
	payload := start["payload"].(map[string]interface{})
	assert.Len(t, payload["horses"], 2)
	assert.Equal(t, summary.TrackCondition, payload["track"])

	tick := readMessage(t, conn)
	assert.Equal(t, string(MessageTypeTick), tick["type"])
	assert.EqualValues(t, 1, tick["payload"].(map[string]interface{})["tick"])

	finish := readMessage(t, conn)
	assert.Equal(t, string(MessageTypeRaceFinish), finish["type"])
	assert.Equal(t, summary.Winner, finish["payload"].(map[string]interface{})["winner"])
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, conn := startFeed(t)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastStampsTimestamp(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast(Message{Type: MessageTypeTick})

	msg := <-hub.broadcast
	assert.False(t, msg.Timestamp.IsZero())
}

func TestRegisterAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	hub.Register(&Client{ID: "late"})
	hub.Unregister(&Client{ID: "late"})
	assert.Equal(t, 0, hub.ClientCount())
}
