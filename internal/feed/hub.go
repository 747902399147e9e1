package feed

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gallop/internal/metrics"
	"github.com/yourusername/gallop/internal/models"
	"github.com/yourusername/gallop/internal/race"
)

// Hub tracks connected clients and fans messages out to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *logrus.Entry
}

// NewHub creates a hub. Run must be called before clients connect.
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log.WithField("component", "feed"),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every client, dropping it if the queue is full
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast buffer full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// RaceStarted announces a race and its runners
func (h *Hub) RaceStarted(raceID string, run *race.Run, odds map[string]float64) {
	field := run.Field()
	runners := make([]RunnerInfo, len(field))
	for i, horse := range field {
		runners[i] = RunnerInfo{ID: horse.ID, Name: horse.Name, Class: string(horse.Class())}
	}
	h.Broadcast(Message{
		Type:    MessageTypeRaceStart,
		RaceID:  raceID,
		Payload: RaceStart{Distance: run.Distance(), Track: run.TrackCondition(), Horses: runners, Odds: odds},
	})
}

// Tick publishes one race snapshot
func (h *Hub) Tick(raceID string, tick race.Tick) {
	h.Broadcast(Message{Type: MessageTypeTick, RaceID: raceID, Payload: tick})
}

// RaceFinished publishes the stored race record
func (h *Hub) RaceFinished(record models.RaceRecord) {
	h.Broadcast(Message{Type: MessageTypeRaceFinish, RaceID: record.ID, Payload: record})
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	metrics.UpdateFeedClients(count)
	h.logger.WithFields(logrus.Fields{"client_id": c.ID, "clients": count}).Debug("Client connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	metrics.UpdateFeedClients(count)
	h.logger.WithFields(logrus.Fields{"client_id": c.ID, "clients": count}).Debug("Client disconnected")
}

func (h *Hub) broadcastMessage(msg Message) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.trySend(msg) {
			// slow client
			h.logger.WithField("client_id", c.ID).Warn("Client buffer full, disconnecting")
			h.unregisterClient(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.UpdateFeedClients(0)
}
