package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType describes what happened to an entity
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Entity names carried by events; consoles subscribe to them as topics
const (
	EntityUser    = "user"
	EntityTeam    = "team"
	EntityProject = "project"
	EntityReview  = "review"
)

// allTopics is the subscription key of clients that want every event
const allTopics = "*"

// Event tells open consoles that a snapshot they hold is stale
type Event struct {
	Type      EventType `json:"type"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entityId,omitempty"`
	ActorID   int64     `json:"actorId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	// Registered clients organized by topic
	clients map[string]map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	listenersMu sync.RWMutex
	listeners   []chan *Event

	// done is closed once Run returns; later registrations are refused
	done     chan struct{}
	stopOnce sync.Once

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		listeners:  []chan *Event{},
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.stopOnce.Do(func() { close(h.done) })
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Register hands client to the running hub. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client from the hub; it is a no-op once the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range client.topics {
		if _, ok := h.clients[topic]; !ok {
			h.clients[topic] = make(map[*Client]bool)
		}
		h.clients[topic][client] = true
	}

	h.logger.Info().
		Strs("topics", client.topics).
		Int64("userID", client.userID).
		Str("clientID", client.id).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	removed := false
	for _, topic := range client.topics {
		if set, ok := h.clients[topic]; ok {
			if _, ok := set[client]; ok {
				delete(set, client)
				removed = true
			}
			if len(set) == 0 {
				delete(h.clients, topic)
			}
		}
	}
	if removed {
		close(client.send)
		h.logger.Info().
			Int64("userID", client.userID).
			Str("clientID", client.id).
			Msg("Client unregistered")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[*Client]bool)
	for _, set := range h.clients {
		for c := range set {
			seen[c] = true
		}
	}
	for c := range seen {
		h.removeLocked(c)
	}
}

// recipients collects the clients subscribed to the event's entity or to everything
func (h *Hub) recipients(entity string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]bool)
	out := make([]*Client, 0)
	for _, topic := range []string{entity, allTopics} {
		for c := range h.clients[topic] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func (h *Hub) broadcastEvent(event *Event) {
	h.notifyListeners(event)

	clients := h.recipients(event.Entity)
	if len(clients) == 0 {
		h.logger.Debug().Str("entity", event.Entity).Msg("No clients subscribed for event")
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("entity", event.Entity).Msg("Failed to marshal event for broadcast")
		return
	}

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			// slow consumer; drop it rather than block every other console
			h.unregisterClient(client)
		}
	}

	h.logger.Debug().
		Str("entity", event.Entity).
		Int("clientCount", len(clients)).
		Msg("Event broadcasted")
}

func (h *Hub) notifyListeners(event *Event) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		select {
		case listener <- event:
		default:
			h.logger.Warn().Msg("Skipped slow event listener")
		}
	}
}

// Publish queues an event without blocking the caller; events are dropped when the queue is full
func (h *Hub) Publish(eventType EventType, entity string, entityID, actorID int64) {
	event := &Event{
		Type:      eventType,
		Entity:    entity,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("entity", entity).Msg("Event queue full, dropping event")
	}
}

// ClientsCount returns the number of connected clients subscribed to topic
func (h *Hub) ClientsCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// AddListener registers a channel that receives every event
func (h *Hub) AddListener(listener chan *Event) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// RemoveListener removes a listener from the hub
func (h *Hub) RemoveListener(listener chan *Event) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}
