package websocket

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type change struct {
	actorID uuid.UUID
	reason  string
}

// Hub fans dashboard change events out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	changes    chan change
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	stopped    bool
	log        *zap.Logger
	mu         sync.RWMutex
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		changes:    make(chan change, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()
			h.log.Debug("websocket client registered", zap.String("user_id", client.userID.String()))
			client.sendMessage(MessageTypeConnected, ConnectedPayload{UserID: client.userID.String()})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case c := <-h.changes:
			h.broadcast(c)
		}
	}
}

func (h *Hub) broadcast(c change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		payload := DashboardChangedPayload{
			Reason: c.reason,
			Self:   c.actorID != uuid.Nil && client.userID == c.actorID,
		}
		if c.actorID != uuid.Nil {
			payload.ActorID = c.actorID.String()
		}
		if !client.sendMessage(MessageTypeDashboardChanged, payload) {
			h.log.Warn("dropping dashboard event for slow client", zap.String("user_id", client.userID.String()))
		}
	}
}

// DashboardChanged queues a change event. It never blocks the caller; events
// are dropped when the queue is full or the hub is stopped.
func (h *Hub) DashboardChanged(actorID uuid.UUID, reason string) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.changes <- change{actorID: actorID, reason: reason}:
	default:
		h.log.Warn("dashboard change queue full", zap.String("reason", reason))
	}
}

// Stop gracefully shuts down the hub and closes all clients.
// It blocks until Run has exited.
// Stop shuts the hub down and waits for Run to return. Safe to call from
// several goroutines.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
