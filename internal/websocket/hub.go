package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
)

// Event is one change notification on a user's todo feed.
type Event struct {
	Type string       `json:"type"`
	Todo *domain.Todo `json:"todo"`
}

// Hub fans todo change events out to each owner's connected clients. Delivery
// is best-effort: a client that cannot keep up is dropped rather than letting
// its backlog block a mutation.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, clients := range h.clients {
				for client := range clients {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				if h.clients[client.userID] == nil {
					h.clients[client.userID] = make(map[*Client]bool)
				}
				h.clients[client.userID][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if clients, ok := h.clients[client.userID]; ok {
					if _, ok := clients[client]; ok {
						delete(clients, client)
						client.Close()
						if len(clients) == 0 {
							delete(h.clients, client.userID)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop gracefully shuts down the hub and waits for Run() to exit.
func (h *Hub) Stop() {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	close(h.stop)
	<-h.done
}

// PublishTodoEvent delivers an event to every client of the owning user.
// Events never cross user boundaries.
func (h *Hub) PublishTodoEvent(userID uuid.UUID, eventType string, todo *domain.Todo) {
	data, err := json.Marshal(Event{Type: eventType, Todo: todo})
	if err != nil {
		log.Printf("ERROR [websocket.Hub] failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			// Slow client; the unregister path will clean it up.
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}
