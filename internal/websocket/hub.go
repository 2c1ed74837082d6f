package websocket

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/pkg/logger"
)

// Topics a client can subscribe to. An empty subscription receives all.
const (
	TopicBusinesses = "businesses"
	TopicReviews    = "reviews"
)

// Client is one subscriber connection.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	Send   chan []byte
	Topics map[string]bool
}

// Wants reports whether the client subscribed to topic.
func (c *Client) Wants(topic string) bool {
	return len(c.Topics) == 0 || c.Topics[topic]
}

// Hub fans entity events out to subscribed websocket clients.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage is an encoded event and the topic it belongs to.
type BroadcastMessage struct {
	Topic   string
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
	}
}

// Run processes registrations and broadcasts until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"topics":        topicList(client.Topics),
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !client.Wants(message.Topic) {
					continue
				}
				select {
				case client.Send <- message.Message:
				default:
					// slow consumer
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", nil)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues an entity event for broadcast. Events are dropped when the
// broadcast queue is full so request handling never blocks.
func (h *Hub) Publish(event service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": string(event.Type),
			"id":   event.ID,
		})
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{Topic: TopicOf(event.Type), Message: data}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": string(event.Type),
			"id":   event.ID,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TopicOf maps an event type to its topic.
func TopicOf(t service.EventType) string {
	if strings.HasPrefix(string(t), "review.") {
		return TopicReviews
	}
	return TopicBusinesses
}

// ParseTopics reads a comma separated topic list, ignoring unknown names.
func ParseTopics(raw string) map[string]bool {
	topics := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == TopicBusinesses || name == TopicReviews {
			topics[name] = true
		}
	}
	return topics
}

func topicList(topics map[string]bool) []string {
	list := make([]string, 0, len(topics))
	for name := range topics {
		list = append(list, name)
	}
	return list
}
