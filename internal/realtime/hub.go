package realtime

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	clientBufferSize  = 16
	heartbeatInterval = 15 * time.Second
)

// Client is one live SSE connection.
type Client struct {
	ID       uuid.UUID
	UserID   int64
	channels map[string]struct{}
	outbound chan *Message
	done     chan struct{}
	once     sync.Once
}

// Hub tracks per-channel subscriptions of local SSE clients.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*Client]struct{}
	logger        *zap.Logger
	heartbeat     time.Duration
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscriptions: make(map[string]map[*Client]struct{}),
		logger:        logger.Named("realtime_hub"),
		heartbeat:     heartbeatInterval,
	}
}

// NewClient creates a client for a user. It receives nothing until it
// subscribes to a channel.
func (h *Hub) NewClient(userID int64) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		channels: make(map[string]struct{}),
		outbound: make(chan *Message, clientBufferSize),
		done:     make(chan struct{}),
	}
}

// Subscribe adds the client to a channel.
func (h *Hub) Subscribe(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client.channels[channel] = struct{}{}

	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]struct{})
		h.subscriptions[channel] = clients
	}
	clients[client] = struct{}{}

	h.logger.Debug("Client subscribed",
		zap.String("clientID", client.ID.String()),
		zap.String("channel", channel))
}

// Unsubscribe removes the client from a channel.
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unsubscribeLocked(client, channel)
}

func (h *Hub) unsubscribeLocked(client *Client, channel string) {
	delete(client.channels, channel)

	if clients, ok := h.subscriptions[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, channel)
		}
	}
}

// Close removes the client from every channel and stops its stream.
func (h *Hub) Close(client *Client) {
	h.mu.Lock()
	for channel := range client.channels {
		h.unsubscribeLocked(client, channel)
	}
	h.mu.Unlock()

	client.once.Do(func() { close(client.done) })
}

// Subscribers returns the number of clients on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscriptions[channel])
}

// Publish implements Publisher by broadcasting locally. A client whose
// buffer is full misses the message.
func (h *Hub) Publish(_ context.Context, msg *Message) error {
	if msg == nil || msg.Channel == "" {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.subscriptions[msg.Channel] {
		select {
		case client.outbound <- msg:
		default:
			h.logger.Warn("Dropping message; client buffer full",
				zap.String("clientID", client.ID.String()),
				zap.String("channel", msg.Channel),
				zap.String("event", msg.Event))
		}
	}

	return nil
}

// Serve streams the client's messages until the request ends or the
// client is closed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, client *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.outbound:
			payload, err := sonic.Marshal(msg)
			if err != nil {
				h.logger.Warn("Failed to marshal message", zap.Error(err))
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", msg.ID, msg.Event, payload)
			flusher.Flush()
		}
	}
}
