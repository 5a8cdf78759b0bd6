package collab

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/regionedit/internal/configstore"
)

// Loader returns the stored config for a node, or configstore.ErrNotFound.
type Loader func(ctx context.Context, prefix, nodeID string) (*configstore.Entry, error)

const loadTimeout = 5 * time.Second

type Room struct {
	prefix  string
	nodeID  string
	clients map[string]*Client // clientID -> client
}

func roomKey(prefix, nodeID string) string {
	return prefix + "/" + nodeID
}

// Hub fans stored config changes out to the websocket clients watching a
// node. Rooms are keyed by prefix and node id.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	load       Loader
	logger     *slog.Logger
}

func NewHub(load Loader, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		load:       load,
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client send queue.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	key := roomKey(client.Prefix, client.NodeID)
	h.mu.Lock()
	room, ok := h.rooms[key]
	if !ok {
		room = &Room{prefix: client.Prefix, nodeID: client.NodeID, clients: make(map[string]*Client)}
		h.rooms[key] = room
	}
	room.clients[client.ClientID] = client
	peers := len(room.clients) - 1
	h.mu.Unlock()

	if msg, err := newMessage(TypeWelcome, client.Prefix, client.NodeID, WelcomePayload{ClientID: client.ClientID, Peers: peers}); err == nil {
		msg.ClientID = client.ClientID
		client.Send(msg)
	}
	h.sendStored(client)

	h.logger.Info("client joined", "client", client.ClientID, "prefix", client.Prefix, "node", client.NodeID)
}

func (h *Hub) removeClient(client *Client) {
	key := roomKey(client.Prefix, client.NodeID)
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[key]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}
	delete(room.clients, client.ClientID)
	client.closeSend()
	if len(room.clients) == 0 {
		delete(h.rooms, key)
	}

	h.logger.Info("client left", "client", client.ClientID, "prefix", client.Prefix, "node", client.NodeID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, room := range h.rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		delete(h.rooms, key)
	}
}

// sendStored pushes the current config, if any, to one client.
func (h *Hub) sendStored(client *Client) {
	if h.load == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	entry, err := h.load(ctx, client.Prefix, client.NodeID)
	if err != nil {
		if !errors.Is(err, configstore.ErrNotFound) {
			h.logger.Warn("load config for client", "error", err, "prefix", client.Prefix, "node", client.NodeID)
		}
		return
	}
	if msg, err := newMessage(TypeConfigUpdate, client.Prefix, client.NodeID, entry); err == nil {
		client.Send(msg)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeConfigRequest:
		h.sendStored(sender)
	default:
		h.logger.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		if out, err := newMessage(TypeError, sender.Prefix, sender.NodeID, ErrorPayload{Message: "unknown message type"}); err == nil {
			sender.Send(out)
		}
	}
}

// PublishUpdate sends a stored entry to everyone watching its node.
func (h *Hub) PublishUpdate(prefix string, entry *configstore.Entry) {
	msg, err := newMessage(TypeConfigUpdate, prefix, entry.NodeID, entry)
	if err != nil {
		h.logger.Error("marshal config update", "error", err)
		return
	}
	h.broadcast(func(r *Room) *Message {
		if r.prefix != prefix || r.nodeID != entry.NodeID {
			return nil
		}
		return msg
	})
}

// PublishCleared tells watchers their config went away. An empty nodeID
// addresses every room under prefix.
func (h *Hub) PublishCleared(prefix, nodeID string, removed int) {
	h.broadcast(func(r *Room) *Message {
		if r.prefix != prefix || (nodeID != "" && r.nodeID != nodeID) {
			return nil
		}
		msg, err := newMessage(TypeConfigCleared, r.prefix, r.nodeID, ClearedPayload{Removed: removed})
		if err != nil {
			return nil
		}
		return msg
	})
}

// broadcast sends to each room messageFor returns a message for.
func (h *Hub) broadcast(messageFor func(*Room) *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, room := range h.rooms {
		msg := messageFor(room)
		if msg == nil {
			continue
		}
		for _, c := range room.clients {
			c.Send(msg)
		}
	}
}

// RoomSize reports how many clients watch a node.
func (h *Hub) RoomSize(prefix, nodeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[roomKey(prefix, nodeID)]; ok {
		return len(room.clients)
	}
	return 0
}
