package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait    = 10 * time.Second
	pingPeriod   = 30 * time.Second
	maxFrameSize = 64 * 1024
	sendQueue    = 64
)

// Client is one websocket subscriber watching the config of a single node.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool

	Prefix   string
	NodeID   string
	ClientID string
}

func NewClient(hub *Hub, conn *websocket.Conn, prefix, nodeID, clientID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		logger:   hub.logger.With("prefix", prefix, "node", nodeID, "client", clientID),
		send:     make(chan []byte, sendQueue),
		Prefix:   prefix,
		NodeID:   nodeID,
		ClientID: clientID,
	}
}

// ReadPump reads subscriber frames until the connection closes, then leaves
// the room. Frames are stamped with the client's room before dispatch.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()
	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if !expectedClose(err) {
				c.logger.Debug("subscriber read failed", "error", err)
			}
			return
		}
		msg, err := c.decode(data)
		if err != nil {
			c.logger.Warn("dropping malformed frame", "error", err, "bytes", len(data))
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	msg.Prefix = c.Prefix
	msg.NodeID = c.NodeID
	msg.ClientID = c.ClientID
	return &msg, nil
}

func expectedClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}

// WritePump delivers queued config messages and keeps the connection alive
// with pings. It returns when the hub closes the queue.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, frame); err != nil {
				c.logger.Debug("subscriber write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.ping(ctx); err != nil {
				c.logger.Debug("subscriber ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, frame)
}

func (c *Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Ping(ctx)
}

// Send queues msg without blocking. Messages to a closed or full client
// are dropped.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("subscriber queue full, dropping message", "type", msg.Type)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
