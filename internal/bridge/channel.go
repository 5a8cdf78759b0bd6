package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/regionedit/internal/region"
)

// Channel delivers editor payloads on a background goroutine. Push never
// blocks: while a node's previous payload is still waiting only the newest
// one is kept. Sender and fallback are independent and their failures are
// only logged.
type Channel struct {
	target   Target
	sender   Sender
	fallback Fallback
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]region.Payload
	order   []string
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewChannel starts the delivery worker. Either sender or fallback may be
// nil.
func NewChannel(target Target, sender Sender, fallback Fallback, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Channel{
		target:   target,
		sender:   sender,
		fallback: fallback,
		logger:   logger.With("prefix", target.Prefix),
		timeout:  5 * time.Second,
		now:      time.Now,
		pending:  make(map[string]region.Payload),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Push queues payload for nodeID, replacing any undelivered one.
func (c *Channel) Push(nodeID string, payload region.Payload) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.pending[nodeID]; !ok {
		c.order = append(c.order, nodeID)
	}
	c.pending[nodeID] = payload
	select {
	case c.wake <- struct{}{}:
	default:
	}
	c.mu.Unlock()
}

// Close stops accepting pushes, delivers what is queued and waits for the
// worker to exit.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	close(c.wake)
	c.mu.Unlock()
	<-c.done
}

func (c *Channel) run() {
	defer close(c.done)
	for range c.wake {
		c.drain()
	}
	c.drain()
}

func (c *Channel) drain() {
	for {
		nodeID, payload, ok := c.next()
		if !ok {
			return
		}
		c.deliver(nodeID, payload)
	}
}

func (c *Channel) next() (string, region.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return "", region.Payload{}, false
	}
	nodeID := c.order[0]
	c.order = c.order[1:]
	payload := c.pending[nodeID]
	delete(c.pending, nodeID)
	return nodeID, payload, true
}

func (c *Channel) deliver(nodeID string, payload region.Payload) {
	config, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal payload", "node", nodeID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if c.sender != nil {
		status, err := c.sender.Send(ctx, c.target.Prefix, Request{
			Action: c.target.Action,
			NodeID: nodeID,
			Config: config,
		})
		switch {
		case err != nil:
			c.logger.Warn("push to consumer failed", "node", nodeID, "error", err)
		case status >= 300:
			c.logger.Warn("consumer rejected push", "node", nodeID, "status", status)
		default:
			c.logger.Debug("pushed config", "node", nodeID, "status", status)
		}
	}

	if c.fallback != nil {
		rec := NewRecord(nodeID, config, c.now())
		if err := c.fallback.Put(ctx, StoreKey(c.target.Prefix, nodeID), rec); err != nil {
			c.logger.Warn("fallback write failed", "node", nodeID, "error", err)
		}
	}
}
