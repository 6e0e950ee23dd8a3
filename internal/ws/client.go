package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// EventHandler receives every job update read by a Client.
type EventHandler func(msg JobUpdatedMessage)

type ClientOptions struct {
	RetryDelay        time.Duration
	HeartbeatInterval time.Duration
	Logger            logrus.FieldLogger
}

// Client subscribes to a job event stream and reconnects when the connection drops.
type Client struct {
	url     string
	opts    ClientOptions
	log     logrus.FieldLogger
	handler EventHandler

	mu sync.RWMutex
	id string
}

func NewClient(url string, handler EventHandler, opts ClientOptions) *Client {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{url: url, opts: opts, log: log, handler: handler}
}

// ID returns the subscriber id assigned on the last successful connect.
func (c *Client) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *Client) setID(id string) {
	c.mu.Lock()
	c.id = id
	c.mu.Unlock()
}

// Run blocks until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warnf("connection lost, reconnecting in %s", c.opts.RetryDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.RetryDelay):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	c.log.WithField("url", c.url).Debug("connecting")

	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "goodbye")

	var ack AckMessage
	if err := wsjson.Read(ctx, conn, &ack); err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	if ack.Type != TypeAck {
		return fmt.Errorf("expected ack, got %q", ack.Type)
	}
	c.setID(ack.SubscriberID)
	c.log.WithField("subscriber_id", ack.SubscriberID).Info("subscribed to job updates")

	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.heartbeat(hbCtx, conn)

	return c.messageLoop(ctx, conn)
}

func (c *Client) messageLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var base BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			c.log.WithError(err).Debug("invalid message")
			continue
		}

		switch base.Type {
		case TypeJobUpdated:
			var msg JobUpdatedMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				c.log.WithError(err).Debug("invalid job update")
				continue
			}
			c.handler(msg)

		case TypeHeartbeat:
			// Server acknowledged

		default:
			c.log.WithField("type", base.Type).Debug("unknown message type")
		}
	}
}

func (c *Client) heartbeat(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hb := HeartbeatMessage{Type: TypeHeartbeat, Timestamp: time.Now().UTC()}
			if err := wsjson.Write(ctx, conn, hb); err != nil {
				return
			}
		}
	}
}
