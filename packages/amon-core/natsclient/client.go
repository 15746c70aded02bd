package natsclient

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Client wraps a NATS connection and its JetStream context.
type Client struct {
	Conn *nats.Conn
	JS   nats.JetStreamContext
	Log  *zap.Logger
}

// NewClient connects to NATS and initialises a JetStream context.
func NewClient(url string, logger *zap.Logger) (*Client, error) {
	nc, err := nats.Connect(url, nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	logger.Info("NATS JetStream connected", zap.String("url", url))
	return &Client{Conn: nc, JS: js, Log: logger}, nil
}

// Close drains and closes the underlying NATS connection. Drain flushes
// pending publish acknowledgments and outstanding deliveries before
// closing, unlike Close which drops in-flight messages immediately.
func (c *Client) Close() {
	if c.Conn != nil {
		if err := c.Conn.Drain(); err != nil {
			c.Conn.Close()
		}
	}
}

// PublishEvent publishes an inbound probe/fake event onto subject,
// keying JetStream's own duplicate tracking on uuid. This is the first
// of two independent dedup layers guarding POST /events idempotency:
// the broker suppresses a redelivered publish within the stream's
// configured duplicate window (see ProvisionStreams) before the
// dispatch consumer ever sees it, and the Postgres ledger it falls back
// on covers uuids older than that window.
func (c *Client) PublishEvent(subject, uuid string, data []byte) (*nats.PubAck, error) {
	return c.JS.Publish(subject, data, nats.MsgId(uuid))
}
