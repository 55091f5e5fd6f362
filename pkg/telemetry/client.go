package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/printforge/fleet/pkg/logging"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/retry"
)

// Client maintains a tenant-scoped subscription to the telemetry
// channel. It reconnects with capped exponential backoff and exposes
// decoded snapshots on a latest-wins channel: a slow consumer sees the
// newest state, never a backlog of stale pushes.
type Client struct {
	serverURL string
	tenantID  string
	logger    *logging.Logger
	backoff   retry.Config

	snapshots chan models.Snapshot

	mu        sync.RWMutex
	connected bool
}

// NewClient creates a telemetry client for one tenant
func NewClient(serverURL, tenantID string, logger *logging.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		tenantID:  tenantID,
		logger:    logger,
		backoff:   retry.ReconnectConfig(),
		snapshots: make(chan models.Snapshot, 1),
	}
}

// Snapshots returns the channel of decoded snapshots
func (c *Client) Snapshots() <-chan models.Snapshot {
	return c.snapshots
}

// Connected reports whether the subscription is currently live
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Run connects and consumes frames until the context is cancelled.
// Connection loss flips Connected to false and triggers reconnection;
// the caller renders cached state as disconnected in the meantime.
func (c *Client) Run(ctx context.Context) error {
	failures := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := c.consume(ctx, &failures)
		c.setConnected(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := c.backoff.NextBackoff(failures)
		failures++
		c.logger.Warn("Telemetry connection lost, reconnecting", map[string]interface{}{
			"error":   err.Error(),
			"backoff": wait.String(),
		})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) subscribeURL() string {
	u := strings.TrimSuffix(c.serverURL, "/")
	u = strings.Replace(u, "http://", "ws://", 1)
	u = strings.Replace(u, "https://", "wss://", 1)
	return fmt.Sprintf("%s/api/v1/telemetry/subscribe?tenant_id=%s", u, url.QueryEscape(c.tenantID))
}

func (c *Client) consume(ctx context.Context, failures *int) error {
	conn, _, err := websocket.Dial(ctx, c.subscribeURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial telemetry channel: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	c.setConnected(true)
	*failures = 0
	c.logger.Info("Telemetry channel connected", map[string]interface{}{"tenant_id": c.tenantID})

	for {
		var frame Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return err
			}
			return fmt.Errorf("failed to read telemetry frame: %w", err)
		}

		snap, err := DecodeSnapshot(&frame)
		if err != nil {
			// A malformed frame is the sender's bug, not a reason to
			// drop a healthy connection.
			c.logger.Warn("Skipping malformed telemetry frame", map[string]interface{}{"error": err.Error()})
			continue
		}

		c.deliver(snap)
	}
}

// deliver replaces any undelivered snapshot with the new one
func (c *Client) deliver(snap models.Snapshot) {
	for {
		select {
		case c.snapshots <- snap:
			return
		default:
			select {
			case <-c.snapshots:
			default:
			}
		}
	}
}
