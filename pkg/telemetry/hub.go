package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/printforge/fleet/pkg/logging"
	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/tenancy"
)

// subscriber is one dashboard's websocket connection, pinned to the
// tenant it authenticated as.
type subscriber struct {
	conn     *websocket.Conn
	tenantID string
}

// Hub fans telemetry snapshots out to subscribed dashboards. Printer
// bridges push fleet status over HTTP; each push is re-broadcast to
// every subscriber of the same tenant and retained as the latest
// snapshot so new subscribers get state immediately.
type Hub struct {
	logger      *logging.Logger
	mu          sync.RWMutex
	subscribers map[*subscriber]bool
	latest      map[string]models.Snapshot // tenant -> last pushed snapshot

	framesAccepted int64
	framesRejected int64
}

// NewHub creates a telemetry hub
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[*subscriber]bool),
		latest:      make(map[string]models.Snapshot),
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s] = true
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, s)
}

// SubscriberCount returns the number of connected dashboards
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// FrameCounts returns accepted and rejected push totals
func (h *Hub) FrameCounts() (accepted, rejected int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.framesAccepted, h.framesRejected
}

// Latest returns the last snapshot pushed for a tenant, or nil if no
// push has arrived yet.
func (h *Hub) Latest(tenantID string) models.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest[tenantID]
}

// HandleSubscribe upgrades a dashboard connection and streams snapshots
// until the client goes away. Tenant identity comes from the request
// context; the route sits behind the tenancy middleware.
func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenancy.GetTenantID(r.Context())
	if err != nil {
		http.Error(w, "tenant required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept telemetry subscriber", map[string]interface{}{"error": err.Error()})
		return
	}

	sub := &subscriber{conn: conn, tenantID: tenantID}
	h.add(sub)
	h.logger.Info("Telemetry subscriber connected", map[string]interface{}{
		"tenant_id": tenantID,
		"remote":    r.RemoteAddr,
		"total":     h.SubscriberCount(),
	})

	ctx := r.Context()

	// Replay the latest snapshot so the dashboard renders immediately
	// instead of waiting for the next push.
	if snap := h.Latest(tenantID); snap != nil {
		_ = wsjson.Write(ctx, conn, EncodeFrame(tenantID, snap))
	}

	// Drain client messages; the hub is one-directional but reading is
	// how we notice the peer closing.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.remove(sub)
	_ = conn.Close(websocket.StatusNormalClosure, "disconnected")
	h.logger.Info("Telemetry subscriber disconnected", map[string]interface{}{
		"tenant_id": tenantID,
		"remaining": h.SubscriberCount(),
	})
}

// HandleIngest accepts a fleet status push from a printer bridge and
// broadcasts it to the tenant's subscribers.
func (h *Hub) HandleIngest(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenancy.GetTenantID(r.Context())
	if err != nil {
		http.Error(w, "tenant required", http.StatusBadRequest)
		return
	}

	var frame Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		http.Error(w, "invalid frame", http.StatusBadRequest)
		return
	}

	snap, err := DecodeSnapshot(&frame)
	if err != nil {
		h.mu.Lock()
		h.framesRejected++
		h.mu.Unlock()
		h.logger.Warn("Rejected telemetry frame", map[string]interface{}{
			"tenant_id": tenantID,
			"error":     err.Error(),
		})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.Publish(r.Context(), tenantID, snap)
	w.WriteHeader(http.StatusAccepted)
}

// Publish stores a snapshot as the tenant's latest and fans it out to
// that tenant's subscribers. Write failures are left to the subscriber
// read loop to clean up.
func (h *Hub) Publish(ctx context.Context, tenantID string, snap models.Snapshot) {
	h.mu.Lock()
	h.latest[tenantID] = snap
	h.framesAccepted++
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		if s.tenantID == tenantID {
			subs = append(subs, s)
		}
	}
	h.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	frame := EncodeFrame(tenantID, snap)
	for _, s := range subs {
		_ = wsjson.Write(ctx, s.conn, frame)
	}
}
