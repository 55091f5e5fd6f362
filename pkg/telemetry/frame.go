package telemetry

import (
	"fmt"

	"github.com/printforge/fleet/pkg/models"
)

// FrameTypeFleetStatus is the only frame type the telemetry channel
// currently carries.
const FrameTypeFleetStatus = "fleet_status"

// Frame is the wire format of one telemetry push. Printer keys are
// strings on the wire; DecodeSnapshot converts them to typed IDs at the
// boundary so nothing downstream handles stringly-typed keys.
type Frame struct {
	Type     string                               `json:"type"`
	TenantID string                               `json:"tenant_id,omitempty"`
	Printers map[string]*models.LivePrinterStatus `json:"printers"`
}

// DecodeSnapshot converts a wire frame into an immutable snapshot.
// Frames of unknown type and frames with unparseable printer keys are
// rejected whole; a partially decoded snapshot would be indistinguishable
// from printers legitimately missing from the push.
func DecodeSnapshot(frame *Frame) (models.Snapshot, error) {
	if frame.Type != FrameTypeFleetStatus {
		return nil, fmt.Errorf("unexpected frame type %q", frame.Type)
	}

	snap := make(models.Snapshot, len(frame.Printers))
	for key, status := range frame.Printers {
		id, err := models.ParsePrinterID(key)
		if err != nil {
			return nil, fmt.Errorf("bad printer key %q: %w", key, err)
		}
		snap[id] = status
	}
	return snap, nil
}

// EncodeFrame builds the wire representation of a snapshot
func EncodeFrame(tenantID string, snap models.Snapshot) *Frame {
	frame := &Frame{
		Type:     FrameTypeFleetStatus,
		TenantID: tenantID,
		Printers: make(map[string]*models.LivePrinterStatus, len(snap)),
	}
	for id, status := range snap {
		frame.Printers[id.String()] = status
	}
	return frame
}
