package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printforge/fleet/pkg/models"
)

func TestDecodeSnapshot(t *testing.T) {
	raw := `{
		"type": "fleet_status",
		"tenant_id": "t1",
		"printers": {
			"3": {
				"connected": true,
				"status": "printing",
				"current_job": "bracket.gcode",
				"progress": 41.5,
				"current_layer": 120,
				"total_layers": 300,
				"nozzle_temp": 210.0
			},
			"7": {
				"connected": true,
				"status": "idle"
			}
		}
	}`

	var frame Frame
	require.NoError(t, json.Unmarshal([]byte(raw), &frame))

	snap, err := DecodeSnapshot(&frame)
	require.NoError(t, err)
	require.Len(t, snap, 2)

	live := snap[models.PrinterID(3)]
	require.NotNil(t, live)
	assert.Equal(t, models.PrinterStatusPrinting, live.Status)
	assert.Equal(t, "bracket.gcode", live.CurrentJob)
	require.NotNil(t, live.Progress)
	assert.Equal(t, 41.5, *live.Progress)
	require.NotNil(t, live.CurrentLayer)
	assert.Equal(t, 120, *live.CurrentLayer)

	// Fields absent from the wire stay nil, not zero
	idle := snap[models.PrinterID(7)]
	require.NotNil(t, idle)
	assert.Nil(t, idle.Progress)
	assert.Nil(t, idle.NozzleTemp)
	assert.Empty(t, idle.CurrentJob)
}

func TestDecodeSnapshotRejectsBadKeys(t *testing.T) {
	frame := &Frame{
		Type: FrameTypeFleetStatus,
		Printers: map[string]*models.LivePrinterStatus{
			"not-a-number": {Connected: true, Status: models.PrinterStatusIdle},
		},
	}

	_, err := DecodeSnapshot(frame)
	assert.Error(t, err)
}

func TestDecodeSnapshotRejectsUnknownType(t *testing.T) {
	frame := &Frame{Type: "heartbeat"}

	_, err := DecodeSnapshot(frame)
	assert.Error(t, err)
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	progress := 12.0
	snap := models.Snapshot{
		models.PrinterID(5): {Connected: true, Status: models.PrinterStatusPrinting, Progress: &progress},
	}

	frame := EncodeFrame("t1", snap)
	assert.Equal(t, FrameTypeFleetStatus, frame.Type)
	assert.Equal(t, "t1", frame.TenantID)
	require.Contains(t, frame.Printers, "5")

	decoded, err := DecodeSnapshot(frame)
	require.NoError(t, err)
	require.Contains(t, decoded, models.PrinterID(5))
	assert.Equal(t, 12.0, *decoded[models.PrinterID(5)].Progress)
}
