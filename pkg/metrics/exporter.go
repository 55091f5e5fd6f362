package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/store"
	"github.com/printforge/fleet/pkg/telemetry"
)

// Exporter serves Prometheus-compatible metrics for the fleet server:
// printers, jobs and tasks by status across all tenants, telemetry
// channel health, plus host CPU and memory gauges.
type Exporter struct {
	store     store.Store
	hub       *telemetry.Hub
	startTime time.Time
}

// NewExporter creates a metrics exporter
func NewExporter(s store.Store, hub *telemetry.Hub) *Exporter {
	return &Exporter{
		store:     s,
		hub:       hub,
		startTime: time.Now(),
	}
}

// ServeHTTP serves metrics at /metrics
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	printersByStatus := make(map[models.PrinterStatus]int)
	jobsByStatus := make(map[models.JobStatus]int)
	tasksByStatus := make(map[models.TaskStatus]int)
	connected := 0
	totalPrinters := 0

	tenants, err := e.store.ListTenants()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tenants: %v", err), http.StatusInternalServerError)
		return
	}
	for _, tenant := range tenants {
		printers, err := e.store.ListPrinters(tenant.ID)
		if err != nil {
			continue
		}
		totalPrinters += len(printers)
		for _, p := range printers {
			printersByStatus[p.Status]++
			if p.Connected {
				connected++
			}
		}

		jobs, err := e.store.ListJobs(tenant.ID)
		if err != nil {
			continue
		}
		for _, j := range jobs {
			jobsByStatus[j.Status]++
		}

		tasks, err := e.store.ListTasks(tenant.ID)
		if err != nil {
			continue
		}
		for _, task := range tasks {
			tasksByStatus[task.Status]++
		}
	}

	fmt.Fprintf(w, "# HELP fleet_uptime_seconds Server uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE fleet_uptime_seconds gauge\n")
	fmt.Fprintf(w, "fleet_uptime_seconds %.0f\n", time.Since(e.startTime).Seconds())

	fmt.Fprintf(w, "\n# HELP fleet_tenants_total Number of registered tenants\n")
	fmt.Fprintf(w, "# TYPE fleet_tenants_total gauge\n")
	fmt.Fprintf(w, "fleet_tenants_total %d\n", len(tenants))

	fmt.Fprintf(w, "\n# HELP fleet_printers_total Number of registered printers\n")
	fmt.Fprintf(w, "# TYPE fleet_printers_total gauge\n")
	fmt.Fprintf(w, "fleet_printers_total %d\n", totalPrinters)

	fmt.Fprintf(w, "\n# HELP fleet_printers_connected Number of printers with a live connection flag\n")
	fmt.Fprintf(w, "# TYPE fleet_printers_connected gauge\n")
	fmt.Fprintf(w, "fleet_printers_connected %d\n", connected)

	fmt.Fprintf(w, "\n# HELP fleet_printers_by_status Number of printers by status\n")
	fmt.Fprintf(w, "# TYPE fleet_printers_by_status gauge\n")
	for status, count := range printersByStatus {
		fmt.Fprintf(w, "fleet_printers_by_status{status=\"%s\"} %d\n", status, count)
	}

	fmt.Fprintf(w, "\n# HELP fleet_jobs_by_status Number of print jobs by status\n")
	fmt.Fprintf(w, "# TYPE fleet_jobs_by_status gauge\n")
	for status, count := range jobsByStatus {
		fmt.Fprintf(w, "fleet_jobs_by_status{status=\"%s\"} %d\n", status, count)
	}

	fmt.Fprintf(w, "\n# HELP fleet_tasks_by_status Number of worklist tasks by status\n")
	fmt.Fprintf(w, "# TYPE fleet_tasks_by_status gauge\n")
	for status, count := range tasksByStatus {
		fmt.Fprintf(w, "fleet_tasks_by_status{status=\"%s\"} %d\n", status, count)
	}

	fmt.Fprintf(w, "\n# HELP fleet_telemetry_subscribers Connected dashboard subscriptions\n")
	fmt.Fprintf(w, "# TYPE fleet_telemetry_subscribers gauge\n")
	fmt.Fprintf(w, "fleet_telemetry_subscribers %d\n", e.hub.SubscriberCount())

	accepted, rejected := e.hub.FrameCounts()
	fmt.Fprintf(w, "\n# HELP fleet_telemetry_frames_total Accepted telemetry pushes\n")
	fmt.Fprintf(w, "# TYPE fleet_telemetry_frames_total counter\n")
	fmt.Fprintf(w, "fleet_telemetry_frames_total %d\n", accepted)
	fmt.Fprintf(w, "\n# HELP fleet_telemetry_frames_rejected_total Rejected telemetry pushes\n")
	fmt.Fprintf(w, "# TYPE fleet_telemetry_frames_rejected_total counter\n")
	fmt.Fprintf(w, "fleet_telemetry_frames_rejected_total %d\n", rejected)

	// Host gauges
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		fmt.Fprintf(w, "\n# HELP fleet_host_cpu_percent Host CPU utilization\n")
		fmt.Fprintf(w, "# TYPE fleet_host_cpu_percent gauge\n")
		fmt.Fprintf(w, "fleet_host_cpu_percent %.2f\n", cpuPercent[0])
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(w, "\n# HELP fleet_host_memory_used_bytes Host memory in use\n")
		fmt.Fprintf(w, "# TYPE fleet_host_memory_used_bytes gauge\n")
		fmt.Fprintf(w, "fleet_host_memory_used_bytes %d\n", memInfo.Used)
		fmt.Fprintf(w, "\n# HELP fleet_host_memory_percent Host memory utilization\n")
		fmt.Fprintf(w, "# TYPE fleet_host_memory_percent gauge\n")
		fmt.Fprintf(w, "fleet_host_memory_percent %.2f\n", memInfo.UsedPercent)
	}

	// Append anything registered with the Prometheus default registry
	metricFamilies, err := promclient.DefaultGatherer.Gather()
	if err != nil {
		fmt.Fprintf(w, "# Error gathering Prometheus metrics: %v\n", err)
		return
	}
	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			fmt.Fprintf(w, "# Error encoding metric %s: %v\n", mf.GetName(), err)
		}
	}
	fmt.Fprintf(w, "\n")
	w.Write(buf.Bytes())
}
