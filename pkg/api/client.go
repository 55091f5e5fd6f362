package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/printforge/fleet/pkg/models"
	"github.com/printforge/fleet/pkg/retry"
	"github.com/printforge/fleet/pkg/worklist"
)

// ErrShortage is returned by CompleteTask when completion is blocked by
// missing components; the accompanying CompletionResult has the detail.
var ErrShortage = errors.New("completion blocked by component shortage")

// Client talks to the fleet API server. Used by fleetctl and by the
// printer bridge when pushing telemetry.
type Client struct {
	serverURL  string
	tenantID   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a fleet API client for one tenant
func NewClient(serverURL, tenantID, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		tenantID:  tenantID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRaw performs a request and returns the status and body. Callers
// that need to interpret non-2xx bodies (the shortage flow) use this
// directly; everything else goes through do.
func (c *Client) doRaw(method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.serverURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", c.tenantID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) do(method, path string, body, out interface{}) (int, error) {
	var status int
	var data []byte
	var err error

	// GETs are idempotent; transient failures get a few retries. The
	// captured err carries the final outcome either way.
	if method == "GET" {
		_ = retry.Do(context.Background(), retry.DefaultConfig(), func() error {
			status, data, err = c.doRaw(method, path, body)
			if err != nil && retry.IsRetryable(err) {
				return err
			}
			return nil
		})
	} else {
		status, data, err = c.doRaw(method, path, body)
	}
	if err != nil {
		return status, err
	}
	if status >= 400 {
		return status, fmt.Errorf("request failed with status %d: %s", status, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return status, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return status, nil
}

// ListPrinters returns the merged fleet view
func (c *Client) ListPrinters() ([]PrinterView, error) {
	var views []PrinterView
	_, err := c.do("GET", "/api/v1/printers", nil, &views)
	return views, err
}

// CreatePrinter registers a printer
func (c *Client) CreatePrinter(req *CreatePrinterRequest) (*models.Printer, error) {
	var printer models.Printer
	_, err := c.do("POST", "/api/v1/printers", req, &printer)
	return &printer, err
}

// UpdatePrinter patches printer settings
func (c *Client) UpdatePrinter(id string, upd models.PrinterUpdate) (*models.Printer, error) {
	var printer models.Printer
	_, err := c.do("PATCH", "/api/v1/printers/"+url.PathEscape(id), upd, &printer)
	return &printer, err
}

// ClearPrinter toggles the build-plate-cleared flag
func (c *Client) ClearPrinter(id string, cleared bool) error {
	_, err := c.do("POST", "/api/v1/printers/"+url.PathEscape(id)+"/clear", ClearRequest{Cleared: cleared}, nil)
	return err
}

// ReorderPrinters sets the fleet display order
func (c *Client) ReorderPrinters(orderedIDs []string) error {
	_, err := c.do("POST", "/api/v1/printers/reorder", ReorderRequest{PrinterIDs: orderedIDs}, nil)
	return err
}

// ListJobs returns the merged job view, external entries included
func (c *Client) ListJobs() ([]map[string]interface{}, error) {
	var jobs []map[string]interface{}
	_, err := c.do("GET", "/api/v1/jobs", nil, &jobs)
	return jobs, err
}

// CreateJob submits a print job
func (c *Client) CreateJob(req *models.JobRequest) (*models.PrintJob, error) {
	var job models.PrintJob
	_, err := c.do("POST", "/api/v1/jobs", req, &job)
	return &job, err
}

// CancelJob cancels a job
func (c *Client) CancelJob(id string) (*models.PrintJob, error) {
	var job models.PrintJob
	_, err := c.do("POST", "/api/v1/jobs/"+url.PathEscape(id)+"/cancel", nil, &job)
	return &job, err
}

// ListTasks returns the tenant's worklist
func (c *Client) ListTasks() ([]*models.WorklistTask, error) {
	var tasks []*models.WorklistTask
	_, err := c.do("GET", "/api/v1/tasks", nil, &tasks)
	return tasks, err
}

// CreateTask adds a worklist task
func (c *Client) CreateTask(req *models.TaskRequest) (*models.WorklistTask, error) {
	var task models.WorklistTask
	_, err := c.do("POST", "/api/v1/tasks", req, &task)
	return &task, err
}

// StartTask moves a task to in_progress
func (c *Client) StartTask(id string) (*models.WorklistTask, error) {
	var task models.WorklistTask
	_, err := c.do("POST", "/api/v1/tasks/"+url.PathEscape(id)+"/start", nil, &task)
	return &task, err
}

// CancelTask cancels a task
func (c *Client) CancelTask(id string) (*models.WorklistTask, error) {
	var task models.WorklistTask
	_, err := c.do("POST", "/api/v1/tasks/"+url.PathEscape(id)+"/cancel", nil, &task)
	return &task, err
}

// CompleteTask attempts to complete a task. When the server blocks
// completion on a shortage the result is returned alongside
// ErrShortage so the caller can show the deficit and decide on force.
func (c *Client) CompleteTask(id string, force bool) (*worklist.CompletionResult, error) {
	path := "/api/v1/tasks/" + url.PathEscape(id) + "/complete"
	if force {
		path += "?force=true"
	}

	status, data, err := c.doRaw("POST", path, nil)
	if err != nil {
		return nil, err
	}

	var result worklist.CompletionResult
	switch {
	case status == http.StatusConflict:
		if err := json.Unmarshal(data, &result); err == nil && result.Blocked {
			return &result, ErrShortage
		}
		return nil, fmt.Errorf("task %s is already completed or cancelled", id)
	case status >= 400:
		return nil, fmt.Errorf("request failed with status %d: %s", status, string(data))
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// CheckAvailability runs the inventory check for an assembly
func (c *Client) CheckAvailability(assemblyID string) (*models.ShortageReport, error) {
	var report models.ShortageReport
	_, err := c.do("GET", "/api/v1/assemblies/"+url.PathEscape(assemblyID)+"/availability", nil, &report)
	return &report, err
}

// SetStock sets the absolute stock level of a component
func (c *Client) SetStock(component string, quantity int) error {
	_, err := c.do("PUT", "/api/v1/inventory/"+url.PathEscape(component), SetStockRequest{Quantity: quantity}, nil)
	return err
}

// PushTelemetry publishes a fleet status frame on behalf of a bridge
func (c *Client) PushTelemetry(frame interface{}) error {
	_, err := c.do("POST", "/api/v1/telemetry/ingest", frame, nil)
	return err
}

// Health checks server liveness
func (c *Client) Health() error {
	_, err := c.do("GET", "/health", nil, nil)
	return err
}
