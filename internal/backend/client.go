package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cnc_dashboard/internal/logger"
	"cnc_dashboard/internal/metrics"
	"cnc_dashboard/internal/models"

	"github.com/sony/gobreaker"
)

// Endpoint names used in logs and metrics.
const (
	epDashboardData = "dashboard_data"
	epJobData       = "job_data"
	epAddJob        = "add_job"
	epEditJob       = "edit_job"
	epFinishJob     = "finish_job"
	epNavigateJob   = "navigate_job"
	epHistoryData   = "history_data"
	epClearHistory  = "clear_history"
	epExportExcel   = "export_excel"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 512
	contentTypeJSON = "application/json"
)

// Export kinds accepted by ExportExcel.
const (
	ExportJobs    = "jobs"
	ExportHistory = "history"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Breaker    BreakerSettings
	HTTPClient *http.Client
	Log        *logger.Logger
	Metrics    *metrics.Metrics
}

// Client talks to the job-management backend over its JSON endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewClient builds a client. BaseURL must be absolute.
func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", opts.BaseURL)
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	bs := opts.Breaker
	if bs.Name == "" {
		bs.Name = DefaultBreakerSettings().Name
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		cb:      newBreaker(bs, log, opts.Metrics),
		log:     log,
		metrics: opts.Metrics,
	}, nil
}

// DashboardData fetches every machine's queue in one call.
func (c *Client) DashboardData(ctx context.Context) (models.DashboardData, error) {
	body, err := c.do(ctx, epDashboardData, http.MethodGet, "/dashboard_data", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := errorEnvelope(epDashboardData, body); err != nil {
		return nil, err
	}
	var data models.DashboardData
	if err := decode(epDashboardData, body, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = models.DashboardData{}
	}
	return data, nil
}

// JobData fetches one job's full record.
func (c *Client) JobData(ctx context.Context, id int) (models.Job, error) {
	body, err := c.do(ctx, epJobData, http.MethodGet, "/job_data/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return models.Job{}, err
	}
	if err := errorEnvelope(epJobData, body); err != nil {
		return models.Job{}, err
	}
	var job models.Job
	if err := decode(epJobData, body, &job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// AddJob creates a job. A logical rejection comes back as Success=false,
// not as an error.
func (c *Client) AddJob(ctx context.Context, p models.JobPayload) (models.ActionResult, error) {
	return c.action(ctx, epAddJob, http.MethodPost, "/add_job", p)
}

// EditJob replaces every editable field of job id.
func (c *Client) EditJob(ctx context.Context, id int, p models.JobPayload) (models.ActionResult, error) {
	return c.action(ctx, epEditJob, http.MethodPost, "/edit_job/"+strconv.Itoa(id), p)
}

// FinishJob marks job id finished. The request has no body.
func (c *Client) FinishJob(ctx context.Context, id int) (models.ActionResult, error) {
	return c.action(ctx, epFinishJob, http.MethodPost, "/finish_job/"+strconv.Itoa(id), nil)
}

// NavigateJob asks which job occupies the adjacent carousel slot.
// currentJobID <= 0 omits the query parameter. A nil job means the queue is empty.
func (c *Client) NavigateJob(ctx context.Context, machine string, dir models.Direction, currentJobID int) (*models.Job, error) {
	q := url.Values{}
	if currentJobID > 0 {
		q.Set("current_job_id", strconv.Itoa(currentJobID))
	}
	path := "/navigate_job/" + url.PathEscape(machine) + "/" + url.PathEscape(string(dir))
	body, err := c.do(ctx, epNavigateJob, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	if err := errorEnvelope(epNavigateJob, body); err != nil {
		return nil, err
	}
	var res models.NavigateResult
	if err := decode(epNavigateJob, body, &res); err != nil {
		return nil, err
	}
	return res.Job, nil
}

// HistoryData lists finished jobs.
func (c *Client) HistoryData(ctx context.Context) ([]models.HistoryEntry, error) {
	body, err := c.do(ctx, epHistoryData, http.MethodGet, "/history_data", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := errorEnvelope(epHistoryData, body); err != nil {
		return nil, err
	}
	var out []models.HistoryEntry
	if err := decode(epHistoryData, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearHistory deletes all history rows.
func (c *Client) ClearHistory(ctx context.Context) (models.ActionResult, error) {
	return c.action(ctx, epClearHistory, http.MethodDelete, "/clear_history", nil)
}

// Export is a spreadsheet streamed from the backend. Callers close Body.
type Export struct {
	Body          io.ReadCloser
	ContentType   string
	Disposition   string
	ContentLength int64
}

// ExportExcel streams the .xls export for kind (ExportJobs or ExportHistory).
func (c *Client) ExportExcel(ctx context.Context, kind string) (*Export, error) {
	if kind != ExportJobs && kind != ExportHistory {
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
	start := time.Now()
	res, err := c.cb.Execute(func() (interface{}, error) {
		req, err := c.newRequest(ctx, http.MethodGet, "/export_excel/"+kind, nil, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTransport, epExportExcel, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			defer resp.Body.Close()
			return nil, statusError(epExportExcel, resp)
		}
		// The backend reports failures as JSON even on this endpoint.
		if strings.HasPrefix(resp.Header.Get("Content-Type"), contentTypeJSON) {
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: read body: %v", ErrTransport, epExportExcel, err)
			}
			if err := errorEnvelope(epExportExcel, b); err != nil {
				return nil, err
			}
			return nil, &BackendError{Endpoint: epExportExcel, Message: "unexpected JSON response"}
		}
		return resp, nil
	})
	c.observe(epExportExcel, start, err)
	if err != nil {
		return nil, mapBreakerErr(err)
	}
	resp := res.(*http.Response)
	return &Export{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		Disposition:   resp.Header.Get("Content-Disposition"),
		ContentLength: resp.ContentLength,
	}, nil
}

func (c *Client) action(ctx context.Context, endpoint, method, path string, payload any) (models.ActionResult, error) {
	body, err := c.do(ctx, endpoint, method, path, nil, payload)
	if err != nil {
		return models.ActionResult{}, err
	}
	var res models.ActionResult
	if err := decode(endpoint, body, &res); err != nil {
		return models.ActionResult{}, err
	}
	if !res.Success && res.Message == "" {
		// e.g. {"error": "..."} from an unexpected exception path
		if err := errorEnvelope(endpoint, body); err != nil {
			return models.ActionResult{}, err
		}
	}
	return res, nil
}

// do performs one round trip through the breaker and returns the raw body.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, payload any) ([]byte, error) {
	start := time.Now()
	res, err := c.cb.Execute(func() (interface{}, error) {
		req, err := c.newRequest(ctx, method, path, query, payload)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, statusError(endpoint, resp)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: read body: %v", ErrTransport, endpoint, err)
		}
		return b, nil
	})
	c.observe(endpoint, start, err)
	if err != nil {
		c.log.Debugw("backend_call_failed", "endpoint", endpoint, "err", err)
		return nil, mapBreakerErr(err)
	}
	return res.([]byte), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)
	return req, nil
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordBackendCall(endpoint, outcome, time.Since(start))
}

func statusError(endpoint string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// errorEnvelope detects the backend's {"error": "..."} failure body.
func errorEnvelope(endpoint string, body []byte) error {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	raw, ok := env["error"]
	if !ok {
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		msg = string(raw)
	}
	return &BackendError{Endpoint: endpoint, Message: msg}
}

func decode(endpoint string, body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrTransport, endpoint, err)
	}
	return nil
}
