package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// DefaultBaseURL is where the task API listens in development
const DefaultBaseURL = "http://localhost:8000/api"

const maxErrorBody = 64 << 10

// Client talks to the task REST API
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

var _ tasks.Backend = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each request. Zero means no timeout. The client passed
// to WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "api").Logger()
	return c
}

// BackendName selects the REST client in the backend registry
const BackendName = "http"

// Register the REST backend
func init() {
	tasks.Register(BackendName, func(s tasks.Settings) (tasks.Backend, error) {
		return New(s.BaseURL, WithTimeout(s.Timeout), WithLogger(s.Logger)), nil
	})
}

type envelope[T any] struct {
	Data *T `json:"data"`
}

// List returns every task
func (c *Client) List(ctx context.Context) ([]tasks.Task, error) {
	var env envelope[[]tasks.Task]
	if err := c.do(ctx, "list", http.MethodGet, "/tasks", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, &Error{Op: "list", Kind: ErrMalformed, Err: fmt.Errorf("missing data field")}
	}
	list := *env.Data
	seen := make(map[int64]struct{}, len(list))
	for _, t := range list {
		if err := t.Validate(); err != nil {
			return nil, &Error{Op: "list", Kind: ErrMalformed, Err: fmt.Errorf("task %d: %w", t.ID, err)}
		}
		if _, dup := seen[t.ID]; dup {
			return nil, &Error{Op: "list", Kind: ErrMalformed, Err: fmt.Errorf("duplicate task id %d", t.ID)}
		}
		seen[t.ID] = struct{}{}
	}
	if list == nil {
		list = []tasks.Task{}
	}
	return list, nil
}

// Get returns a single task by id
func (c *Client) Get(ctx context.Context, id int64) (tasks.Task, error) {
	var env envelope[tasks.Task]
	if err := c.do(ctx, "get", http.MethodGet, taskPath(id), nil, &env); err != nil {
		return tasks.Task{}, err
	}
	if env.Data == nil {
		return tasks.Task{}, &Error{Op: "get", Kind: ErrMalformed, Err: fmt.Errorf("missing data field")}
	}
	if err := env.Data.Validate(); err != nil {
		return tasks.Task{}, &Error{Op: "get", Kind: ErrMalformed, Err: err}
	}
	return *env.Data, nil
}

// Create submits a new task. The API may or may not echo the created record.
func (c *Client) Create(ctx context.Context, draft tasks.Draft) (tasks.Task, error) {
	var env envelope[tasks.Task]
	if err := c.do(ctx, "create", http.MethodPost, "/tasks/create", draft, &env); err != nil {
		return tasks.Task{}, err
	}
	if env.Data == nil {
		return tasks.Task{}, nil
	}
	return *env.Data, nil
}

// Update replaces every field of a task
func (c *Client) Update(ctx context.Context, id int64, task tasks.Task) error {
	task.ID = id
	return c.do(ctx, "update", http.MethodPut, taskPath(id), task, nil)
}

// Delete removes a task
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// do performs one request and decodes a JSON response into out when out is
// non-nil and the body is not empty
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Str("request_id", reqID).Msg("request failed")
		return &Error{Op: op, Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Str("request_id", reqID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &eb)
		}
		apiErr := &Error{Op: op, Status: resp.StatusCode, Message: eb.text(), Kind: kindForStatus(resp.StatusCode)}
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Str("request_id", reqID).Msg(apiErr.Error())
		return apiErr
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Kind: ErrNetwork, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// create and update have no fixed success shape
		if op == "create" || op == "update" {
			return nil
		}
		return &Error{Op: op, Status: resp.StatusCode, Kind: ErrMalformed, Err: err}
	}
	return nil
}
