// Package api talks to the todo backend over JSON/HTTP.
//
// The backend exposes three routes under a base URL:
//
//	GET    /todos        list tasks
//	POST   /todos        create a task from {"text": "..."}
//	DELETE /todos/{id}   delete a task
//
// Any non-2xx response is an *HTTPError. Transport failures are *NetworkError.
// Bodies that are not the expected JSON are *MalformedResponseError.
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
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/retrotodo/internal/todo"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:5001"

	todosPath   = "/todos"
	contentJSON = "application/json"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// Client is a backend client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets an overall per-request timeout. Zero leaves the transport
// default in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches all tasks. A success response whose body is not a JSON array
// yields a *MalformedResponseError; the caller decides whether to degrade.
// Duplicate ids are dropped and returned so the caller can report them.
func (c *Client) List(ctx context.Context) (todo.List, []string, error) {
	body, err := c.FetchRaw(ctx)
	if err != nil {
		return nil, nil, err
	}
	items, err := todo.DecodeArray(body)
	if err != nil {
		return nil, nil, &MalformedResponseError{Op: "list", Err: err}
	}
	tasks, dropped := todo.NormalizeAll(items)
	return tasks, dropped, nil
}

// FetchRaw performs GET /todos and returns the body of a success response.
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "list", http.MethodGet, todosPath, nil)
}

// Create posts a new task. The submitted text is used when the backend does not
// echo one back.
func (c *Client) Create(ctx context.Context, text string) (todo.Task, error) {
	payload, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return todo.Task{}, fmt.Errorf("encode create request: %w", err)
	}

	body, err := c.do(ctx, "create", http.MethodPost, todosPath, payload)
	if err != nil {
		return todo.Task{}, err
	}
	v, err := todo.DecodeValue(body)
	if err != nil {
		return todo.Task{}, &MalformedResponseError{Op: "create", Err: err}
	}
	return todo.NormalizeValue(v, text), nil
}

// Delete removes the task with the given id. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, todosPath+"/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	target := c.endpoint(path)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", contentJSON)
	if payload != nil {
		req.Header.Set("Content-Type", contentJSON)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "err", err)
		return nil, &NetworkError{Op: op, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPError{
			Method:     method,
			Path:       path,
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return body, nil
}

// endpoint joins path onto the base URL. path must already be escaped.
func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
