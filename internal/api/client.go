// Package api is the HTTP gateway to the remote task backend. It classifies
// failures but never retries; retry policy belongs to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/task"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetToken installs the bearer token attached to all subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

type loginResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token and installs it on the
// client. The token is also returned so the caller can persist it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body loginResponse
	if err := c.do(req, "login", &body); err != nil {
		return "", err
	}
	if !body.Success || body.AccessToken == "" {
		return "", &Error{Kind: KindAuth, Op: "login"}
	}
	c.token = body.AccessToken
	return body.AccessToken, nil
}

type listResponse struct {
	Tasks []task.Task `json:"tasks"`
}

// ListTasks fetches the full collection for the authenticated user, in
// server order.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: "list", Err: err}
	}
	var body listResponse
	if err := c.do(req, "list", &body); err != nil {
		return nil, err
	}
	return body.Tasks, nil
}

// createResponse accepts both a bare task body and the {"data": {...}}
// wrapper the backend has been observed to send.
type createResponse struct {
	Data *task.Task `json:"data"`
	task.Task
}

// CreateTask posts a draft; the server assigns id, owner and timestamps.
// Title validation is the caller's job.
func (c *Client) CreateTask(ctx context.Context, draft task.Draft) (task.Task, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return task.Task{}, &Error{Kind: KindServer, Op: "create", Err: err}
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/tasks", bytes.NewReader(payload))
	if err != nil {
		return task.Task{}, &Error{Kind: KindNetwork, Op: "create", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var body createResponse
	if err := c.do(req, "create", &body); err != nil {
		return task.Task{}, err
	}
	if body.Data != nil {
		return *body.Data, nil
	}
	return body.Task, nil
}

// ToggleTask flips a task's completion state server-side and returns the
// authoritative updated task. Callers must take the returned value rather
// than infer the flipped state themselves.
func (c *Client) ToggleTask(ctx context.Context, id string) (task.Task, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/tasks/toggle/"+url.PathEscape(id), nil)
	if err != nil {
		return task.Task{}, &Error{Kind: KindNetwork, Op: "toggle", Err: err}
	}
	var body task.Task
	if err := c.do(req, "toggle", &body); err != nil {
		return task.Task{}, err
	}
	return body, nil
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// DeleteTask removes a task. A 2xx response carrying success=false is a
// logical server failure, distinct from a transport error.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: "delete", Err: err}
	}
	var body deleteResponse
	if err := c.do(req, "delete", &body); err != nil {
		return err
	}
	if !body.Success {
		return &Error{Kind: KindServer, Op: "delete", Err: fmt.Errorf("server reported success=false")}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Info("request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return classifyStatus(op, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServer, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
