package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/compozy/foodtour/engine/core"
	"github.com/compozy/foodtour/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	opCreateAgent    = "create agent"
	opCreateTask     = "create task"
	opStartExecution = "start execution"
	opGetExecution   = "get execution"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// Client is a thin typed surface over the workflow service REST API.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient validates opts and builds the underlying HTTP client.
func NewClient(opts Options) (*Client, error) {
	baseURL, err := validateBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("API token is required")
	}
	return &Client{
		http:    buildHTTPClient(baseURL, opts),
		baseURL: baseURL,
	}, nil
}

func validateBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("base URL must be absolute, got: %q", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base URL scheme must be http or https, got: %s", parsed.Scheme)
	}
	return raw, nil
}

func buildHTTPClient(baseURL string, opts Options) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(opts.Token).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.AddRetryCondition(retryCondition)
	client.SetPreRequestHook(logRequest)
	return client
}

func logRequest(_ *resty.Client, r *http.Request) error {
	logger.FromContext(r.Context()).Debug("sending API request",
		"method", r.Method,
		"url", r.URL.String(),
		"headers", core.RedactHeaders(r.Header))
	return nil
}

// retryCondition retries transport failures and throttling/server errors.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateAgent provisions an agent and returns its id.
func (c *Client) CreateAgent(ctx context.Context, spec AgentSpec) (AgentID, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return "", &ServiceError{Op: opCreateAgent, Message: "agent name is required"}
	}
	var ref resourceRef
	if err := c.do(ctx, opCreateAgent, c.http.R().SetBody(spec).SetResult(&ref), http.MethodPost, "/agents"); err != nil {
		return "", err
	}
	if ref.ID == "" {
		return "", &ServiceError{Op: opCreateAgent, Message: "response did not include an agent id"}
	}
	logger.FromContext(ctx).Debug("agent created", "agent_id", ref.ID)
	return AgentID(ref.ID), nil
}

// CreateTask registers the task definition under the agent.
func (c *Client) CreateTask(ctx context.Context, agentID AgentID, def TaskDefinition) (TaskID, error) {
	if agentID == "" {
		return "", &ServiceError{Op: opCreateTask, Message: "agent id is required"}
	}
	var ref resourceRef
	req := c.http.R().
		SetPathParam("agent_id", string(agentID)).
		SetBody(def).
		SetResult(&ref)
	if err := c.do(ctx, opCreateTask, req, http.MethodPost, "/agents/{agent_id}/tasks"); err != nil {
		return "", err
	}
	if ref.ID == "" {
		return "", &ServiceError{Op: opCreateTask, Message: "response did not include a task id"}
	}
	logger.FromContext(ctx).Debug("task created", "agent_id", agentID, "task_id", ref.ID)
	return TaskID(ref.ID), nil
}

// StartExecution starts the task with input and returns the execution handle.
func (c *Client) StartExecution(ctx context.Context, taskID TaskID, input any) (ExecutionID, error) {
	if taskID == "" {
		return "", &ServiceError{Op: opStartExecution, Message: "task id is required"}
	}
	var ref resourceRef
	req := c.http.R().
		SetPathParam("task_id", string(taskID)).
		SetBody(executionRequest{Input: input}).
		SetResult(&ref)
	if err := c.do(ctx, opStartExecution, req, http.MethodPost, "/tasks/{task_id}/executions"); err != nil {
		return "", err
	}
	if ref.ID == "" {
		return "", &ServiceError{Op: opStartExecution, Message: "response did not include an execution id"}
	}
	logger.FromContext(ctx).Info("execution triggered", "task_id", taskID, "exec_id", ref.ID)
	return ExecutionID(ref.ID), nil
}

// GetExecution fetches a fresh observation of the execution.
func (c *Client) GetExecution(ctx context.Context, id ExecutionID) (*ExecutionResult, error) {
	if id == "" {
		return nil, &ServiceError{Op: opGetExecution, Message: "execution id is required"}
	}
	var result ExecutionResult
	req := c.http.R().
		SetPathParam("execution_id", string(id)).
		SetResult(&result)
	if err := c.do(ctx, opGetExecution, req, http.MethodGet, "/executions/{execution_id}"); err != nil {
		return nil, err
	}
	if result.ID == "" {
		result.ID = id
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string) error {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return &ServiceError{Op: op, Cause: err}
	}
	if resp.IsError() {
		svcErr := &ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Message:    core.RedactString(errorMessage(resp.Body())),
		}
		logger.FromContext(ctx).Debug("API request failed", "op", op, "status", resp.StatusCode())
		return svcErr
	}
	logger.FromContext(ctx).Debug("API request completed", "method", method, "path", path, "status", resp.StatusCode())
	return nil
}

// errorMessage extracts a human message from the common error body shapes
func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"error.message", "detail", "message", "error"} {
		v := gjson.GetBytes(body, path)
		if v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	if detail := gjson.GetBytes(body, "detail"); detail.Exists() {
		return detail.Raw
	}
	return strings.TrimSpace(string(body))
}
