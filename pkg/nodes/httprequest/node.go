// Package httprequest provides the HTTP request node.
package httprequest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
	json "github.com/goccy/go-json"
)

const (
	NodeType = "http-request"

	defaultTimeout = 30 * time.Second
)

// HTTPError represents a response with a 4xx or 5xx status.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

type Executor struct {
	client *http.Client
}

func NewExecutor(client *http.Client) *Executor {
	if client == nil {
		client = &http.Client{}
	}

	return &Executor{client: client}
}

type requestConfig struct {
	url      string
	method   string
	headers  map[string]string
	body     string
	timeout  time.Duration
	attempts int
	delay    time.Duration
}

func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	cfg, err := parseConfig(req)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.delay):
			}
		}

		output, err := e.perform(ctx, cfg)
		if err == nil {
			return protocol.Success(output), nil
		}

		lastErr = err

		// Only network errors and 5xx responses are retried.
		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
			break
		}
	}

	return protocol.Failure(fmt.Sprintf("HTTP request failed: %v", lastErr)), nil
}

func parseConfig(req protocol.Request) (requestConfig, error) {
	cfg := requestConfig{
		method:   strings.ToUpper(nodes.String(req.Config, "method", req.Variables)),
		headers:  make(map[string]string),
		attempts: nodes.Int(req.Config, "retries", req.Variables, 0) + 1,
	}

	url, err := nodes.RequiredString(req.Config, "url", req.Variables)
	if err != nil {
		return cfg, err
	}

	cfg.url = url

	if cfg.method == "" {
		cfg.method = http.MethodGet
	}

	for key, value := range nodes.Map(req.Config, "headers", req.Variables) {
		cfg.headers[key] = template.Stringify(value)
	}

	if body := nodes.Value(req.Config, "body", req.Variables); body != nil {
		if s, ok := body.(string); ok {
			cfg.body = s
		} else {
			encoded, err := json.Marshal(body)
			if err != nil {
				return cfg, fmt.Errorf("invalid body: %w", err)
			}

			cfg.body = string(encoded)
		}
	}

	if cfg.timeout, err = nodes.Duration(req.Config, "timeout", req.Variables, defaultTimeout); err != nil {
		return cfg, err
	}

	if cfg.delay, err = nodes.Duration(req.Config, "retryDelay", req.Variables, time.Second); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (e *Executor) perform(ctx context.Context, cfg requestConfig) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var reqBody io.Reader
	if cfg.body != "" {
		reqBody = strings.NewReader(cfg.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, cfg.method, cfg.url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range cfg.headers {
		httpReq.Header.Set(key, value)
	}

	if cfg.body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	output := map[string]any{
		"httpStatus":   resp.StatusCode,
		"httpResponse": string(respBody),
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err == nil {
		output["httpResponse"] = decoded
	}

	return output, nil
}
