// Package api is the HTTP adapter for the remote generation service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/version"
)

// Client posts generation requests to {base_url}/api/generate.
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	newID      func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient builds a client from configuration.
func NewClient(cfg domain.Config, opts ...Option) (*Client, error) {
	endpoint, err := cfg.GetGenerateURL()
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: cfg.GetRequestTimeout()},
		userAgent:  version.UserAgent(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the full generate URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type requestBody struct {
	Prompt       string  `json:"prompt"`
	TaskType     string  `json:"task_type"`
	MetadataType *string `json:"metadata_type"`
}

type responseBody struct {
	Result    json.RawMessage `json:"result"`
	CoinsLeft *int            `json:"coins_left"`
	IsJSON    bool            `json:"is_json"`
	Detail    json.RawMessage `json:"detail"`
	Error     json.RawMessage `json:"error"`
}

// Generate sends one request and classifies the answer.
func (c *Client) Generate(ctx context.Context, accessToken string, req domain.GenerationRequest) (domain.GenerationOutcome, error) {
	payload := requestBody{Prompt: req.Prompt, TaskType: string(req.TaskType)}
	if req.MetadataSubType != nil {
		sub := string(*req.MetadataSubType)
		payload.MetadataType = &sub
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(err, domain.ErrTransport, "")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(err, domain.ErrTransport, "")
	}
	requestID := c.newID()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(err, domain.ErrTransport, "")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, domain.MaxResponseBytes+1))
	if err != nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(err, domain.ErrTransport, "")
	}
	if len(raw) > domain.MaxResponseBytes {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(
			fmt.Errorf("response exceeds %d bytes", domain.MaxResponseBytes), domain.ErrTransport, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.GenerationOutcome{}, rejection(resp.Status, raw)
	}

	var decoded responseBody
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(fmt.Errorf("decode response: %w", err), domain.ErrTransport, "")
	}
	if isAbsent(decoded.Result) {
		if msg := firstMessage(decoded.Detail, decoded.Error); msg != "" {
			return domain.GenerationOutcome{}, domain.NewGenerationError(domain.ErrServiceRejected, msg)
		}
		return domain.GenerationOutcome{}, domain.WrapGenerationError(errors.New("response has no result"), domain.ErrTransport, "")
	}
	if decoded.CoinsLeft == nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(errors.New("response has no coins_left"), domain.ErrTransport, "")
	}

	result, err := domain.DecodePayload(req.TaskType, decoded.Result)
	if err != nil {
		return domain.GenerationOutcome{}, domain.WrapGenerationError(err, domain.ErrTransport, "")
	}

	return domain.GenerationOutcome{
		Payload:   result,
		CoinsLeft: *decoded.CoinsLeft,
		RequestID: requestID,
	}, nil
}

func rejection(status string, raw []byte) error {
	cause := fmt.Errorf("service responded %s", status)
	var decoded responseBody
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.WrapGenerationError(cause, domain.ErrServiceRejected, "")
	}
	return domain.WrapGenerationError(cause, domain.ErrServiceRejected, firstMessage(decoded.Detail, decoded.Error))
}

func firstMessage(fields ...json.RawMessage) string {
	for _, field := range fields {
		if msg := detailMessage(field); msg != "" {
			return msg
		}
	}
	return ""
}

// detailMessage flattens a FastAPI style detail: a string, a validation
// array of {loc, msg} objects, or an object carrying a message.
func detailMessage(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if msg := itemMessage(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return itemMessage(raw)
}

type validationItem struct {
	Loc     []interface{} `json:"loc"`
	Msg     string        `json:"msg"`
	Message string        `json:"message"`
}

func itemMessage(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var item validationItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return ""
	}
	msg := item.Msg
	if msg == "" {
		msg = item.Message
	}
	if msg == "" {
		return ""
	}
	if field := lastLoc(item.Loc); field != "" {
		return field + ": " + msg
	}
	return msg
}

func lastLoc(loc []interface{}) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
