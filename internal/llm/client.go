// internal/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/httpclient"
)

var (
	ErrUnavailable = errors.New("LLM_UNAVAILABLE")
	ErrTimeout     = errors.New("LLM_TIMEOUT")
	ErrBadResponse = errors.New("LLM_BAD_RESPONSE")
)

// Client is the narrow interface the workflow steps depend on: prompt in,
// text out, explicit failure. The rule-based extractor is the documented
// fallback when a call fails.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HTTPClient speaks an OpenAI-compatible chat-completions API.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *httpclient.Client
}

func NewHTTPClient(cfg config.LLMConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      httpclient.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

// Configured reports whether a key is present; without one every call fails
// fast with ErrUnavailable so the fallback path engages immediately.
func (c *HTTPClient) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	body, _ := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return "", ErrTimeout
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrBadResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrBadResponse)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// StripFences removes markdown code fences some models wrap JSON output in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
