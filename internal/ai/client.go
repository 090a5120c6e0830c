// Package ai talks to the hosted chat-completion service that powers
// RFQ structuring and bid ranking. Both adapters share one client and
// one parse/recovery path; every failure comes back as a typed error,
// nothing is allowed to escape the package boundary unwrapped.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"bid2/internal/config"
	"bid2/internal/models"
)

// retryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var retryBaseDelay = time.Second

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	httpClient *http.Client
}

func NewClient(cfg *config.GroqConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete issues one chat completion and returns the raw model text.
// Transport failures and non-200 statuses map to ErrUpstreamUnavailable,
// an empty choice list to ErrUnparseableResponse.
func (c *Client) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   1024,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ai.Client.complete: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ai.Client.complete: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.doWithRetry(ctx, req, data)
	if err != nil {
		return "", fmt.Errorf("ai.Client.complete: %w: %w", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ai.Client.complete: %w: status %d: %s", models.ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("ai.Client.complete: %w: %w", models.ErrUnparseableResponse, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("ai.Client.complete: %w: empty choices", models.ErrUnparseableResponse)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// doWithRetry retries on HTTP 429 with exponential backoff. The request
// body is rebuilt per attempt since it is consumed on each send.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		attemptReq.Body = io.NopCloser(bytes.NewReader(body))

		resp, err := c.httpClient.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * retryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
