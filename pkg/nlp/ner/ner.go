package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/volgapavel/parsAZ/internal/util"
	"github.com/volgapavel/parsAZ/pkg/nlp"
)

// Client calls an external named entity recognition service over HTTP.
// The service accepts raw text and returns entity mentions with character
// offsets into the submitted text.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewClientParams contains configuration for creating a NER client.
type NewClientParams struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient creates a new NER service client.
func NewClient(params NewClientParams) *Client {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Client{
		baseURL:    params.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Entities []nlp.Mention `json:"entities"`
}

// Extract sends text to the NER service and returns the mentions it found.
func (c *Client) Extract(ctx context.Context, text string) ([]nlp.Mention, error) {
	if text == "" {
		return nil, nil
	}

	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extract request: %w", err)
	}

	return util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) ([]nlp.Mention, error) {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			c.baseURL+"/extract",
			bytes.NewReader(body),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create extract request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call NER service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("NER service returned status %d: %s", resp.StatusCode, string(payload))
		}

		var out extractResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode extract response: %w", err)
		}
		return out.Entities, nil
	})
}
