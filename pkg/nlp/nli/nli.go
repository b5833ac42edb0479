package nli

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

// Client calls an external zero-shot classification service over HTTP.
// The service scores candidate labels against a hypothesis built from the
// head and tail surface forms.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewClientParams contains configuration for creating an NLI client.
type NewClientParams struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient creates a new zero-shot classification client.
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

type classifyRequest struct {
	Sequence           string   `json:"sequence"`
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template"`
	MultiLabel         bool     `json:"multi_label"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Label scores the candidate labels for the query and returns the best one.
// Returns nil without error when the query carries no candidates.
func (c *Client) Label(ctx context.Context, query nlp.RelationQuery) (*nlp.RelationPrediction, error) {
	if query.Sentence == "" || len(query.CandidateLabels) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(classifyRequest{
		Sequence:           query.Sentence,
		CandidateLabels:    query.CandidateLabels,
		HypothesisTemplate: fmt.Sprintf("%s {} %s.", query.Head, query.Tail),
		MultiLabel:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classify request: %w", err)
	}

	return util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) (*nlp.RelationPrediction, error) {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			c.baseURL+"/classify",
			bytes.NewReader(body),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create classify request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to call NLI service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("NLI service returned status %d: %s", resp.StatusCode, string(payload))
		}

		var out classifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode classify response: %w", err)
		}
		if len(out.Labels) == 0 || len(out.Scores) == 0 {
			return nil, nil
		}
		return &nlp.RelationPrediction{
			Label: out.Labels[0],
			Score: out.Scores[0],
		}, nil
	})
}
