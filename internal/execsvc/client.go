// Package execsvc talks to the external code-execution collaborator that
// grades code answers. The engine itself never retries; this client owns the
// bounded retry policy for transport failures.
package execsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/rs/zerolog"
)

const (
	// maxAttempts bounds transport retries before the question is scored
	// as failed (see engine.Scorer failure policy).
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Client implements engine.CodeExecutor over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client from configuration.
func New(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.ExecServiceURL,
		http:    &http.Client{Timeout: cfg.ExecTimeout},
		log:     log.With().Str("component", "execsvc_client").Logger(),
	}
}

type executeRequest struct {
	Statement string        `json:"statement"`
	Source    string        `json:"source"`
	Cases     []executeCase `json:"cases"`
}

type executeCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

type executeResponse struct {
	Results []bool `json:"results"`
}

// Execute runs source against the question's test cases and returns
// per-case pass/fail in case order. Failed calls are retried up to
// maxAttempts with a short backoff; on exhaustion the call fails with
// engine.ErrExecutionUnavailable and the scorer marks the question failed.
func (c *Client) Execute(ctx context.Context, q model.Question, source string, cases []model.TestCase) ([]bool, error) {
	reqCases := make([]executeCase, len(cases))
	for i, tc := range cases {
		reqCases[i] = executeCase{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput}
	}

	body, err := json.Marshal(executeRequest{
		Statement: q.Statement,
		Source:    source,
		Cases:     reqCases,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal execute request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		results, err := c.post(ctx, body)
		if err == nil {
			return results, nil
		}
		lastErr = err

		c.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("question_id", q.ID.String()).
			Msg("Execution service call failed")

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", engine.ErrExecutionUnavailable, ctx.Err())
			case <-time.After(retryBackoff):
			}
		}
	}

	return nil, fmt.Errorf("%w: %v", engine.ErrExecutionUnavailable, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) ([]bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("execution service returned %d", resp.StatusCode)
	}

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode execute response: %w", err)
	}
	return out.Results, nil
}
