package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codexa/internal/common"

	"go.uber.org/zap"
)

// resultFields is the field list requested from the batch-status endpoint.
const resultFields = "token,status_id,stdout,stderr,compile_output,message,time,memory"

// BatchCase is one (source, input, expected output) tuple sent for execution.
type BatchCase struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// TestResult is the per-case outcome returned by the judging service. It is
// consumed by Aggregate and never persisted. Numeric time arrives as a decimal
// string on the wire; nulls leave the zero value in place.
type TestResult struct {
	Token         string `json:"token"`
	StatusID      Status `json:"status_id"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Message       string `json:"message"`
	Time          string `json:"time"`
	MemoryKB      int    `json:"memory"`
}

// Client talks to a Judge0-style batch execution service. All endpoints and
// credentials are injected at construction so tests can point it at a fake.
type Client struct {
	baseURL      string
	apiKey       string
	apiHost      string
	pollInterval time.Duration
	http         *http.Client
	logger       *zap.Logger
}

func NewClient(baseURL, apiKey, apiHost string, pollInterval time.Duration, logger *zap.Logger) *Client {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		apiHost:      apiHost,
		pollInterval: pollInterval,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type batchStatusResponse struct {
	Submissions []TestResult `json:"submissions"`
}

// SubmitBatch enqueues all cases for execution in one call and returns one
// opaque token per case, in input order.
func (c *Client) SubmitBatch(ctx context.Context, cases []BatchCase) ([]string, error) {
	if len(cases) == 0 {
		return nil, common.Errorf("empty submission batch: %w", common.ErrBadRequest)
	}

	body, err := json.Marshal(map[string][]BatchCase{"submissions": cases})
	if err != nil {
		return nil, common.Errorf("marshal batch: %w", err)
	}

	endpoint := c.baseURL + "/submissions/batch?base64_encoded=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, common.Errorf("build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.Errorf("submit batch: %v: %w", err, common.ErrJudgeUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, common.Errorf("submit batch: judge returned status %d: %w", resp.StatusCode, common.ErrJudgeUnavailable)
	}

	var created []tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, common.Errorf("decode batch response: %v: %w", err, common.ErrJudgeUnavailable)
	}
	if len(created) != len(cases) {
		return nil, common.Errorf("judge returned %d tokens for %d cases: %w", len(created), len(cases), common.ErrJudgeUnavailable)
	}

	tokens := make([]string, len(created))
	for i, t := range created {
		tokens[i] = t.Token
	}
	c.logger.Debug("batch submitted", zap.Int("cases", len(cases)))
	return tokens, nil
}

// FetchResults polls the batch-status endpoint until every token is terminal
// and returns the results in token order. The wait between polls is a timer
// select, so cancelling ctx (the caller owns the overall deadline) aborts the
// loop promptly.
func (c *Client) FetchResults(ctx context.Context, tokens []string) ([]TestResult, error) {
	if len(tokens) == 0 {
		return nil, common.Errorf("no tokens to fetch: %w", common.ErrBadRequest)
	}

	endpoint := c.baseURL + "/submissions/batch?tokens=" +
		url.QueryEscape(strings.Join(tokens, ",")) +
		"&fields=" + resultFields + "&base64_encoded=false"

	for {
		results, done, err := c.pollOnce(ctx, endpoint, len(tokens))
		if err != nil {
			return nil, err
		}
		if done {
			return results, nil
		}

		select {
		case <-ctx.Done():
			return nil, common.Errorf("judge polling aborted: %v: %w", ctx.Err(), common.ErrJudgeUnavailable)
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, endpoint string, want int) ([]TestResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, common.Errorf("build status request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, common.Errorf("poll batch status: %v: %w", err, common.ErrJudgeUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, common.Errorf("poll batch status: judge returned status %d: %w", resp.StatusCode, common.ErrJudgeUnavailable)
	}

	var batch batchStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, false, common.Errorf("decode status response: %v: %w", err, common.ErrJudgeUnavailable)
	}
	if len(batch.Submissions) != want {
		return nil, false, common.Errorf("judge returned %d results for %d tokens: %w", len(batch.Submissions), want, common.ErrJudgeUnavailable)
	}

	for _, r := range batch.Submissions {
		if !r.StatusID.Terminal() {
			return nil, false, nil
		}
	}
	return batch.Submissions, true, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}
}
