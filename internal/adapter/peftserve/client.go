// Package peftserve provides an HTTP client for the PEFT model
// serving/training sidecar. The sidecar owns the base model weights, LoRA
// training and generation; this client treats all of that as opaque
// capabilities behind three endpoints.
package peftserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/toneforge/toneforge/internal/config"
	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/port/generation"
	"github.com/toneforge/toneforge/internal/resilience"
)

// Client talks to the PEFT sidecar API.
type Client struct {
	baseURL     string
	apiKey      string
	baseModel   string
	httpClient  *http.Client
	trainClient *http.Client
	breaker     *resilience.Breaker
}

// NewClient creates a sidecar client. Training calls use a separate, much
// longer timeout than generation and load calls.
func NewClient(cfg config.ModelServe) *Client {
	return &Client{
		baseURL:     cfg.URL,
		apiKey:      cfg.APIKey,
		baseModel:   cfg.BaseModel,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		trainClient: &http.Client{Timeout: cfg.TrainTimeout},
	}
}

// SetBreaker attaches a circuit breaker to generation and load calls.
// Training calls bypass the breaker: they are rare, long, and already
// single-flight per tenant.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Health checks whether the sidecar is reachable.
func (c *Client) Health(ctx context.Context) (bool, error) {
	_, err := c.doRequest(ctx, c.httpClient, http.MethodGet, "/health", nil)
	return err == nil, err
}

// --- generation.Loader ---

type loadRequest struct {
	AdapterPath string `json:"adapter_path"`
	BaseModel   string `json:"base_model"`
}

type loadResponse struct {
	Adapter string `json:"adapter"`
}

// Load asks the sidecar to load the base model plus the LoRA adapter at
// location and returns a generator bound to the resulting server-side handle.
func (c *Client) Load(ctx context.Context, location string) (generation.Generator, error) {
	body, err := json.Marshal(loadRequest{AdapterPath: location, BaseModel: c.baseModel})
	if err != nil {
		return nil, fmt.Errorf("marshal load request: %w", err)
	}

	resp, err := c.execute(ctx, http.MethodPost, "/v1/adapters/load", body)
	if err != nil {
		return nil, fmt.Errorf("load adapter: %w", err)
	}

	var result loadResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal load response: %w", err)
	}
	if result.Adapter == "" {
		return nil, fmt.Errorf("load adapter: sidecar returned no adapter handle")
	}

	return &boundGenerator{client: c, adapter: result.Adapter}, nil
}

// boundGenerator generates against one loaded adapter.
type boundGenerator struct {
	client  *Client
	adapter string
}

type completionRequest struct {
	Prompt            string   `json:"prompt"`
	Adapter           string   `json:"adapter"`
	MaxNewTokens      int      `json:"max_new_tokens"`
	MinLength         int      `json:"min_length,omitempty"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	TopK              int      `json:"top_k"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	NoRepeatNgramSize int      `json:"no_repeat_ngram_size,omitempty"`
	Stop              []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Generate implements generation.Generator.
func (g *boundGenerator) Generate(ctx context.Context, prompt string, s generation.Sampling) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:            prompt,
		Adapter:           g.adapter,
		MaxNewTokens:      s.MaxNewTokens,
		MinLength:         s.MinLength,
		Temperature:       s.Temperature,
		TopP:              s.TopP,
		TopK:              s.TopK,
		RepetitionPenalty: s.RepetitionPenalty,
		NoRepeatNgramSize: s.NoRepeatNgramSize,
		Stop:              s.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	resp, err := g.client.execute(ctx, http.MethodPost, "/v1/completion", body)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	var result completionResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("unmarshal completion response: %w", err)
	}
	return result.Text, nil
}

// Close releases the server-side adapter handle, best-effort.
func (g *boundGenerator) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := json.Marshal(loadResponse{Adapter: g.adapter})
	if err != nil {
		return
	}
	_, _ = g.client.doRequest(ctx, g.client.httpClient, http.MethodPost, "/v1/adapters/unload", body)
}

// --- trainer.Trainer ---

type trainExample struct {
	Draft string `json:"draft"`
	Final string `json:"final"`
}

type trainRequest struct {
	UserID    string         `json:"user_id"`
	AccountID string         `json:"account_id"`
	BaseModel string         `json:"base_model"`
	Examples  []trainExample `json:"examples"`
}

type trainResponse struct {
	AdapterPath string `json:"adapter_path"`
}

// Train runs one LoRA training job over the tenant's pairs and returns the
// artifact location reported by the sidecar. The call blocks for the whole
// run; callers schedule it on the background job runner.
func (c *Client) Train(ctx context.Context, t tenant.Key, pairs []example.Pair) (string, error) {
	examples := make([]trainExample, 0, len(pairs))
	for _, p := range pairs {
		examples = append(examples, trainExample{Draft: p.Draft, Final: p.Final})
	}

	body, err := json.Marshal(trainRequest{
		UserID:    t.UserID,
		AccountID: t.AccountID,
		BaseModel: c.baseModel,
		Examples:  examples,
	})
	if err != nil {
		return "", fmt.Errorf("marshal train request: %w", err)
	}

	resp, err := c.doRequest(ctx, c.trainClient, http.MethodPost, "/v1/train", body)
	if err != nil {
		return "", fmt.Errorf("train: %w", err)
	}

	var result trainResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", fmt.Errorf("unmarshal train response: %w", err)
	}
	if result.AdapterPath == "" {
		return "", fmt.Errorf("train: sidecar returned no adapter path")
	}
	return result.AdapterPath, nil
}

// execute routes a call through the breaker when one is attached.
func (c *Client) execute(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.breaker == nil {
		return c.doRequest(ctx, c.httpClient, method, path, body)
	}

	var result []byte
	err := c.breaker.Execute(func() error {
		var callErr error
		result, callErr = c.doRequest(ctx, c.httpClient, method, path, body)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, client *http.Client, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("peftserve API error %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}
