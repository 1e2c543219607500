// Package llm wraps an OpenAI-compatible chat completion endpoint: model
// auto-discovery, a retrying health check, and a single blocking completion
// call. It does not parse extraction JSON itself — that belongs to the
// extraction package, which deals with truncated and malformed model output.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/siherrmann/kgraph/apperr"
)

// defaultModelRetryInterval is how often EnsureModel re-lists the server's
// models once one has been auto-discovered, per §4.1's "re-checks at most
// every retry_interval seconds (default 30)".
const defaultModelRetryInterval = 30 * time.Second

// Config configures a Client against an OpenAI-compatible server, which may
// be a local inference server rather than the hosted OpenAI API.
type Config struct {
	BaseURL string
	APIKey  string
	// Model pins the chat model name. If empty, EnsureModel discovers one
	// from the server's model list instead, rechecking every
	// ModelRetryInterval in case the server's advertised model changes.
	Model              string
	Timeout            time.Duration
	ModelRetryInterval time.Duration
}

// Client is a thin, blocking wrapper around the chat completions endpoint.
//
// The underlying inference server's model identifier may change between
// deployments, so consumers must not hard-code it: pinnedModel is the
// operator's explicit override (fixed for the Client's lifetime), while
// cachedModel is discovered lazily and reset on any completion failure —
// the self-healing behavior §4.1 describes.
type Client struct {
	sdk         oai.Client
	pinnedModel string
	logger      *slog.Logger

	retryInterval time.Duration

	mu          sync.Mutex
	cachedModel string
	cachedAt    time.Time
}

// New constructs a Client. A zero Timeout disables the per-request deadline
// beyond whatever ctx the caller supplies. A zero ModelRetryInterval falls
// back to defaultModelRetryInterval.
func New(cfg Config, logger *slog.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	retryInterval := cfg.ModelRetryInterval
	if retryInterval <= 0 {
		retryInterval = defaultModelRetryInterval
	}

	return &Client{
		sdk:           oai.NewClient(opts...),
		pinnedModel:   cfg.Model,
		logger:        logger,
		retryInterval: retryInterval,
	}
}

// EnsureModel returns the pinned model name if one was configured.
// Otherwise it returns the cached auto-discovered model, re-listing the
// server's models once retryInterval has elapsed since the last check (or
// immediately, if a prior completion failure reset the cache).
func (c *Client) EnsureModel(ctx context.Context) (string, error) {
	if c.pinnedModel != "" {
		return c.pinnedModel, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachedModel != "" && time.Since(c.cachedAt) < c.retryInterval {
		return c.cachedModel, nil
	}

	page, err := c.sdk.Models.List(ctx)
	if err != nil {
		return "", apperr.ServiceUnavailable("list models", err)
	}
	if len(page.Data) == 0 {
		return "", apperr.ServiceUnavailable("list models", fmt.Errorf("no models advertised by inference server"))
	}

	c.cachedModel = page.Data[0].ID
	c.cachedAt = time.Now()
	c.logger.Info("auto-discovered model", slog.String("model", c.cachedModel))
	return c.cachedModel, nil
}

// resetModel clears the auto-discovered cache so the next EnsureModel call
// re-lists the server's models instead of trusting a model identifier that
// just failed. A pinned model is never reset — it's the operator's fixed
// override, not a discovery result.
func (c *Client) resetModel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cachedModel = ""
	c.cachedAt = time.Time{}
}

// Complete sends a single user-role prompt (optionally preceded by a system
// prompt) and returns the assistant's raw text content. Callers that expect
// JSON back are responsible for parsing/healing it themselves.
//
// Any transport-level or HTTP-error failure resets the cached model
// identifier before the error is returned, so a server-side model change or
// a transient discovery failure can't strand the client on a stale name.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model, err := c.EnsureModel(ctx)
	if err != nil {
		return "", err
	}

	messages := []oai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, oai.SystemMessage(systemPrompt))
	}
	messages = append(messages, oai.UserMessage(userPrompt))

	params := oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(model),
		Messages: messages,
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		c.resetModel()
		if ctx.Err() != nil {
			return "", apperr.UpstreamTimeout("chat completion", err)
		}
		return "", apperr.ServiceUnavailable("chat completion", err)
	}
	if len(completion.Choices) == 0 {
		return "", apperr.ExtractionFailure("chat completion", fmt.Errorf("no choices returned"))
	}

	return completion.Choices[0].Message.Content, nil
}

// HealthCheck confirms the inference server is reachable by listing models,
// retrying with exponential backoff up to 3 attempts capped at 60s total.
func (c *Client) HealthCheck(ctx context.Context) error {
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	bo = backoff.WithContext(bo, ctx)

	operation := func() error {
		_, err := c.sdk.Models.List(ctx)
		return err
	}

	timedOut := make(chan struct{})
	timer := time.AfterFunc(60*time.Second, func() { close(timedOut) })
	defer timer.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- backoff.Retry(operation, bo) }()

	select {
	case err := <-errCh:
		if err != nil {
			return apperr.ServiceUnavailable("health check", err)
		}
		return nil
	case <-timedOut:
		return apperr.UpstreamTimeout("health check", fmt.Errorf("exceeded 60s retry budget"))
	}
}
