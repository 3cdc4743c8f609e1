// Package llm handles AI-completion provider communication and tolerant
// parsing of JSON model output. A call is a single request/response; there
// is no implicit retry.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/belivan/MaxantAgency-sub013/internal/config"
	"github.com/belivan/MaxantAgency-sub013/internal/logging"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// Request is one completion request.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	JSONMode     bool
}

// Response is the result of one completion.
type Response struct {
	Content string
	Model   string
	Usage   *schema.TokenUsage
}

// Completer is the AI-completion collaborator consumed by grading and synthesis.
type Completer interface {
	CallAI(ctx context.Context, req Request) (*Response, error)
}

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName string) (Provider, error) = defaultNewProvider

// Client implements Completer. Providers are created lazily per backend and
// cached; Client is safe for concurrent use.
type Client struct {
	providerOverride string
	maxTokens        int
	timeout          time.Duration
	logger           *slog.Logger

	mu        sync.Mutex
	providers map[string]Provider
}

// NewClient builds a Client from LLM settings.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	return &Client{
		providerOverride: cfg.Provider,
		maxTokens:        cfg.MaxTokens,
		timeout:          cfg.Timeout,
		logger:           logging.OrDiscard(logger).With("component", "llm"),
		providers:        make(map[string]Provider),
	}
}

// CallAI sends one request to the provider serving req.Model.
func (c *Client) CallAI(ctx context.Context, req Request) (*Response, error) {
	name := c.providerOverride
	if name == "" {
		name = ProviderForModel(req.Model)
	}
	p, err := c.provider(name)
	if err != nil {
		return nil, err
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.maxTokens
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm: complete: %w", err)
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	attrs := []any{"provider", name, "model", resp.Model, "duration", time.Since(start)}
	if resp.Usage != nil {
		attrs = append(attrs, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	}
	c.logger.Debug("completion finished", attrs...)
	return resp, nil
}

func (c *Client) provider(name string) (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.providers[name]; ok {
		return p, nil
	}
	p, err := NewProvider(name)
	if err != nil {
		return nil, fmt.Errorf("llm: create provider: %w", err)
	}
	c.providers[name] = p
	return p, nil
}

// ProviderForModel picks a backend from a model name.
func ProviderForModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"),
		strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return "openai"
	case strings.HasPrefix(m, "gemini"):
		return "google"
	default:
		return "anthropic"
	}
}

// ── Provider dispatch ─────────────────────────────────────────────────────────

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider()
	case "openai":
		return newOpenAIProvider()
	case "google":
		return newGoogleProvider()
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", providerName)
	}
}
