// Package llm talks to the external text-generation providers used for
// keyword suggestions. Providers are picked by configured credential in the
// fixed order Gemini, OpenAI, Claude.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/seo-optimizer/seoforge/config"
	"github.com/seo-optimizer/seoforge/metrics"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "gpt4"
	ProviderClaude = "claude"
)

// ErrNoModelAvailable is returned when no provider credential is configured
var ErrNoModelAvailable = errors.New("no AI models available for keyword research")

// Suggester generates free text for a prompt
type Suggester interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// UpstreamModelError wraps any failure returned by a provider
type UpstreamModelError struct {
	Provider string
	Err      error
}

func (e *UpstreamModelError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *UpstreamModelError) Unwrap() error {
	return e.Err
}

// Options carries the shared plumbing for every provider
type Options struct {
	Metrics *metrics.Metrics
	// Limiter overrides the limiter built from config.AIConfig.RateLimitRPM
	Limiter *rate.Limiter
}

// base holds what every provider client does around the actual request
type base struct {
	name    string
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

func newBase(name string, rpm int, opts Options) base {
	limiter := opts.Limiter
	if limiter == nil {
		if rpm <= 0 {
			rpm = 60
		}
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	return base{name: name, limiter: limiter, metrics: opts.Metrics}
}

func (b *base) Name() string {
	return b.name
}

// call waits on the limiter, runs fn and wraps any failure as an UpstreamModelError
func (b *base) call(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		b.metrics.ObserveModelRequest(b.name, false)
		return "", &UpstreamModelError{Provider: b.name, Err: fmt.Errorf("rate limit: %w", err)}
	}

	text, err := fn(ctx)
	if err != nil {
		b.metrics.ObserveModelRequest(b.name, false)
		return "", &UpstreamModelError{Provider: b.name, Err: err}
	}
	b.metrics.ObserveModelRequest(b.name, true)
	return text, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Select returns the highest-priority provider with a configured credential
func Select(cfg config.AIConfig, opts Options) (Suggester, error) {
	switch {
	case cfg.GoogleAPIKey != "":
		return NewGeminiClient(cfg, opts), nil
	case cfg.OpenAIAPIKey != "":
		return NewOpenAIClient(cfg, opts), nil
	case cfg.AnthropicAPIKey != "":
		return NewClaudeClient(cfg, opts), nil
	default:
		return nil, ErrNoModelAvailable
	}
}
