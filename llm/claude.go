package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/seo-optimizer/seoforge/config"
)

// ClaudeClient calls the Anthropic Messages API through the official SDK
type ClaudeClient struct {
	base
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewClaudeClient creates a Claude client from config. SDK retries are off;
// a failed call degrades the keyword research instead.
func NewClaudeClient(cfg config.AIConfig, opts Options) *ClaudeClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.AnthropicBaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.AnthropicBaseURL))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	return &ClaudeClient{
		base:      newBase(ProviderClaude, cfg.RateLimitRPM, opts),
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.AnthropicModel,
		maxTokens: maxTokens,
	}
}

// Generate sends the prompt as a single user message and joins the text blocks
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.call(ctx, func(ctx context.Context) (string, error) {
		msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: int64(c.maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", errors.New("empty response")
		}
		return sb.String(), nil
	})
}
