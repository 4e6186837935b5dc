package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/seo-optimizer/seoforge/config"
)

// OpenAIClient calls the chat completions endpoint
type OpenAIClient struct {
	base
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI client from config
func NewOpenAIClient(cfg config.AIConfig, opts Options) *OpenAIClient {
	return &OpenAIClient{
		base:       newBase(ProviderOpenAI, cfg.RateLimitRPM, opts),
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		model:      cfg.OpenAIModel,
		maxTokens:  cfg.MaxTokens,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message
func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	return o.call(ctx, func(ctx context.Context) (string, error) {
		return o.chat(ctx, prompt)
	})
}

func (o *OpenAIClient) chat(ctx context.Context, prompt string) (string, error) {
	jsonBody, err := json.Marshal(chatRequest{
		Model:     o.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no response from model")
	}
	return parsed.Choices[0].Message.Content, nil
}
