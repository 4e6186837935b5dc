package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/seo-optimizer/seoforge/config"
)

// GeminiClient calls the Google generateContent endpoint
type GeminiClient struct {
	base
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client from config
func NewGeminiClient(cfg config.AIConfig, opts Options) *GeminiClient {
	return &GeminiClient{
		base:       newBase(ProviderGemini, cfg.RateLimitRPM, opts),
		apiKey:     cfg.GoogleAPIKey,
		baseURL:    strings.TrimSuffix(cfg.GeminiBaseURL, "/"),
		model:      cfg.GeminiModel,
		maxTokens:  cfg.MaxTokens,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	CandidateCount  int     `json:"candidateCount"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt and returns the first candidate's text
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return g.call(ctx, func(ctx context.Context) (string, error) {
		return g.generate(ctx, prompt)
	})
}

func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	maxTokens := g.maxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: maxTokens,
			CandidateCount:  1,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	// keep the key out of the URL, *url.Error messages quote it
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if len(parsed.Candidates) == 0 {
		return "", errors.New("no content generated")
	}
	candidate := parsed.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", errors.New("content blocked by safety filters")
	}
	if len(candidate.Content.Parts) == 0 {
		return "", errors.New("invalid response format")
	}
	return candidate.Content.Parts[0].Text, nil
}
