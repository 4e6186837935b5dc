package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/seo-optimizer/seoforge/config"
	"github.com/seo-optimizer/seoforge/metrics"
)

func testOptions() Options {
	return Options{Limiter: rate.NewLimiter(rate.Inf, 1)}
}

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		GeminiModel:      "gemini-test",
		OpenAIModel:      "gpt-test",
		AnthropicModel:   "claude-test",
		GeminiBaseURL:    baseURL,
		OpenAIBaseURL:    baseURL,
		AnthropicBaseURL: baseURL,
		Timeout:          5 * time.Second,
		RateLimitRPM:     60,
		MaxTokens:        100,
	}
}

func TestSelectPriority(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AIConfig
		want string
	}{
		{"all keys prefers gemini", config.AIConfig{GoogleAPIKey: "g", OpenAIAPIKey: "o", AnthropicAPIKey: "a"}, ProviderGemini},
		{"openai before claude", config.AIConfig{OpenAIAPIKey: "o", AnthropicAPIKey: "a"}, ProviderOpenAI},
		{"claude only", config.AIConfig{AnthropicAPIKey: "a"}, ProviderClaude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Select(tt.cfg, testOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}

	_, err := Select(config.AIConfig{}, testOptions())
	assert.ErrorIs(t, err, ErrNoModelAvailable)
}

func TestUpstreamModelErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := error(&UpstreamModelError{Provider: ProviderGemini, Err: inner})

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "gemini API error: boom", err.Error())

	var upstream *UpstreamModelError
	assert.ErrorAs(t, err, &upstream)
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 100, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"glass pipe\nbong cleaner"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	cfg := testAIConfig(srv.URL)
	cfg.GoogleAPIKey = "secret"
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)

	client := NewGeminiClient(cfg, Options{Limiter: rate.NewLimiter(rate.Inf, 1), Metrics: m})
	text, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "glass pipe\nbong cleaner", text)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelRequestsTotal.WithLabelValues(ProviderGemini, "success")))
}

func TestGeminiFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"safety", http.StatusOK, `{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`, "safety"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no content generated"},
		{"api error", http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`, "API key not valid"},
		{"non json", http.StatusBadGateway, `upstream down`, "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cfg := testAIConfig(srv.URL)
			cfg.GoogleAPIKey = "k"
			_, err := NewGeminiClient(cfg, testOptions()).Generate(context.Background(), "p")

			var upstream *UpstreamModelError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, ProviderGemini, upstream.Provider)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGeminiTransportErrorOmitsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	cfg := testAIConfig(baseURL)
	cfg.GoogleAPIKey = "SECRET-KEY-123"
	_, err := NewGeminiClient(cfg, testOptions()).Generate(context.Background(), "p")

	var upstream *UpstreamModelError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, err.Error(), "sending request")
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"rolling papers"}}]}`))
	}))
	defer srv.Close()

	cfg := testAIConfig(srv.URL)
	cfg.OpenAIAPIKey = "sk-test"
	text, err := NewOpenAIClient(cfg, testOptions()).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "rolling papers", text)
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	cfg := testAIConfig(srv.URL)
	cfg.OpenAIAPIKey = "sk-test"
	_, err := NewOpenAIClient(cfg, testOptions()).Generate(context.Background(), "p")

	var upstream *UpstreamModelError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, ProviderOpenAI, upstream.Provider)
	assert.Contains(t, err.Error(), "429")
}

func TestClaudeGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "grinder\nashtray"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	cfg := testAIConfig(srv.URL)
	cfg.AnthropicAPIKey = "ak-test"
	text, err := NewClaudeClient(cfg, testOptions()).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "grinder\nashtray", text)
}

func TestClaudeErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	cfg := testAIConfig(srv.URL)
	cfg.AnthropicAPIKey = "bad"
	_, err := NewClaudeClient(cfg, testOptions()).Generate(context.Background(), "p")

	var upstream *UpstreamModelError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, ProviderClaude, upstream.Provider)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())

	client := NewOpenAIClient(testAIConfig("http://127.0.0.1:0"), Options{Limiter: limiter})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "p")
	var upstream *UpstreamModelError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, err.Error(), "rate limit")
}
