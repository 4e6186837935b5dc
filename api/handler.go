// Package api exposes keyword research and SEO analysis over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoforge/analyzer"
	"github.com/seo-optimizer/seoforge/keywords"
	"github.com/seo-optimizer/seoforge/logging"
	"github.com/seo-optimizer/seoforge/middleware"
	"github.com/seo-optimizer/seoforge/stats"
)

// KeywordResearcher is implemented by keywords.Expander
type KeywordResearcher interface {
	ResearchKeywords(ctx context.Context, req keywords.Request) (*keywords.Result, error)
}

// SEOAnalyzer is implemented by analyzer.Analyzer
type SEOAnalyzer interface {
	AnalyzeSEO(ctx context.Context, req analyzer.Request) (*analyzer.Report, error)
}

// Initializer is implemented by services that build their tables before serving
type Initializer interface {
	Initialize() error
}

// InitializeAll initializes services in order and stops at the first failure
func InitializeAll(services ...Initializer) error {
	for _, s := range services {
		if err := s.Initialize(); err != nil {
			return fmt.Errorf("initialize services: %w", err)
		}
	}
	return nil
}

// Handler serves the API routes
type Handler struct {
	researcher   KeywordResearcher
	analyzer     SEOAnalyzer
	requestStats *stats.RequestStats
	storage      *stats.Storage
	log          logging.Logger
}

// NewHandler creates a Handler. storage may be nil.
func NewHandler(researcher KeywordResearcher, seo SEOAnalyzer, requestStats *stats.RequestStats, storage *stats.Storage, log logging.Logger) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	if requestStats == nil {
		requestStats = stats.NewRequestStats(false)
	}
	return &Handler{
		researcher:   researcher,
		analyzer:     seo,
		requestStats: requestStats,
		storage:      storage,
		log:          log,
	}
}

// AnalysisPaths are the routes whose latency is tracked in request statistics
var AnalysisPaths = []string{"/api/analyze", "/api/seo/analyze"}

// Register mounts every route under /api
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.POST("/keywords/research", h.researchKeywords)
		api.POST("/seo/analyze", h.analyzeSEO)
		api.POST("/analyze", h.analyzeURL)
		api.GET("/statistics", h.statistics)
	}
}

type keywordResearchRequest struct {
	SeedKeywords     []string `json:"seed_keywords" binding:"required,min=1"`
	Market           string   `json:"market"`
	Language         string   `json:"language"`
	Industry         string   `json:"industry"`
	CompetitionLevel string   `json:"competition_level" binding:"omitempty,oneof=low medium high"`
}

type seoAnalysisRequest struct {
	URL             string   `json:"url" binding:"omitempty,url"`
	Content         string   `json:"content"`
	Keywords        []string `json:"keywords"`
	Competitors     []string `json:"competitors"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *Handler) researchKeywords(c *gin.Context) {
	var request keywordResearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "seed_keywords must be a non-empty list and competition_level one of low, medium, high")
		return
	}

	result, err := h.researcher.ResearchKeywords(c.Request.Context(), keywords.Request{
		SeedKeywords:     request.SeedKeywords,
		Market:           request.Market,
		Language:         request.Language,
		Industry:         request.Industry,
		CompetitionLevel: keywords.Competition(request.CompetitionLevel),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	success(c, result)
}

func (h *Handler) analyzeSEO(c *gin.Context) {
	var request seoAnalysisRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(request.URL) == "" && strings.TrimSpace(request.Content) == "" {
		badRequest(c, "Either url or content is required")
		return
	}
	c.Set(middleware.AnalysisTargetKey, request.URL)

	report, err := h.analyzer.AnalyzeSEO(c.Request.Context(), analyzer.Request{
		URL:             request.URL,
		Content:         request.Content,
		Keywords:        request.Keywords,
		Competitors:     request.Competitors,
		Title:           request.Title,
		MetaDescription: request.MetaDescription,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	success(c, report)
}

// analyzeURL is the URL-only analysis endpoint of the first API version
func (h *Handler) analyzeURL(c *gin.Context) {
	var request struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid URL provided")
		return
	}
	c.Set(middleware.AnalysisTargetKey, request.URL)

	report, err := h.analyzer.AnalyzeSEO(c.Request.Context(), analyzer.Request{URL: request.URL})
	if err != nil {
		h.fail(c, err)
		return
	}

	success(c, report)
}

type monthUsage struct {
	Month string `json:"month"`
	stats.MonthlyStats
}

func (h *Handler) statistics(c *gin.Context) {
	history := []monthUsage{}
	for _, month := range h.storage.GetAllMonths() {
		if usage, ok := h.storage.GetMonthlyStats(month); ok {
			history = append(history, monthUsage{Month: month, MonthlyStats: usage})
		}
	}

	success(c, gin.H{
		"requests": h.requestStats.Snapshot(),
		"usage":    h.storage.GetCurrentStats(),
		"history":  history,
	})
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// fail maps err to a status code and writes the error envelope
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, keywords.ErrNoSeedKeywords), errors.Is(err, keywords.ErrInvalidCompetition):
		status = http.StatusBadRequest
	case errors.Is(err, keywords.ErrServiceNotInitialized), errors.Is(err, analyzer.ErrServiceNotInitialized):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		h.log.Error("Request failed",
			logging.String("path", c.FullPath()),
			logging.String("request_id", c.GetString(middleware.RequestIDKey)),
			logging.Err(err),
		)
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
