// Package analyzer scores a page for on-page SEO and suggests fixes.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/seo-optimizer/seoforge/logging"
	"github.com/seo-optimizer/seoforge/metrics"
	"github.com/seo-optimizer/seoforge/stats"
)

// ErrServiceNotInitialized is returned when AnalyzeSEO runs before Initialize
var ErrServiceNotInitialized = errors.New("SEO analysis service not initialized")

// Analyzer performs SEO analysis. It keeps no per-request state and is safe
// for concurrent use.
type Analyzer struct {
	fetcher     Fetcher
	log         logging.Logger
	metrics     *metrics.Metrics
	stats       *stats.Storage
	initialized atomic.Bool
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger
func WithLogger(log logging.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

// WithMetrics records analyses and fetches on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithStats records monthly usage on s
func WithStats(s *stats.Storage) Option {
	return func(a *Analyzer) { a.stats = s }
}

// New creates an Analyzer that retrieves pages through fetcher
func New(fetcher Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize marks the analyzer ready
func (a *Analyzer) Initialize() error {
	a.initialized.Store(true)
	return nil
}

// AnalyzeSEO scores req. A failed page fetch degrades the technical score
// instead of failing the report.
func (a *Analyzer) AnalyzeSEO(ctx context.Context, req Request) (*Report, error) {
	if !a.initialized.Load() {
		return nil, ErrServiceNotInitialized
	}

	keywords := nonBlank(req.Keywords)

	text, markup := "", req.Content
	if req.Content != "" {
		parsed, err := ParsePage(req.Content)
		if err != nil {
			return nil, fmt.Errorf("SEO analysis failed: %w", err)
		}
		text = parsed.Text
	}
	title, metaDescription := req.Title, req.MetaDescription

	var page *Page
	var fetchErr error
	if req.URL != "" {
		page, fetchErr = a.fetch(ctx, req.URL)
		if fetchErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("SEO analysis failed: %w", ctxErr)
			}
			a.log.Warn("Page fetch failed, continuing without it",
				logging.String("url", req.URL),
				logging.Err(fetchErr),
			)
		} else {
			if req.Content == "" {
				text, markup = page.Text, page.HTML
			}
			if title == "" {
				title = page.Title
			}
			if metaDescription == "" {
				metaDescription = page.MetaDescription
			}
		}
	}

	doc := newDocument(text, markup, title, metaDescription)

	content := a.isolate("Content", func() SubScore { return analyzeContent(doc, keywords) })
	technical := a.isolate("Technical", func() SubScore { return analyzeTechnical(req.URL, page, fetchErr) })
	keywordScore := a.isolate("Keyword", func() SubScore { return analyzeKeywords(doc, keywords) })
	structure := a.isolate("Structure", func() SubScore { return analyzeStructure(doc) })
	meta := a.isolate("Meta", func() SubScore { return analyzeMeta(doc.title, doc.metaDescription) })

	report := &Report{
		OverallScore: overallScore(content, technical, keywordScore, structure, meta),
		Scores: Scores{
			Content:   content.Score,
			Technical: technical.Score,
			Keywords:  keywordScore.Score,
			Structure: structure.Score,
			Meta:      meta.Score,
		},
		Recommendations: buildRecommendations(content, technical, keywordScore, structure, meta),
		KeywordAnalysis: analyzeKeywordDetails(doc, keywords),
	}

	if len(req.Competitors) > 0 {
		report.CompetitorAnalysis = a.analyzeCompetitors(ctx, req.Competitors, keywords)
	}

	a.metrics.ObserveSEOAnalysis()
	a.stats.RecordSEOAnalysis()
	return report, nil
}

// fetch retrieves url and records the outcome
func (a *Analyzer) fetch(ctx context.Context, url string) (*Page, error) {
	if a.fetcher == nil {
		return nil, &FetchError{URL: url, Err: errors.New("no fetcher configured")}
	}
	page, err := a.fetcher.Fetch(ctx, url)
	a.metrics.ObservePageFetch(err == nil)
	if err != nil {
		a.stats.RecordFetchFailure()
		return nil, err
	}
	return page, nil
}

// isolate runs one sub-analyzer, turning a panic into a zero score
func (a *Analyzer) isolate(name string, fn func() SubScore) (result SubScore) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Sub-analyzer panicked",
				logging.String("analyzer", name),
				logging.Any("panic", r),
			)
			result = SubScore{Score: 0, Issues: []string{name + " analysis failed"}}
		}
	}()
	return fn()
}

func overallScore(scores ...SubScore) int {
	var sum float64
	for _, s := range scores {
		sum += s.Score
	}
	return int(math.Round(sum / float64(len(scores))))
}

func nonBlank(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			out = append(out, k)
		}
	}
	return out
}
