// Package keywords expands seed keywords into a scored keyword research report.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seo-optimizer/seoforge/llm"
	"github.com/seo-optimizer/seoforge/logging"
	"github.com/seo-optimizer/seoforge/metrics"
	"github.com/seo-optimizer/seoforge/stats"
)

var (
	// ErrServiceNotInitialized is returned when ResearchKeywords runs before Initialize
	ErrServiceNotInitialized = errors.New("keyword research service not initialized")
	// ErrNoSeedKeywords is returned for an empty seed list or a blank seed
	ErrNoSeedKeywords = errors.New("at least one non-empty seed keyword is required")
	// ErrInvalidCompetition is returned for a competition level other than low, medium or high
	ErrInvalidCompetition = errors.New("competition_level must be one of low, medium, high")
)

const defaultModelTimeout = 30 * time.Second

// Expander runs keyword research. It is safe for concurrent use once
// Initialize has returned.
type Expander struct {
	suggester    llm.Suggester
	log          logging.Logger
	rand         Rand
	metrics      *metrics.Metrics
	stats        *stats.Storage
	modelTimeout time.Duration

	initOnce    sync.Once
	initialized atomic.Bool
	dict        *dictionary
	intents     *intentClassifier
}

// Option configures an Expander
type Option func(*Expander)

// WithRand replaces the random source
func WithRand(r Rand) Option {
	return func(e *Expander) { e.rand = r }
}

// WithLogger sets the logger
func WithLogger(log logging.Logger) Option {
	return func(e *Expander) { e.log = log }
}

// WithMetrics records research outcomes on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Expander) { e.metrics = m }
}

// WithStats records monthly usage on s
func WithStats(s *stats.Storage) Option {
	return func(e *Expander) { e.stats = s }
}

// WithModelTimeout bounds the suggestion call
func WithModelTimeout(d time.Duration) Option {
	return func(e *Expander) {
		if d > 0 {
			e.modelTimeout = d
		}
	}
}

// New creates an Expander. suggester may be nil, in which case every
// research runs without model suggestions.
func New(suggester llm.Suggester, opts ...Option) *Expander {
	e := &Expander{
		suggester:    suggester,
		log:          logging.NewNop(),
		rand:         globalRand{},
		modelTimeout: defaultModelTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize builds the dictionaries and intent matchers. Repeated calls are no-ops.
func (e *Expander) Initialize() error {
	e.initOnce.Do(func() {
		e.dict = newDictionary()
		e.intents = newIntentClassifier()
		e.initialized.Store(true)
	})
	return nil
}

// ResearchKeywords expands and scores the request's seed keywords
func (e *Expander) ResearchKeywords(ctx context.Context, req Request) (*Result, error) {
	result, err := e.research(ctx, req)
	e.metrics.ObserveKeywordResearch(err, result != nil && result.Degraded)
	if err == nil {
		e.stats.RecordKeywordResearch()
	}
	return result, err
}

func (e *Expander) research(ctx context.Context, req Request) (*Result, error) {
	if !e.initialized.Load() {
		return nil, ErrServiceNotInitialized
	}
	if len(req.SeedKeywords) == 0 {
		return nil, ErrNoSeedKeywords
	}
	for _, seed := range req.SeedKeywords {
		if strings.TrimSpace(seed) == "" {
			return nil, ErrNoSeedKeywords
		}
	}
	if req.CompetitionLevel != "" && !req.CompetitionLevel.Valid() {
		return nil, ErrInvalidCompetition
	}

	result := &Result{}

	set := newOrderedSet(len(req.SeedKeywords) * 32)
	for _, seed := range req.SeedKeywords {
		set.Add(seed)
	}
	if isCannabis(req) {
		e.dict.addCannabis(set, req.SeedKeywords)
	}
	if isThaiMarket(req) || strings.EqualFold(req.Language, "th") {
		e.dict.addThai(set)
	}

	suggestions, err := e.suggest(ctx, req)
	switch {
	case err == nil:
		result.Provider = e.suggester.Name()
		for _, s := range suggestions {
			set.Add(s)
		}
	case ctx.Err() != nil:
		return nil, fmt.Errorf("keyword research failed: %w", ctx.Err())
	default:
		result.Degraded = true
		e.stats.RecordModelFailure()
		if errors.Is(err, llm.ErrNoModelAvailable) {
			e.log.Debug("Keyword suggestions skipped", logging.Err(err))
		} else {
			e.log.Warn("Keyword suggestions failed, continuing with dictionary keywords",
				logging.Strings("seed_keywords", req.SeedKeywords),
				logging.Err(err),
			)
		}
	}

	expanded := set.Items()

	scored := expanded[:min(len(expanded), MaxScoredKeywords)]
	result.Keywords = make([]Candidate, 0, len(scored))
	for _, keyword := range scored {
		result.Keywords = append(result.Keywords, e.scoreKeyword(keyword, req))
	}

	result.LongTailKeywords = longTailKeywords(req.SeedKeywords, req)
	result.Questions = questionKeywords(req.SeedKeywords)
	result.Trends = e.trends(expanded)

	e.log.Debug("Keyword research completed",
		logging.Int("keywords", len(result.Keywords)),
		logging.String("provider", result.Provider),
		logging.Bool("degraded", result.Degraded),
	)

	return result, nil
}

// suggest asks the configured model for related keywords
func (e *Expander) suggest(ctx context.Context, req Request) ([]string, error) {
	if e.suggester == nil {
		return nil, llm.ErrNoModelAvailable
	}

	ctx, cancel := context.WithTimeout(ctx, e.modelTimeout)
	defer cancel()

	text, err := e.suggester.Generate(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text), nil
}

func buildPrompt(req Request) string {
	industry := orDefault(req.Industry, "general")
	market := orDefault(req.Market, "global")
	language := orDefault(req.Language, "English")
	competition := orDefault(string(req.CompetitionLevel), string(CompetitionMedium))

	return fmt.Sprintf(`Generate related keywords for SEO research based on these seed keywords: %s

Context:
- Industry: %s
- Market: %s
- Language: %s
- Competition level: %s

Generate 20 related keywords that would be valuable for SEO, including:
- Variations and synonyms
- Long-tail keywords
- Commercial intent keywords
- Local variations (if applicable)

Return only the keywords, one per line.`,
		strings.Join(req.SeedKeywords, ", "), industry, market, language, competition)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// parseSuggestions keeps one keyword per non-empty line, stripped of list
// markers and surrounding quotes
func parseSuggestions(text string) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.Trim(line, `"'`))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
