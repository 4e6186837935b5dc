package keywords

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/seoforge/llm"
	"github.com/seo-optimizer/seoforge/metrics"
)

// fixedRand returns the same draw every time, reduced into range for IntN
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(n int) int   { return r.n % n }

type stubSuggester struct {
	text        string
	err         error
	prompt      string
	hadDeadline bool
}

func (s *stubSuggester) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	_, s.hadDeadline = ctx.Deadline()
	return s.text, s.err
}

func (s *stubSuggester) Name() string { return "stub" }

func newTestExpander(t *testing.T, suggester llm.Suggester, opts ...Option) *Expander {
	t.Helper()
	e := New(suggester, opts...)
	require.NoError(t, e.Initialize())
	return e
}

func keywordTexts(res *Result) []string {
	out := make([]string, 0, len(res.Keywords))
	for _, c := range res.Keywords {
		out = append(out, c.Keyword)
	}
	return out
}

func TestResearchKeywordsRequiresInitialize(t *testing.T) {
	e := New(nil)
	_, err := e.ResearchKeywords(context.Background(), Request{SeedKeywords: []string{"bong"}})
	assert.ErrorIs(t, err, ErrServiceNotInitialized)
}

func TestResearchKeywordsValidatesSeeds(t *testing.T) {
	e := newTestExpander(t, nil)

	_, err := e.ResearchKeywords(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoSeedKeywords)

	_, err = e.ResearchKeywords(context.Background(), Request{SeedKeywords: []string{"bong", "  "}})
	assert.ErrorIs(t, err, ErrNoSeedKeywords)
}

func TestResearchKeywordsValidatesCompetition(t *testing.T) {
	e := newTestExpander(t, nil)

	_, err := e.ResearchKeywords(context.Background(), Request{SeedKeywords: []string{"bong"}, CompetitionLevel: "extreme"})
	assert.ErrorIs(t, err, ErrInvalidCompetition)

	for _, level := range []Competition{"", CompetitionLow, CompetitionMedium, CompetitionHigh} {
		_, err := e.ResearchKeywords(context.Background(), Request{SeedKeywords: []string{"bong"}, CompetitionLevel: level})
		assert.NoError(t, err, "level %q", level)
	}
}

func TestCannabisExpansion(t *testing.T) {
	e := newTestExpander(t, nil)

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"glass bong"},
		Industry:     "cannabis",
	})
	require.NoError(t, err)

	texts := keywordTexts(res)
	assert.Equal(t, "glass bong", texts[0])
	assert.Equal(t, []string{
		"glass bong",
		"glass bong wholesale",
		"glass bong online",
		"best glass bong",
		"cheap glass bong",
		"RAW papers glass bong",
	}, texts[:6])
	assert.Contains(t, texts, "borosilicate glass glass bong")
	assert.Contains(t, texts, "Space Case glass bong")
	assert.Len(t, texts, 22)

	assert.True(t, res.Degraded)
	assert.Empty(t, res.Provider)
}

func TestCannabisMatchesEitherDirection(t *testing.T) {
	e := newTestExpander(t, nil)

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"Bubbler"},
		Industry:     "Cannabis",
	})
	require.NoError(t, err)
	texts := keywordTexts(res)
	assert.Contains(t, texts, "bubbler wholesale")
	assert.Contains(t, texts, "OCB Bubbler")

	res, err = e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"glass"},
		Industry:     "cannabis",
	})
	require.NoError(t, err)
	texts = keywordTexts(res)
	assert.Contains(t, texts, "glass bong")
	assert.Contains(t, texts, "glass pipe online")
}

func TestThaiExpansion(t *testing.T) {
	e := newTestExpander(t, nil)

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"bong"},
		Language:     "th",
	})
	require.NoError(t, err)

	texts := keywordTexts(res)
	assert.Len(t, texts, MaxScoredKeywords)
	assert.Equal(t, "bong", texts[0])
	assert.Equal(t, "บ้อง", texts[1])
	assert.Equal(t, "บ้อง กรุงเทพ", texts[2])
	assert.Contains(t, texts, "บ้อง ขายส่ง")
	assert.Len(t, res.Trends, MaxTrends)
}

func TestScoringWithFixedRand(t *testing.T) {
	e := newTestExpander(t, nil, WithRand(fixedRand{f: 0.5, n: 0}))

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"glass bong", "bong", "cheap glass bong wholesale"},
		Industry:     "cannabis",
	})
	require.NoError(t, err)

	byKeyword := make(map[string]Candidate)
	for _, c := range res.Keywords {
		byKeyword[c.Keyword] = c
	}

	gb := byKeyword["glass bong"]
	assert.Equal(t, 500, gb.SearchVolume)
	assert.Equal(t, CompetitionMedium, gb.Competition)
	assert.InDelta(t, 55.0, gb.Difficulty, 1e-9)
	assert.Equal(t, IntentInformational, gb.Intent)
	assert.InDelta(t, 1.0, gb.CPC, 1e-9)
	assert.Equal(t, []string{"bong glass", "best glass bong"}, gb.RelatedKeywords)

	single := byKeyword["bong"]
	assert.Equal(t, 2500, single.SearchVolume)
	assert.Equal(t, CompetitionHigh, single.Competition)
	assert.InDelta(t, 85.0, single.Difficulty, 1e-9)
	assert.Equal(t, []string{"best bong"}, single.RelatedKeywords)

	long := byKeyword["cheap glass bong wholesale"]
	assert.Equal(t, 150, long.SearchVolume)
	assert.Equal(t, CompetitionLow, long.Competition)
	assert.InDelta(t, 35.0, long.Difficulty, 1e-9)
	assert.Equal(t, IntentTransactional, long.Intent)
	assert.InDelta(t, 3.0, long.CPC, 1e-9)

	for _, tr := range res.Trends {
		assert.Equal(t, TrendRising, tr.TrendDirection)
	}
}

func TestThaiMarketRelatedKeywords(t *testing.T) {
	e := newTestExpander(t, nil, WithRand(fixedRand{f: 0.5, n: 4}))

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"water pipe"},
		Market:       "thailand",
	})
	require.NoError(t, err)

	first := res.Keywords[0]
	assert.Equal(t, "water pipe", first.Keyword)
	assert.Equal(t, 100, first.SearchVolume)
	assert.Equal(t, []string{
		"pipe water",
		"quality water pipe",
		"water pipe thailand",
		"water pipe bangkok",
	}, first.RelatedKeywords)

	require.NotEmpty(t, res.Trends)
	for _, tr := range res.Trends {
		assert.Equal(t, TrendStable, tr.TrendDirection)
	}
}

func TestClassifyIntent(t *testing.T) {
	c := newIntentClassifier()
	tests := []struct {
		keyword string
		want    Intent
	}{
		{"cheap glass bong wholesale", IntentTransactional},
		{"Buy Rolling Papers", IntentTransactional},
		{"best vaporizer", IntentCommercial},
		{"pax vs volcano", IntentCommercial},
		{"official ROOR website", IntentNavigational},
		{"how to clean a bong", IntentInformational},
		{"glass pipe price", IntentTransactional},
		{"top head shop", IntentTransactional},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.keyword), tt.keyword)
	}
}

func TestRandomFieldsStayInRange(t *testing.T) {
	e := newTestExpander(t, nil, WithRand(rand.New(rand.NewPCG(1, 2))))

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: []string{"glass bong", "herb grinder", "one hitter"},
		Industry:     "cannabis",
		Market:       "thailand",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Keywords)

	for _, c := range res.Keywords {
		assert.GreaterOrEqual(t, c.SearchVolume, 0)
		assert.GreaterOrEqual(t, c.CPC, 0.0)
		assert.LessOrEqual(t, len(c.RelatedKeywords), MaxRelated)
		switch c.Competition {
		case CompetitionLow:
			assert.True(t, c.Difficulty >= 20 && c.Difficulty < 50, c.Keyword)
		case CompetitionMedium:
			assert.True(t, c.Difficulty >= 40 && c.Difficulty < 70, c.Keyword)
		case CompetitionHigh:
			assert.True(t, c.Difficulty >= 70 && c.Difficulty < 100, c.Keyword)
		default:
			t.Fatalf("unexpected competition %q", c.Competition)
		}
	}
}

func TestResultLimitsAndSeedsPreserved(t *testing.T) {
	e := newTestExpander(t, nil)

	seeds := []string{"a", "b", "c", "d", "e", "f"}
	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords: seeds,
		Industry:     "cannabis",
		Market:       "thailand",
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(res.Keywords), MaxScoredKeywords)
	assert.Len(t, res.LongTailKeywords, MaxLongTail)
	assert.Len(t, res.Questions, MaxQuestions)
	assert.Equal(t, seeds, keywordTexts(res)[:len(seeds)])

	assert.Equal(t, "how to use a", res.LongTailKeywords[0])
	assert.Equal(t, "a delivery thailand", res.LongTailKeywords[5])
	assert.Equal(t, "which a is best", res.Questions[5])

	tracked := make(map[string]bool)
	for _, c := range res.Keywords {
		tracked[c.Keyword] = true
	}
	for _, tr := range res.Trends {
		assert.True(t, tracked[tr.Keyword], tr.Keyword)
	}
}

func TestSeasonalPatterns(t *testing.T) {
	assert.Equal(t, []string{"Higher in summer months", "Peak during holidays"}, seasonalPatterns("Outdoor gift set"))
	assert.Equal(t, []string{"Higher in summer months"}, seasonalPatterns("festival pipe"))
	assert.Empty(t, seasonalPatterns("glass bong"))
}

func TestSuggestionsAreMerged(t *testing.T) {
	s := &stubSuggester{text: "1. vape pen\n- \"dab tool\"\n\n   \nglass bong\n* outdoor festival bong\n"}
	e := newTestExpander(t, s, WithModelTimeout(time.Second))

	res, err := e.ResearchKeywords(context.Background(), Request{
		SeedKeywords:     []string{"glass bong"},
		Market:           "",
		CompetitionLevel: CompetitionHigh,
	})
	require.NoError(t, err)

	assert.False(t, res.Degraded)
	assert.Equal(t, "stub", res.Provider)
	assert.Equal(t, []string{"glass bong", "vape pen", "dab tool", "outdoor festival bong"}, keywordTexts(res))
	assert.Equal(t, []string{"Higher in summer months"}, res.Trends[3].SeasonalPatterns)

	assert.True(t, s.hadDeadline)
	assert.Contains(t, s.prompt, "seed keywords: glass bong")
	assert.Contains(t, s.prompt, "- Industry: general")
	assert.Contains(t, s.prompt, "- Market: global")
	assert.Contains(t, s.prompt, "- Language: English")
	assert.Contains(t, s.prompt, "- Competition level: high")
}

func TestUpstreamFailureDegrades(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)

	s := &stubSuggester{err: &llm.UpstreamModelError{Provider: "stub", Err: errors.New("quota exceeded")}}
	e := newTestExpander(t, s, WithMetrics(m))

	res, err := e.ResearchKeywords(context.Background(), Request{SeedKeywords: []string{"herb grinder"}})
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	assert.Empty(t, res.Provider)
	assert.Equal(t, []string{"herb grinder"}, keywordTexts(res))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KeywordResearchTotal.WithLabelValues("degraded")))
}

func TestCancelledContextFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &stubSuggester{err: &llm.UpstreamModelError{Provider: "stub", Err: context.Canceled}}
	e := newTestExpander(t, s)

	_, err := e.ResearchKeywords(ctx, Request{SeedKeywords: []string{"bong"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseSuggestionsCaps(t *testing.T) {
	lines := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("%d) keyword %d", i+1, i))
	}
	got := parseSuggestions(strings.Join(lines, "\n"))
	assert.Len(t, got, MaxSuggestions)
	assert.Equal(t, "keyword 0", got[0])
}

func TestConcurrentResearch(t *testing.T) {
	e := newTestExpander(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.ResearchKeywords(context.Background(), Request{
				SeedKeywords: []string{"glass pipe"},
				Industry:     "cannabis",
			})
			assert.NoError(t, err)
			assert.Equal(t, "glass pipe", res.Keywords[0].Keyword)
		}()
	}
	wg.Wait()
}
