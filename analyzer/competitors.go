package analyzer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seo-optimizer/seoforge/logging"
)

const maxCompetitors = 3

// analyzeCompetitors scores the content of up to three competitor pages in
// parallel. Results keep input order and each failure stays in its own entry.
func (a *Analyzer) analyzeCompetitors(ctx context.Context, competitors, keywords []string) []CompetitorResult {
	if len(competitors) > maxCompetitors {
		competitors = competitors[:maxCompetitors]
	}
	results := make([]CompetitorResult, len(competitors))

	var g errgroup.Group
	g.SetLimit(maxCompetitors)
	for i, competitor := range competitors {
		g.Go(func() error {
			results[i] = a.analyzeCompetitor(ctx, competitor, keywords)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Analyzer) analyzeCompetitor(ctx context.Context, competitor string, keywords []string) (result CompetitorResult) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Competitor analysis panicked",
				logging.String("competitor", competitor),
				logging.Any("panic", r),
			)
			result = inaccessibleCompetitor(competitor)
		}
	}()

	page, err := a.fetch(ctx, competitor)
	if err != nil {
		a.log.Warn("Competitor fetch failed", logging.String("competitor", competitor), logging.Err(err))
		return inaccessibleCompetitor(competitor)
	}

	doc := newDocument(page.Text, page.HTML, page.Title, page.MetaDescription)
	return CompetitorResult{
		Competitor:    competitor,
		Score:         analyzeContent(doc, keywords).Score,
		Strengths:     []string{"Strong content optimization", "Good keyword usage"},
		Opportunities: []string{"Improve meta descriptions", "Add more content"},
	}
}

func inaccessibleCompetitor(competitor string) CompetitorResult {
	return CompetitorResult{
		Competitor:    competitor,
		Score:         0,
		Strengths:     []string{},
		Opportunities: []string{"Unable to analyze - site may be inaccessible"},
	}
}
