package analyzer

import "strings"

type issueCategory struct {
	match    string
	category string
	priority Priority
	solution string
}

// issueCategories is checked in order; the first substring match wins
var issueCategories = []issueCategory{
	{"keyword", "Keywords", PriorityHigh, "Optimize keyword usage and placement"},
	{"title", "Meta Tags", PriorityHigh, "Optimize title tag length and keyword placement"},
	{"meta description", "Meta Tags", PriorityMedium, "Write compelling meta description with target keywords"},
	{"content", "Content", PriorityMedium, "Improve content quality and length"},
	{"load time", "Technical", PriorityHigh, "Optimize page speed and performance"},
}

func categorize(issue string) Recommendation {
	lower := strings.ToLower(issue)
	for _, c := range issueCategories {
		if strings.Contains(lower, c.match) {
			return Recommendation{Priority: c.priority, Category: c.category, Issue: issue, Solution: c.solution}
		}
	}
	return Recommendation{
		Priority: PriorityMedium,
		Category: "General",
		Issue:    issue,
		Solution: "Review and optimize this aspect",
	}
}

// buildRecommendations tags every issue in sub-analyzer order
func buildRecommendations(subScores ...SubScore) []Recommendation {
	recs := []Recommendation{}
	for _, s := range subScores {
		for _, issue := range s.Issues {
			recs = append(recs, categorize(issue))
		}
	}
	return recs
}
