package keywords

import "strings"

func longTailKeywords(seeds []string, req Request) []string {
	out := make([]string, 0, MaxLongTail)
	for _, seed := range seeds {
		out = append(out,
			"how to use "+seed,
			"best "+seed+" for beginners",
			"where to buy "+seed,
			seed+" buying guide",
			seed+" reviews and ratings",
		)
		if isThaiMarket(req) {
			out = append(out, seed+" delivery thailand", seed+" shop bangkok")
		}
		if len(out) >= MaxLongTail {
			return out[:MaxLongTail]
		}
	}
	return out
}

func questionKeywords(seeds []string) []string {
	out := make([]string, 0, MaxQuestions)
	for _, seed := range seeds {
		out = append(out,
			"what is "+seed,
			"how does "+seed+" work",
			"why use "+seed,
			"when to use "+seed,
			"where to find "+seed,
			"which "+seed+" is best",
		)
		if len(out) >= MaxQuestions {
			return out[:MaxQuestions]
		}
	}
	return out
}

func (e *Expander) trends(expanded []string) []Trend {
	n := min(len(expanded), MaxTrends)
	out := make([]Trend, 0, n)
	for _, keyword := range expanded[:n] {
		out = append(out, Trend{
			Keyword:          keyword,
			TrendDirection:   trendDirections[e.rand.IntN(len(trendDirections))],
			SeasonalPatterns: seasonalPatterns(keyword),
		})
	}
	return out
}

func seasonalPatterns(keyword string) []string {
	lower := strings.ToLower(keyword)
	patterns := []string{}
	if strings.Contains(lower, "outdoor") || strings.Contains(lower, "festival") {
		patterns = append(patterns, "Higher in summer months")
	}
	if strings.Contains(lower, "gift") || strings.Contains(lower, "holiday") {
		patterns = append(patterns, "Peak during holidays")
	}
	return patterns
}
