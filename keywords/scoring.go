package keywords

import (
	"math"
	"strings"
)

var relatedModifiers = [...]string{"best", "cheap", "online", "wholesale", "quality"}

func wordCount(keyword string) int {
	return len(strings.Fields(keyword))
}

func isThaiMarket(req Request) bool {
	return strings.EqualFold(req.Market, "thailand")
}

func isCannabis(req Request) bool {
	return strings.EqualFold(req.Industry, "cannabis")
}

// scoreKeyword fills every Candidate field for keyword. Random draws happen
// in a fixed order: volume, difficulty, cpc, related modifier.
func (e *Expander) scoreKeyword(keyword string, req Request) Candidate {
	competition := estimateCompetition(keyword)
	intent := e.intents.Classify(keyword)

	return Candidate{
		Keyword:         keyword,
		SearchVolume:    e.estimateSearchVolume(keyword, req),
		Competition:     competition,
		Difficulty:      e.estimateDifficulty(competition),
		CPC:             e.estimateCPC(intent, req),
		Intent:          intent,
		RelatedKeywords: e.relatedKeywords(keyword, req),
	}
}

func (e *Expander) estimateSearchVolume(keyword string, req Request) int {
	volume := 1000.0

	switch words := wordCount(keyword); {
	case words == 1:
		volume *= 5
	case words > 3:
		volume *= 0.3
	}
	if isThaiMarket(req) {
		volume *= 0.1
	}
	if isCannabis(req) {
		volume *= 0.5
	}

	variance := 0.5 + e.rand.Float64()
	return int(math.Round(volume * variance))
}

func estimateCompetition(keyword string) Competition {
	switch wordCount(keyword) {
	case 1:
		return CompetitionHigh
	case 2:
		return CompetitionMedium
	default:
		return CompetitionLow
	}
}

func (e *Expander) estimateDifficulty(competition Competition) float64 {
	switch competition {
	case CompetitionHigh:
		return 70 + e.rand.Float64()*30
	case CompetitionMedium:
		return 40 + e.rand.Float64()*30
	default:
		return 20 + e.rand.Float64()*30
	}
}

func (e *Expander) estimateCPC(intent Intent, req Request) float64 {
	cpc := 0.5
	if intent == IntentCommercial || intent == IntentTransactional {
		cpc *= 3
	}
	if isCannabis(req) {
		cpc *= 2
	}
	return math.Round(cpc*(0.5+e.rand.Float64())*100) / 100
}

func (e *Expander) relatedKeywords(keyword string, req Request) []string {
	related := make([]string, 0, 4)

	if words := strings.Fields(keyword); len(words) > 1 {
		reversed := make([]string, len(words))
		for i, w := range words {
			reversed[len(words)-1-i] = w
		}
		related = append(related, strings.Join(reversed, " "))
	}

	modifier := relatedModifiers[e.rand.IntN(len(relatedModifiers))]
	related = append(related, modifier+" "+keyword)

	if isThaiMarket(req) {
		related = append(related, keyword+" thailand", keyword+" bangkok")
	}

	if len(related) > MaxRelated {
		related = related[:MaxRelated]
	}
	return related
}
