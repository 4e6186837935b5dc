package keywords

// Competition is the estimated competition level for a keyword
type Competition string

const (
	CompetitionLow    Competition = "low"
	CompetitionMedium Competition = "medium"
	CompetitionHigh   Competition = "high"
)

// Valid reports whether c is one of the known levels
func (c Competition) Valid() bool {
	switch c {
	case CompetitionLow, CompetitionMedium, CompetitionHigh:
		return true
	}
	return false
}

// Intent is the searcher purpose behind a keyword
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
)

// TrendDirection is the direction a keyword's interest is moving
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

var trendDirections = [...]TrendDirection{TrendRising, TrendStable, TrendDeclining}

// Request is the input to ResearchKeywords
type Request struct {
	SeedKeywords     []string
	Market           string
	Language         string
	Industry         string
	CompetitionLevel Competition
}

// Candidate is one scored keyword
type Candidate struct {
	Keyword         string      `json:"keyword"`
	SearchVolume    int         `json:"search_volume"`
	Competition     Competition `json:"competition"`
	Difficulty      float64     `json:"difficulty"`
	CPC             float64     `json:"cpc"`
	Intent          Intent      `json:"intent"`
	RelatedKeywords []string    `json:"related_keywords"`
}

// Trend is the trend estimate for one keyword
type Trend struct {
	Keyword          string         `json:"keyword"`
	TrendDirection   TrendDirection `json:"trend_direction"`
	SeasonalPatterns []string       `json:"seasonal_patterns"`
}

// Result is the full keyword research report
type Result struct {
	Keywords         []Candidate `json:"keywords"`
	LongTailKeywords []string    `json:"long_tail_keywords"`
	Questions        []string    `json:"questions"`
	Trends           []Trend     `json:"trends"`

	// Provider names the model that supplied suggestions; empty when none did
	Provider string `json:"provider,omitempty"`
	// Degraded is set when suggestions were skipped or failed
	Degraded bool `json:"degraded"`
}

// Limits on the result lists
const (
	MaxScoredKeywords = 50
	MaxLongTail       = 20
	MaxQuestions      = 15
	MaxTrends         = 10
	MaxSuggestions    = 20
	MaxRelated        = 5
)
