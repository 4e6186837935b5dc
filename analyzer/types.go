package analyzer

// Request describes the page to score. At least one of URL or Content
// should be set; the HTTP layer enforces that.
type Request struct {
	URL             string
	Content         string
	Keywords        []string
	Competitors     []string
	Title           string
	MetaDescription string
}

// SubScore is the result of one sub-analyzer
type SubScore struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// Scores holds the five sub-analyzer scores
type Scores struct {
	Content   float64 `json:"content"`
	Technical float64 `json:"technical"`
	Keywords  float64 `json:"keywords"`
	Structure float64 `json:"structure"`
	Meta      float64 `json:"meta"`
}

// Priority ranks a recommendation
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is one issue with its category and suggested fix
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category string   `json:"category"`
	Issue    string   `json:"issue"`
	Solution string   `json:"solution"`
}

// Prominence values
const (
	ProminenceNone    = 0
	ProminenceContent = 50
	ProminenceTitle   = 100
)

// KeywordDetail is the per-keyword breakdown
type KeywordDetail struct {
	Keyword         string   `json:"keyword"`
	Density         float64  `json:"density"`
	Prominence      int      `json:"prominence"`
	Recommendations []string `json:"recommendations"`
}

// CompetitorResult is the content score of one competitor page
type CompetitorResult struct {
	Competitor    string   `json:"competitor"`
	Score         float64  `json:"score"`
	Strengths     []string `json:"strengths"`
	Opportunities []string `json:"opportunities"`
}

// Report is the full SEO analysis
type Report struct {
	OverallScore       int                `json:"overall_score"`
	Scores             Scores             `json:"scores"`
	Recommendations    []Recommendation   `json:"recommendations"`
	KeywordAnalysis    []KeywordDetail    `json:"keyword_analysis"`
	CompetitorAnalysis []CompetitorResult `json:"competitor_analysis,omitempty"`
}
