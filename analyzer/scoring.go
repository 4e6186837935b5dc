package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// document is the text view every sub-analyzer works on
type document struct {
	text            string
	lowerText       string
	words           int
	markup          string
	title           string
	metaDescription string
}

func newDocument(text, markup, title, metaDescription string) *document {
	return &document{
		text:            text,
		lowerText:       strings.ToLower(text),
		words:           len(strings.Fields(text)),
		markup:          markup,
		title:           title,
		metaDescription: metaDescription,
	}
}

// occurrences counts non-overlapping case-insensitive matches of keyword
func occurrences(lowerHaystack, keyword string) int {
	needle := strings.ToLower(keyword)
	if needle == "" {
		return 0
	}
	return strings.Count(lowerHaystack, needle)
}

func density(matches, words int) float64 {
	if words == 0 {
		return 0
	}
	return float64(matches) / float64(words) * 100
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

func analyzeContent(doc *document, keywords []string) SubScore {
	issues := []string{}
	score := 100.0

	switch {
	case doc.words < 300:
		issues = append(issues, "Content is too short (less than 300 words)")
		score -= 20
	case doc.words < 500:
		issues = append(issues, "Content could be longer for better SEO")
		score -= 10
	}

	for _, keyword := range keywords {
		if occurrences(doc.lowerText, keyword) == 0 {
			issues = append(issues, fmt.Sprintf("Keyword \"%s\" not found in content", keyword))
			score -= 15
		}
	}

	sentences := len(sentenceSplit.Split(doc.text, -1))
	if float64(doc.words)/float64(sentences) > 20 {
		issues = append(issues, "Sentences are too long, affecting readability")
		score -= 10
	}

	return SubScore{Score: clamp(score), Issues: issues}
}

const (
	slowLoadTime     = 3000 * time.Millisecond
	moderateLoadTime = 1500 * time.Millisecond
)

func analyzeTechnical(url string, page *Page, fetchErr error) SubScore {
	if url == "" {
		return SubScore{Score: 80, Issues: []string{"URL not provided for technical analysis"}}
	}
	if fetchErr != nil || page == nil {
		return SubScore{Score: 70, Issues: []string{"Unable to access URL for technical analysis"}}
	}

	issues := []string{}
	score := 100.0

	switch {
	case page.Latency > slowLoadTime:
		issues = append(issues, "Page load time is too slow (>3 seconds)")
		score -= 20
	case page.Latency > moderateLoadTime:
		issues = append(issues, "Page load time could be improved")
		score -= 10
	}

	if !strings.HasPrefix(strings.ToLower(url), "https://") {
		issues = append(issues, "Site should use HTTPS")
		score -= 15
	}

	if !strings.Contains(strings.ToLower(page.HTML), "<!doctype html") {
		issues = append(issues, "Missing DOCTYPE declaration")
		score -= 5
	}

	return SubScore{Score: clamp(score), Issues: issues}
}

func analyzeKeywords(doc *document, keywords []string) SubScore {
	issues := []string{}
	score := 100.0

	lowerTitle := strings.ToLower(doc.title)
	lowerMeta := strings.ToLower(doc.metaDescription)

	for _, keyword := range keywords {
		if occurrences(lowerTitle, keyword) == 0 {
			issues = append(issues, fmt.Sprintf("Keyword \"%s\" not found in title", keyword))
			score -= 15
		}
		if occurrences(lowerMeta, keyword) == 0 {
			issues = append(issues, fmt.Sprintf("Keyword \"%s\" not found in meta description", keyword))
			score -= 10
		}

		d := density(occurrences(doc.lowerText, keyword), doc.words)
		switch {
		case d < 0.5:
			issues = append(issues, fmt.Sprintf("Keyword \"%s\" density too low (%.2f%%)", keyword, d))
			score -= 10
		case d > 3:
			issues = append(issues, fmt.Sprintf("Keyword \"%s\" density too high (%.2f%%) - risk of over-optimization", keyword, d))
			score -= 15
		}
	}

	return SubScore{Score: clamp(score), Issues: issues}
}

func analyzeStructure(doc *document) SubScore {
	issues := []string{}
	score := 100.0

	counts := countStructure(doc.markup)

	switch {
	case counts.h1 == 0:
		issues = append(issues, "Missing H1 heading")
		score -= 20
	case counts.h1 > 1:
		issues = append(issues, "Multiple H1 headings found")
		score -= 10
	}

	if counts.h2 == 0 {
		issues = append(issues, "No H2 headings found - consider adding subheadings")
		score -= 10
	}

	if counts.lists == 0 && doc.words > 500 {
		issues = append(issues, "Consider adding lists or bullet points for better readability")
		score -= 5
	}

	return SubScore{Score: clamp(score), Issues: issues}
}

func analyzeMeta(title, metaDescription string) SubScore {
	issues := []string{}
	score := 100.0

	if title == "" {
		issues = append(issues, "Missing title tag")
		score -= 30
	} else {
		switch n := utf8.RuneCountInString(title); {
		case n < 30:
			issues = append(issues, "Title is too short")
			score -= 15
		case n > 60:
			issues = append(issues, "Title is too long (may be truncated in search results)")
			score -= 10
		}
	}

	if metaDescription == "" {
		issues = append(issues, "Missing meta description")
		score -= 20
	} else {
		switch n := utf8.RuneCountInString(metaDescription); {
		case n < 120:
			issues = append(issues, "Meta description is too short")
			score -= 10
		case n > 160:
			issues = append(issues, "Meta description is too long (may be truncated)")
			score -= 10
		}
	}

	return SubScore{Score: clamp(score), Issues: issues}
}

func analyzeKeywordDetails(doc *document, keywords []string) []KeywordDetail {
	lowerTitle := strings.ToLower(doc.title)
	details := make([]KeywordDetail, 0, len(keywords))

	for _, keyword := range keywords {
		contentMatches := occurrences(doc.lowerText, keyword)
		titleMatches := occurrences(lowerTitle, keyword)
		d := density(contentMatches, doc.words)

		prominence := ProminenceNone
		switch {
		case titleMatches > 0:
			prominence = ProminenceTitle
		case contentMatches > 0:
			prominence = ProminenceContent
		}

		recs := []string{}
		switch {
		case d < 0.5:
			recs = append(recs, "Increase keyword usage in content")
		case d > 3:
			recs = append(recs, "Reduce keyword usage to avoid over-optimization")
		}
		if titleMatches == 0 {
			recs = append(recs, "Add keyword to title tag")
		}

		details = append(details, KeywordDetail{
			Keyword:         keyword,
			Density:         math.Round(d*100) / 100,
			Prominence:      prominence,
			Recommendations: recs,
		})
	}
	return details
}
