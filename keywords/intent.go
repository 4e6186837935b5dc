package keywords

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

type intentRule struct {
	intent  Intent
	matcher *ahocorasick.Matcher
}

// intentClassifier checks the rules in order and returns the first match
type intentClassifier struct {
	rules []intentRule
}

func newIntentClassifier() *intentClassifier {
	return &intentClassifier{
		rules: []intentRule{
			{IntentTransactional, ahocorasick.NewStringMatcher([]string{"buy", "purchase", "order", "shop", "wholesale", "price"})},
			{IntentCommercial, ahocorasick.NewStringMatcher([]string{"best", "review", "compare", "vs", "top", "cheap"})},
			{IntentNavigational, ahocorasick.NewStringMatcher([]string{"brand", "website", "official", "store"})},
		},
	}
}

// Classify returns the intent of keyword, defaulting to informational
func (c *intentClassifier) Classify(keyword string) Intent {
	lower := []byte(strings.ToLower(keyword))
	for _, rule := range c.rules {
		if len(rule.matcher.MatchThreadSafe(lower)) > 0 {
			return rule.intent
		}
	}
	return IntentInformational
}
