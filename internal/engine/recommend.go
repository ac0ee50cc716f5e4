package engine

import (
	"strings"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
)

// Advisory text for each category, strongest first.
var categoryAdvice = map[analysis.Category][]string{
	analysis.CategoryDeceptive: {
		"DO NOT enter any personal information on this website",
		"DO NOT make any payments or share financial details",
		"DO NOT click on links or download files",
		"Report this website to cybercrime authorities",
		"Warn others who may have received this link",
	},
	analysis.CategorySuspicious: {
		"Exercise extreme caution with this website",
		"Verify the legitimacy through official channels",
		"Do not share sensitive information",
		"Check reviews and user experiences online",
	},
	analysis.CategoryCaution: {
		"Be cautious when interacting with this website",
		"Verify website authenticity before proceeding",
		"Look for trust indicators (contact info, reviews)",
	},
	analysis.CategorySafe: {
		"Website appears relatively safe",
		"Still exercise general online safety practices",
		"Verify legitimacy before sharing personal data",
	},
}

// issueTrigger appends advice when any issue matches.
type issueTrigger struct {
	advice  string
	matches func(issue string) bool
}

var issueTriggers = []issueTrigger{
	{
		advice:  "Insecure connection detected: avoid entering sensitive data",
		matches: func(s string) bool { return containsAnyOf(s, "ssl", "https") },
	},
	{
		advice: "Very new domain detected: verify legitimacy carefully",
		matches: func(s string) bool {
			return strings.Contains(s, "domain") && containsAnyOf(s, "new", "recent")
		},
	},
	{
		advice:  "Viral sharing tactics detected: likely a seasonal scam",
		matches: func(s string) bool { return containsAnyOf(s, "whatsapp", "share") },
	},
	{
		advice:  "Psychological manipulation tactics detected",
		matches: func(s string) bool { return containsAnyOf(s, "tamil", "regional", "psychological") },
	},
}

// Recommend returns the category's advice followed by one note per matching
// issue trigger, in trigger order.
func Recommend(category analysis.Category, issues []string) []string {
	recs := append([]string{}, categoryAdvice[category]...)
	for _, trigger := range issueTriggers {
		for _, issue := range issues {
			if trigger.matches(strings.ToLower(issue)) {
				recs = append(recs, trigger.advice)
				break
			}
		}
	}
	return recs
}

func containsAnyOf(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
