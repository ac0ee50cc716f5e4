package engine

import (
	"testing"

	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/stretchr/testify/assert"
)

func modulesScoring(scores ...int) []analysis.ModuleResult {
	out := make([]analysis.ModuleResult, len(scores))
	for i, s := range scores {
		out[i] = analysis.ModuleResult{Module: analysis.Modules[i], Score: s}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		modules    []analysis.ModuleResult
		category   analysis.Category
		confidence analysis.Confidence
	}{
		{"zero", 0, nil, analysis.CategorySafe, analysis.ConfidenceHigh},
		{"clearly safe", 8, nil, analysis.CategorySafe, analysis.ConfidenceHigh},
		{"safe boundary", 10, nil, analysis.CategorySafe, analysis.ConfidenceMedium},
		{"upper safe", 24, nil, analysis.CategorySafe, analysis.ConfidenceMedium},
		{"caution boundary", 25, nil, analysis.CategoryCaution, analysis.ConfidenceLow},
		{"upper caution", 44, nil, analysis.CategoryCaution, analysis.ConfidenceLow},
		{"suspicious one strong module", 45, modulesScoring(20, 10, 10, 5), analysis.CategorySuspicious, analysis.ConfidenceLowMedium},
		{"suspicious two strong modules", 50, modulesScoring(16, 16, 10, 8), analysis.CategorySuspicious, analysis.ConfidenceMedium},
		{"strong means above fifteen", 60, modulesScoring(15, 15, 15, 15), analysis.CategorySuspicious, analysis.ConfidenceLowMedium},
		{"deceptive boundary", 70, nil, analysis.CategoryDeceptive, analysis.ConfidenceHigh},
		{"deceptive", 72, nil, analysis.CategoryDeceptive, analysis.ConfidenceHigh},
		{"maximum", 100, nil, analysis.CategoryDeceptive, analysis.ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, confidence := Classify(tt.total, tt.modules)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.confidence, confidence)
		})
	}
}

func TestClassify_BandsPartitionScoreRange(t *testing.T) {
	bounds := map[analysis.Category][2]int{
		analysis.CategorySafe:       {0, 24},
		analysis.CategoryCaution:    {25, 44},
		analysis.CategorySuspicious: {45, 69},
		analysis.CategoryDeceptive:  {70, 100},
	}
	counts := map[analysis.Category]int{}
	for total := 0; total <= 100; total++ {
		category, _ := Classify(total, nil)
		b, ok := bounds[category]
		if assert.True(t, ok, "unknown category %q for %d", category, total) {
			assert.True(t, total >= b[0] && total <= b[1], "%d classified as %s", total, category)
		}
		counts[category]++
	}
	assert.Equal(t, 101, counts[analysis.CategorySafe]+counts[analysis.CategoryCaution]+
		counts[analysis.CategorySuspicious]+counts[analysis.CategoryDeceptive])
}

func TestRecommend_CategoryTiers(t *testing.T) {
	deceptive := Recommend(analysis.CategoryDeceptive, nil)
	assert.Len(t, deceptive, 5)
	assert.Equal(t, "DO NOT enter any personal information on this website", deceptive[0])

	assert.Len(t, Recommend(analysis.CategorySuspicious, nil), 4)
	assert.Len(t, Recommend(analysis.CategoryCaution, nil), 3)

	safe := Recommend(analysis.CategorySafe, nil)
	assert.Equal(t, "Website appears relatively safe", safe[0])
}

func TestRecommend_IssueTriggers(t *testing.T) {
	issues := []string{
		"Regional (Tamil) scam keywords detected: 3 instances",
		"Self-signed SSL certificate detected",
		"Psychological manipulation detected: 2 trigger phrases",
		"Recent domain (45 days old)",
		"Multiple WhatsApp sharing prompts (5 mentions)",
	}
	recs := Recommend(analysis.CategoryCaution, issues)

	assert.Equal(t, []string{
		"Be cautious when interacting with this website",
		"Verify website authenticity before proceeding",
		"Look for trust indicators (contact info, reviews)",
		"Insecure connection detected: avoid entering sensitive data",
		"Very new domain detected: verify legitimacy carefully",
		"Viral sharing tactics detected: likely a seasonal scam",
		"Psychological manipulation tactics detected",
	}, recs, "each trigger fires once, in trigger order")
}

func TestRecommend_DomainTriggerNeedsBothWords(t *testing.T) {
	recs := Recommend(analysis.CategorySafe, []string{
		"Domain created near Diwali",
		"Short registration period (expires in 100 days)",
	})
	assert.Len(t, recs, 3)
}

func TestRecommend_DoesNotAliasTier(t *testing.T) {
	first := Recommend(analysis.CategorySafe, []string{"Website does not use HTTPS"})
	second := Recommend(analysis.CategorySafe, nil)
	assert.Len(t, first, 4)
	assert.Len(t, second, 3)
}
