package checker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/khanhnv2901/festguard/internal/domain/analysis"
	"github.com/khanhnv2901/festguard/internal/keywords"
	"github.com/khanhnv2901/festguard/internal/shared/constants"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	contentTimeoutScore    = 3
	contentUnreachable     = 8
	contentFetchFailure    = 5
	contentParseFailure    = 3
	externalLinkThreshold  = 50
	sharingMentionLimit    = 2
	minimalContentLength   = 200
	regionalKeywordWeight  = 2.0
	englishKeywordWeight   = 1.5
	triggerPhraseWeight    = 2.0
	suspiciousScriptWeight = 3
	socialProofWeight      = 3
)

// ContentChecker fetches a page once and scores scam language and deceptive
// page structure.
type ContentChecker struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// Client performs the fetch; nil builds one with Timeout.
	Client *http.Client
	Logger *zap.Logger
}

// NewContentChecker returns a content analyzer with the given fetch timeout.
func NewContentChecker(timeout time.Duration, userAgent string, logger *zap.Logger) *ContentChecker {
	return &ContentChecker{
		Timeout:   timeout,
		UserAgent: userAgent,
		Logger:    logger,
	}
}

// Module returns analysis.ModuleContent.
func (c *ContentChecker) Module() analysis.Module {
	return analysis.ModuleContent
}

// Check fetches target and analyzes its HTML.
func (c *ContentChecker) Check(ctx context.Context, target string) (result analysis.ModuleResult) {
	body, contentType, err := c.fetch(ctx, target)
	if err != nil {
		kind := classifyFetchError(err)
		loggerOrNop(c.Logger).Warn("content fetch failed",
			zap.String("module", string(analysis.ModuleContent)),
			zap.String("target", target),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return fetchFailureResult(kind)
	}

	defer func() {
		if r := recover(); r != nil {
			loggerOrNop(c.Logger).Error("content analysis panicked",
				zap.String("module", string(analysis.ModuleContent)),
				zap.Any("panic", r))
			result = analysis.FailureResult(analysis.ModuleContent, contentParseFailure,
				"analysis_error", "Content analysis incomplete")
		}
	}()

	res, err := analyzeHTML(body, contentType)
	if err != nil {
		loggerOrNop(c.Logger).Warn("content parse failed",
			zap.String("module", string(analysis.ModuleContent)),
			zap.Error(err))
		return analysis.FailureResult(analysis.ModuleContent, contentParseFailure,
			"analysis_error", "Content analysis incomplete")
	}
	return res
}

func fetchFailureResult(kind failureKind) analysis.ModuleResult {
	switch kind {
	case failureTimeout:
		return analysis.FailureResult(analysis.ModuleContent, contentTimeoutScore,
			string(failureTimeout), "Website took too long to respond (timeout)")
	case failureDNS:
		res := analysis.FailureResult(analysis.ModuleContent, contentUnreachable,
			string(failureDNS), "Domain does not exist or cannot be reached (suspicious)")
		res.Details["note"] = "domain unreachable"
		return res
	case failureConnection, failureTLS:
		return analysis.FailureResult(analysis.ModuleContent, contentFetchFailure,
			string(failureConnection), "Could not connect to website")
	default:
		return analysis.FailureResult(analysis.ModuleContent, contentFetchFailure,
			string(failureRequest), "Unable to analyze webpage content")
	}
}

func (c *ContentChecker) fetch(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	ua := c.UserAgent
	if ua == "" {
		ua = constants.DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", &statusError{code: resp.StatusCode}
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = constants.MaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *ContentChecker) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultContentTimeout
	}
	return &http.Client{Timeout: timeout}
}

// analyzeHTML scores a fetched page. It is separated from fetching so that
// markup can be tested without a server.
func analyzeHTML(body []byte, contentType string) (analysis.ModuleResult, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		reader = bytes.NewReader(body)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return analysis.ModuleResult{}, fmt.Errorf("parse html: %w", err)
	}

	card := newScorecard(analysis.ModuleContent)

	suspiciousScripts := 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if keywords.ContainsAny(strings.ToLower(s.Text()), keywords.ObfuscationPatterns) {
			suspiciousScripts++
		}
	})

	forms := doc.Find("form")
	sensitiveFields := collectSensitiveFields(forms)

	externalLinks := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "http") {
			externalLinks++
		}
	})

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		card.set("title", title)
	}

	doc.Find("script, style, noscript, template").Remove()
	visible := strings.Join(strings.Fields(doc.Text()), " ")
	text := strings.ToLower(visible)
	textLength := utf8.RuneCountInString(text)

	card.set("content_length", textLength)
	card.set("form_count", forms.Length())
	card.set("external_links", externalLinks)

	if found := keywords.MatchAll(visible, keywords.RegionalScamKeywords); len(found) > 0 {
		card.add(regionalKeywordWeight*float64(len(found)),
			fmt.Sprintf("Regional (Tamil) scam keywords detected: %d instances", len(found)))
		card.set("regional_keywords", found)
	}

	if found := keywords.MatchAll(text, keywords.EnglishScamKeywords); len(found) > 0 {
		card.add(englishKeywordWeight*float64(len(found)),
			fmt.Sprintf("English scam keywords detected: %d instances", len(found)))
		card.set("english_keywords", found)
	}

	if found := keywords.MatchAll(text, keywords.PsychologicalTriggers); len(found) > 0 {
		card.add(triggerPhraseWeight*float64(len(found)),
			fmt.Sprintf("Psychological manipulation detected: %d trigger phrases", len(found)))
		card.set("psychological_triggers", found)
	}

	if len(sensitiveFields) > 0 {
		card.add(8, "Form requesting sensitive information: "+strings.Join(sensitiveFields, ", "))
		card.set("sensitive_fields", sensitiveFields)
	}

	if externalLinks > externalLinkThreshold {
		card.add(6, fmt.Sprintf("Excessive external links (%d)", externalLinks))
	}

	sharing := 0
	for _, term := range keywords.SharingPlatformTerms {
		sharing += strings.Count(text, term)
	}
	if sharing > sharingMentionLimit {
		card.add(5, fmt.Sprintf("Multiple WhatsApp sharing prompts (%d mentions)", sharing))
	}
	card.set("sharing_mentions", sharing)

	if suspiciousScripts > 0 {
		card.add(float64(suspiciousScriptWeight*suspiciousScripts),
			fmt.Sprintf("Suspicious JavaScript code detected (%d instances)", suspiciousScripts))
	}

	if keywords.ContainsAny(text, keywords.UrgencyTerms) {
		card.add(4, "Countdown timer detected (artificial urgency tactic)")
	}

	if found := keywords.MatchAll(text, keywords.SocialProofPhrases); len(found) > 0 {
		card.add(float64(socialProofWeight*len(found)), "Fake social proof indicators detected")
		card.set("social_proof", found)
	}

	if textLength < minimalContentLength && forms.Length() > 0 {
		card.add(7, "Minimal content with forms (likely phishing)")
	}

	return card.result(), nil
}

// collectSensitiveFields returns the sorted, de-duplicated names (or types) of
// form inputs that request credentials or payment data.
func collectSensitiveFields(forms *goquery.Selection) []string {
	seen := map[string]struct{}{}
	forms.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		inputType := strings.ToLower(s.AttrOr("type", ""))
		name := strings.ToLower(s.AttrOr("name", ""))
		sensitive := false
		for _, t := range keywords.SensitiveInputTypes {
			if inputType == t {
				sensitive = true
				break
			}
		}
		if !sensitive && name != "" && keywords.ContainsAny(name, keywords.SensitiveFieldNames) {
			sensitive = true
		}
		if !sensitive {
			return
		}
		label := name
		if label == "" {
			label = inputType
		}
		seen[label] = struct{}{}
	})

	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
