package keywords

import "strings"

// RegionalScamKeywords are Tamil bait words common in festival scam pages.
var RegionalScamKeywords = []string{
	"இலவச",            // free
	"பரிசு",            // gift / prize
	"உடனே",            // immediately
	"பகிரவும்",         // share
	"இப்போது",          // now
	"கிளிக்",           // click
	"பெறுங்கள்",        // receive
	"வெற்றி",           // win
	"வரையறுக்கப்பட்ட", // limited
	"இன்றே",           // today
	"வாய்ப்பு",         // opportunity
	"ரூபாய்",           // rupees
	"லட்சம்",           // lakh
	"பணம்",             // money
	"அவசரம்",           // urgent
	"கடைசி",            // last
	"முடியும்",          // can / will
	"உறுதி",            // confirm
	"பதிவு",            // registration
	"முழுமை",           // complete
}

// EnglishScamKeywords are lowercase phishing phrases.
var EnglishScamKeywords = []string{
	"free gift",
	"claim now",
	"limited time",
	"urgent",
	"only today",
	"congratulations",
	"winner",
	"cash prize",
	"share with friends",
	"whatsapp",
	"click here",
	"instant",
	"guaranteed",
	"act now",
	"expires today",
	"last chance",
	"exclusive offer",
	"100% free",
	"no cost",
	"verify now",
	"confirm identity",
	"account suspended",
	"unusual activity",
	"security alert",
	"reset password",
	"update payment",
}

// PsychologicalTriggers exploit scarcity and exclusivity biases.
var PsychologicalTriggers = []string{
	"limited offer",
	"hurry up",
	"don't miss",
	"only few left",
	"ending soon",
	"before it's too late",
	"once in lifetime",
	"exclusive access",
	"selected users",
	"you have been chosen",
}

// SuspiciousURLPatterns are matched as substrings of the lowercased URL.
var SuspiciousURLPatterns = []string{
	"bit.ly",
	"tinyurl",
	"goo.gl",
	"ow.ly",
	"short.link",
	"free",
	"winner",
	"prize",
	"offer",
	"gift",
	"claim",
	"urgent",
	"secure-",
	"verify-",
	"login-",
	"account-update",
}

// TrustedExtensions lower the structural score.
var TrustedExtensions = []string{".gov", ".edu", ".org", ".mil", ".net", ".com", ".in"}

// RiskyExtensions are TLDs disproportionately used by throwaway scam domains.
var RiskyExtensions = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".pw", ".loan", ".site", ".click"}

// URLShorteners hide the real destination of a link.
var URLShorteners = []string{"bit.ly", "tinyurl.com", "tinyurl", "goo.gl", "ow.ly", "t.co", "short.link"}

// SensitiveInputTypes are <input type> values that collect credentials or identifiers.
var SensitiveInputTypes = []string{"password", "email", "tel", "number"}

// SensitiveFieldNames are substrings of input names that request financial or secret data.
var SensitiveFieldNames = []string{"password", "credit", "card", "cvv", "otp", "pin"}

// ObfuscationPatterns are script idioms used to hide payloads.
var ObfuscationPatterns = []string{"eval(", "document.write", "unescape", "fromcharcode"}

// SocialProofPhrases fake the activity of other victims.
var SocialProofPhrases = []string{"people claimed", "users won", "recently won", "just claimed"}

// SharingPlatformTerms count calls to forward a page on messaging apps.
var SharingPlatformTerms = []string{"whatsapp", "வாட்ஸ்அப்"}

// UrgencyTerms mark countdown-style pressure.
var UrgencyTerms = []string{"countdown", "timer", "expire"}

// IsTrustedExtension reports whether ext (with leading dot) is in TrustedExtensions.
func IsTrustedExtension(ext string) bool {
	return contains(TrustedExtensions, ext)
}

// IsRiskyExtension reports whether ext (with leading dot) is in RiskyExtensions.
func IsRiskyExtension(ext string) bool {
	return contains(RiskyExtensions, ext)
}

// MatchShortener returns the shortener host matches, comparing whole labels so
// that "microsoft.com" does not match "t.co".
func MatchShortener(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, s := range URLShorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			return s, true
		}
	}
	return "", false
}

// MatchAll returns every term of list found in text, in list order.
func MatchAll(text string, list []string) []string {
	var found []string
	for _, term := range list {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// ContainsAny reports whether text contains any term of list.
func ContainsAny(text string, list []string) bool {
	for _, term := range list {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	v = strings.ToLower(v)
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
