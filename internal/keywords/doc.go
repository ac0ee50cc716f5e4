// Package keywords holds the read-only reference tables shared by the
// analyzers: scam phrase lists, URL patterns, domain extensions and the
// seasonal event calendar.
package keywords
