// Package engine combines the detection modules into a single risk verdict.
//
// Engine.Analyze dispatches the URL, Domain, SSL and Content checkers
// concurrently and joins on all of them. A checker that panics contributes
// its worst documented failure score; a network checker still running when
// the caller's context expires contributes its timeout score and marks the
// result partial. The capped total is classified into a category with a
// confidence, and recommendations are derived from the category and the
// issue text.
//
// Runner fans Analyze out over many URLs with a worker pool and a global
// rate limit.
package engine
