// Package analysis holds the domain model of a website risk analysis: the
// per-module results, the aggregate Result with its verdict, persisted records,
// user feedback and the repository port.
package analysis
