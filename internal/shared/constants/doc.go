// Package constants centralizes defaults shared across the CLI, the API server
// and the analyzers: file permissions, network timeouts and score ceilings.
package constants
