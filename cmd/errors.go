package cmd

import "fmt"

// InvalidTargetError indicates a URL that cannot be analyzed.
type InvalidTargetError struct {
	Target string
	Err    error
}

func (e *InvalidTargetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid target %q", e.Target)
	}
	return fmt.Sprintf("invalid target %q: %v", e.Target, e.Err)
}

func (e *InvalidTargetError) Unwrap() error { return e.Err }

// BatchFailureError reports how many targets of a batch were not analyzed or not stored.
type BatchFailureError struct {
	Failed int
	Total  int
}

func (e *BatchFailureError) Error() string {
	return fmt.Sprintf("%d of %d targets failed", e.Failed, e.Total)
}
