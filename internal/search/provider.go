package search

import (
	"context"
	"fmt"
)

// Record is one raw, untyped result returned by an external search
// provider. Records never leave this package: they are decoded and
// validated into model.JobPosting at the normalization boundary.
type Record map[string]any

// Provider is the external search capability. Implementations issue one
// query and return the provider's results in relevance order.
type Provider interface {
	Search(ctx context.Context, query string) ([]Record, error)
	Name() string
}

// UnavailableError reports a transport-level failure of the external search
// provider. It is surfaced instead of an empty result list, since an empty
// list would be indistinguishable from "no jobs found".
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("search provider %q unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
