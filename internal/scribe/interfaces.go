package scribe

import (
	"context"
	"time"
)

// Fetcher retrieves the rendered text of a single page. Implementations own
// their browser/transport details; the pipeline owns the concurrency budget
// and converts any returned error into a failure outcome for that task.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResult, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
