package scribe

import "time"

// PageTask is one unit of work: a page URL plus the artifact filename
// derived from it. Distinct URLs may map to the same filename; the last
// writer wins.
type PageTask struct {
	URL      string
	Filename string
}

// NewPageTask builds a task for rawURL with its derived artifact filename.
func NewPageTask(rawURL string) PageTask {
	return PageTask{
		URL:      rawURL,
		Filename: ArtifactFilename(rawURL),
	}
}

// FetchRequest captures everything the gateway needs to fetch one page.
type FetchRequest struct {
	URL       string
	SessionID string
}

// FetchResult is the rendered text returned by a Fetcher implementation.
type FetchResult struct {
	Text string
}

// Outcome is the terminal state of one task: either a success with a word
// count, or a failure with a reason. Exactly one of the two shapes applies.
type Outcome struct {
	Success bool
	Words   int
	Reason  string
}

// SuccessOutcome builds a success Outcome for text containing words tokens.
func SuccessOutcome(words int) Outcome {
	return Outcome{Success: true, Words: words}
}

// FailureOutcome builds a failure Outcome carrying the reason text.
func FailureOutcome(reason string) Outcome {
	return Outcome{Reason: reason}
}

// LogEntry is one immutable line of the journal's log section.
type LogEntry struct {
	Timestamp time.Time
	URL       string
	Status    string
	Filename  string
}
