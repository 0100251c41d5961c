package scribe

// Stats accumulates run-level counters: total task count fixed at
// construction, successes, cumulative words, and a failure-reason histogram.
// Counters only ever grow. Stats performs no I/O and is not safe for
// concurrent mutation; the pipeline funnels all updates through a single
// recorder goroutine.
type Stats struct {
	total     int
	succeeded int
	words     int
	failures  map[string]int
}

// NewStats creates a Stats aggregate for a run of total tasks.
func NewStats(total int) *Stats {
	return &Stats{
		total:    total,
		failures: make(map[string]int),
	}
}

// RecordSuccess counts one successful page and its word total.
func (s *Stats) RecordSuccess(words int) {
	s.succeeded++
	s.words += words
}

// RecordFailure counts one failed page under the given reason.
func (s *Stats) RecordFailure(reason string) {
	s.failures[reason]++
}

// SuccessRate returns the percentage of successful tasks, or 0 for an empty
// run.
func (s *Stats) SuccessRate() float64 {
	if s.total == 0 {
		return 0
	}
	return 100 * float64(s.succeeded) / float64(s.total)
}

// Snapshot returns a value copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	failed := 0
	failures := make(map[string]int, len(s.failures))
	for reason, count := range s.failures {
		failures[reason] = count
		failed += count
	}
	return Snapshot{
		Total:       s.total,
		Succeeded:   s.succeeded,
		Failed:      failed,
		Words:       s.words,
		SuccessRate: s.SuccessRate(),
		Failures:    failures,
	}
}

// Snapshot is an immutable view of Stats, safe to hand to the journal, the
// status API, and the run store.
type Snapshot struct {
	Total       int            `json:"total"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	Words       int            `json:"words"`
	SuccessRate float64        `json:"success_rate"`
	Failures    map[string]int `json:"failures,omitempty"`
}
