package scribe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// journalTimeLayout matches the timestamp format used in status log lines.
const journalTimeLayout = "2006-01-02 15:04:05"

// Journal maintains the durable run-status document. It keeps the log as a
// structured in-memory list and regenerates the whole file on every append,
// so the statistics sections are always a consistent snapshot and previously
// appended log lines survive every rewrite verbatim. Each write goes through
// a temp file plus rename, so a reader never observes a torn document.
//
// Journal is not safe for concurrent use; the pipeline serializes all calls
// through its recorder goroutine.
type Journal struct {
	path    string
	entries []LogEntry
}

// NewJournal creates a journal that persists to path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Init resets the journal, discarding entries from any prior run, and writes
// the empty document.
func (j *Journal) Init(snap Snapshot) error {
	j.entries = j.entries[:0]
	return j.write(snap)
}

// Append records one log entry and rewrites the document with the given
// statistics snapshot.
func (j *Journal) Append(entry LogEntry, snap Snapshot) error {
	j.entries = append(j.entries, entry)
	return j.write(snap)
}

// Finalize rewrites the statistics sections one last time without adding a
// log entry.
func (j *Journal) Finalize(snap Snapshot) error {
	return j.write(snap)
}

// Len reports the number of log entries appended so far.
func (j *Journal) Len() int {
	return len(j.entries)
}

func (j *Journal) write(snap Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".status-*.md")
	if err != nil {
		return fmt.Errorf("create journal temp file: %w", err)
	}
	if _, err := tmp.WriteString(j.render(snap)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write journal temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close journal temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace journal %s: %w", j.path, err)
	}
	return nil
}

func (j *Journal) render(snap Snapshot) string {
	var b strings.Builder
	b.WriteString("# Crawl Status\n\n")

	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- Total pages: %d\n", snap.Total)
	fmt.Fprintf(&b, "- Succeeded: %d\n", snap.Succeeded)
	fmt.Fprintf(&b, "- Failed: %d\n", snap.Failed)
	fmt.Fprintf(&b, "- Success rate: %.1f%%\n", snap.SuccessRate)
	fmt.Fprintf(&b, "- Total words: %d\n", snap.Words)
	b.WriteString("\n")

	b.WriteString("## Failures\n\n")
	b.WriteString("| Reason | Count |\n")
	b.WriteString("|--------|-------|\n")
	for _, reason := range sortedReasons(snap.Failures) {
		fmt.Fprintf(&b, "| %s | %d |\n", reason, snap.Failures[reason])
	}
	b.WriteString("\n")

	b.WriteString("## Log\n\n")
	b.WriteString("| Timestamp | URL | Status | Filename |\n")
	b.WriteString("|-----------|-----|--------|----------|\n")
	for _, entry := range j.entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			entry.Timestamp.Format(journalTimeLayout),
			entry.URL,
			entry.Status,
			entry.Filename,
		)
	}
	return b.String()
}

// sortedReasons keeps the failure section deterministic across rewrites.
func sortedReasons(failures map[string]int) []string {
	reasons := make([]string, 0, len(failures))
	for reason := range failures {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	return reasons
}
