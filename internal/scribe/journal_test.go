package scribe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalEntry(url, status, filename string) LogEntry {
	return LogEntry{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		URL:       url,
		Status:    status,
		Filename:  filename,
	}
}

func readJournal(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test reads from its own temp dir.
	require.NoError(t, err)
	return string(data)
}

// TestJournalInitOverwrites ensures Init discards any prior journal content
// at the same location.
func TestJournalInitOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.md")
	require.NoError(t, os.WriteFile(path, []byte("stale report"), 0o600))

	journal := NewJournal(path)
	require.NoError(t, journal.Init(NewStats(3).Snapshot()))

	content := readJournal(t, path)
	assert.NotContains(t, content, "stale report")
	assert.Contains(t, content, "# Crawl Status")
	assert.Contains(t, content, "- Total pages: 3")
	assert.Zero(t, journal.Len())
}

// TestJournalAppendPreservesLog verifies every appended entry survives all
// subsequent rewrites verbatim.
func TestJournalAppendPreservesLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.md")
	journal := NewJournal(path)
	stats := NewStats(5)
	require.NoError(t, journal.Init(stats.Snapshot()))

	var lines []string
	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://example.com/page-%d", i)
		var entry LogEntry
		if i%2 == 0 {
			stats.RecordSuccess(10)
			entry = journalEntry(url, "Success", fmt.Sprintf("page-%d.md", i))
		} else {
			stats.RecordFailure("timeout")
			entry = journalEntry(url, "Failed: timeout", "N/A")
		}
		require.NoError(t, journal.Append(entry, stats.Snapshot()))
		lines = append(lines, fmt.Sprintf("| 2025-06-01 12:00:00 | %s | %s | %s |", url, entry.Status, entry.Filename))

		// Every previously appended line must still be present, byte for byte.
		content := readJournal(t, path)
		for _, line := range lines {
			assert.Contains(t, content, line)
		}
	}

	require.NoError(t, journal.Finalize(stats.Snapshot()))
	content := readJournal(t, path)
	assert.Equal(t, 5, strings.Count(content, "| https://example.com/page-"))
	assert.Contains(t, content, "- Succeeded: 3")
	assert.Contains(t, content, "- Failed: 2")
	assert.Contains(t, content, "| timeout | 2 |")
	assert.Equal(t, 5, journal.Len())
}

// TestJournalStatsSectionsAreSnapshots checks the statistics sections are
// fully replaced, not accumulated, on each rewrite.
func TestJournalStatsSectionsAreSnapshots(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.md")
	journal := NewJournal(path)
	stats := NewStats(2)
	require.NoError(t, journal.Init(stats.Snapshot()))

	stats.RecordSuccess(4)
	require.NoError(t, journal.Append(journalEntry("https://example.com/", "Success", "index.md"), stats.Snapshot()))
	first := readJournal(t, path)
	assert.Contains(t, first, "- Success rate: 50.0%")

	stats.RecordSuccess(6)
	require.NoError(t, journal.Append(journalEntry("https://example.com/about", "Success", "about.md"), stats.Snapshot()))
	second := readJournal(t, path)
	assert.Contains(t, second, "- Success rate: 100.0%")
	assert.NotContains(t, second, "- Success rate: 50.0%")
	assert.Equal(t, 1, strings.Count(second, "## Statistics"))
}

// TestJournalLeavesNoTempFiles ensures the write-then-rename strategy cleans
// up after itself and always leaves exactly one readable document.
func TestJournalLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	journal := NewJournal(filepath.Join(dir, "status.md"))
	stats := NewStats(1)
	require.NoError(t, journal.Init(stats.Snapshot()))
	stats.RecordSuccess(1)
	require.NoError(t, journal.Append(journalEntry("https://example.com/", "Success", "index.md"), stats.Snapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status.md", entries[0].Name())
}
