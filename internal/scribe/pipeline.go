package scribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Output file names inside the run's output directory.
const (
	pagesDirName      = "pages"
	journalFileName   = "status.md"
	collectedFileName = "collected.md"
)

// Summary is the final report of a pipeline run.
type Summary struct {
	Snapshot
	SessionID     string
	JournalPath   string
	CollectedPath string
	MergedPages   int
	Elapsed       time.Duration
}

// Engine orchestrates the fetch pipeline: it admits at most Concurrency
// fetches at a time, converts every fetch into exactly one outcome, and
// funnels all statistics and journal mutations through a single recorder
// goroutine so no two completions ever mutate shared state concurrently.
type Engine struct {
	cfg     Config
	fetcher Fetcher
	clock   Clock
	logger  *zap.Logger

	snapshot atomic.Pointer[Snapshot]
}

// NewEngine constructs an Engine.
func NewEngine(cfg Config, fetcher Fetcher, clock Clock, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		clock:   clock,
		logger:  logger,
	}
}

// Snapshot returns the latest published statistics view. It is safe to call
// from other goroutines (e.g. the status API) while a run is in progress.
func (e *Engine) Snapshot() Snapshot {
	if snap := e.snapshot.Load(); snap != nil {
		return *snap
	}
	return Snapshot{}
}

// completion pairs a task with its terminal outcome for the recorder.
type completion struct {
	task    PageTask
	outcome Outcome
}

// Run processes every URL through the fetcher and returns once all tasks
// have completed, the journal is finalized, and the artifacts are merged.
// Individual fetch failures never abort the run; Run errors only on setup
// or aggregation problems (output directory, journal init, merge).
func (e *Engine) Run(ctx context.Context, urls []string) (Summary, error) {
	started := e.clock.Now()
	sessionID := uuid.NewString()

	pagesDir := filepath.Join(e.cfg.OutputDir, pagesDirName)
	if err := os.MkdirAll(pagesDir, 0o750); err != nil {
		return Summary{}, fmt.Errorf("create pages dir %s: %w", pagesDir, err)
	}

	stats := NewStats(len(urls))
	snap := stats.Snapshot()
	e.snapshot.Store(&snap)

	journal := NewJournal(filepath.Join(e.cfg.OutputDir, journalFileName))
	if err := journal.Init(stats.Snapshot()); err != nil {
		return Summary{}, fmt.Errorf("init journal: %w", err)
	}

	e.logger.Info("starting run",
		zap.String("session_id", sessionID),
		zap.Int("urls", len(urls)),
		zap.Int("concurrency", e.cfg.Concurrency),
	)

	completions := make(chan completion)
	recorderDone := make(chan struct{})
	go e.record(completions, recorderDone, stats, journal)

	gate := make(admissionGate, e.cfg.Concurrency)
	var wg sync.WaitGroup
	for _, rawURL := range urls {
		wg.Add(1)
		go func(task PageTask) {
			defer wg.Done()
			completions <- completion{task: task, outcome: e.process(ctx, sessionID, gate, pagesDir, task)}
		}(NewPageTask(rawURL))
	}
	wg.Wait()
	close(completions)
	<-recorderDone

	final := stats.Snapshot()
	if err := journal.Finalize(final); err != nil {
		return Summary{}, fmt.Errorf("finalize journal: %w", err)
	}

	collectedPath := filepath.Join(e.cfg.OutputDir, collectedFileName)
	merged, err := MergeArtifacts(pagesDir, collectedPath)
	if err != nil {
		return Summary{}, fmt.Errorf("merge artifacts: %w", err)
	}

	summary := Summary{
		Snapshot:      final,
		SessionID:     sessionID,
		JournalPath:   journal.path,
		CollectedPath: collectedPath,
		MergedPages:   merged,
		Elapsed:       e.clock.Now().Sub(started),
	}
	e.logger.Info("run finished",
		zap.String("session_id", sessionID),
		zap.Int("succeeded", final.Succeeded),
		zap.Int("failed", final.Failed),
		zap.Float64("success_rate", final.SuccessRate),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// record is the single writer for stats, journal, metrics, and the published
// snapshot. It runs until the completions channel is closed.
func (e *Engine) record(completions <-chan completion, done chan<- struct{}, stats *Stats, journal *Journal) {
	defer close(done)
	for c := range completions {
		entry := LogEntry{Timestamp: e.clock.Now(), URL: c.task.URL}
		if c.outcome.Success {
			stats.RecordSuccess(c.outcome.Words)
			PagesSucceeded.Inc()
			WordsExtracted.Add(float64(c.outcome.Words))
			entry.Status = "Success"
			entry.Filename = c.task.Filename
		} else {
			stats.RecordFailure(c.outcome.Reason)
			PagesFailed.Inc()
			entry.Status = "Failed: " + c.outcome.Reason
			entry.Filename = "N/A"
		}

		snap := stats.Snapshot()
		e.snapshot.Store(&snap)
		if err := journal.Append(entry, snap); err != nil {
			e.logger.Error("journal append failed", zap.String("url", c.task.URL), zap.Error(err))
		}
	}
}

// process runs one task to its terminal outcome: fetch under the admission
// gate, then write the artifact outside it. Failures are returned as
// outcomes, never as errors.
func (e *Engine) process(ctx context.Context, sessionID string, gate admissionGate, pagesDir string, task PageTask) Outcome {
	result, err := e.fetchOne(ctx, sessionID, gate, task)
	if err != nil {
		e.logger.Warn("fetch failed", zap.String("url", task.URL), zap.Error(err))
		return FailureOutcome(err.Error())
	}

	target := filepath.Join(pagesDir, task.Filename)
	if err := os.WriteFile(target, []byte(result.Text), 0o600); err != nil {
		e.logger.Error("artifact write failed", zap.String("url", task.URL), zap.Error(err))
		return FailureOutcome(fmt.Sprintf("write artifact: %v", err))
	}

	e.logger.Debug("saved page", zap.String("url", task.URL), zap.String("file", target))
	return SuccessOutcome(len(strings.Fields(result.Text)))
}

// fetchOne performs the gated fetch call with the configured timeout. The
// gate slot is held only for the duration of the fetch.
func (e *Engine) fetchOne(ctx context.Context, sessionID string, gate admissionGate, task PageTask) (FetchResult, error) {
	if err := gate.acquire(ctx); err != nil {
		return FetchResult{}, err
	}
	defer gate.release()

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := e.fetcher.Fetch(fetchCtx, FetchRequest{URL: task.URL, SessionID: sessionID})
	FetchDuration.Observe(time.Since(start).Seconds())
	// The error text doubles as the failure-histogram key, so it is returned
	// unwrapped; the caller logs the URL alongside it.
	return result, err
}

// admissionGate bounds the number of simultaneously executing fetches.
type admissionGate chan struct{}

func (g admissionGate) acquire(ctx context.Context) error {
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("acquire fetch slot: %w", ctx.Err())
	}
}

func (g admissionGate) release() {
	<-g
}
