// Package headless contains fetchers that render pages in a browser before
// extracting their text.
package headless

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sitescribe/sitescribe/internal/scribe"
)

// Config controls the behavior of the headless fetcher.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// HostQPS caps render requests per host; 0 disables the limit.
	HostQPS float64
}

// Fetcher implements scribe.Fetcher using chromedp and headless Chrome. The
// pipeline owns the concurrency budget; the fetcher only owns its browser
// and an optional per-host politeness limit.
type Fetcher struct {
	cfg          Config
	allocator    context.Context
	allocCancel  context.CancelFunc
	hostLimiters sync.Map
	logger       *zap.Logger
}

// NewChromedp creates a headless fetcher backed by chromedp.
func NewChromedp(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.HostQPS < 0 {
		return nil, fmt.Errorf("host qps must be >= 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Close cancels the allocator context.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// Fetch navigates with a headless browser and returns the page's rendered
// text content.
func (f *Fetcher) Fetch(ctx context.Context, request scribe.FetchRequest) (scribe.FetchResult, error) {
	if err := f.waitHostBudget(ctx, request.URL); err != nil {
		return scribe.FetchResult{}, err
	}

	tabCtx, tabCancel := chromedp.NewContext(f.allocator)
	defer tabCancel()

	taskCtx, cancel := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancel()

	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	text, err := f.runChromedp(taskCtx, request.URL)
	if err != nil {
		return scribe.FetchResult{}, fmt.Errorf("render %s: %w", request.URL, err)
	}

	f.logger.Debug("rendered page",
		zap.String("session_id", request.SessionID),
		zap.String("url", request.URL),
		zap.Int("bytes", len(text)),
	)
	return scribe.FetchResult{Text: text}, nil
}

func (f *Fetcher) runChromedp(ctx context.Context, rawURL string) (string, error) {
	var text string
	tasks := chromedp.Tasks{
		network.Enable(),
		f.userAgentAction(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.body.innerText`, &text),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return text, nil
}

func (f *Fetcher) userAgentAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if f.cfg.UserAgent == "" {
			return nil
		}
		if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}

func (f *Fetcher) waitHostBudget(ctx context.Context, rawURL string) error {
	if f.cfg.HostQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse fetch url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := f.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(f.cfg.HostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait host limiter: %w", err)
	}
	return nil
}

// forwardCancel propagates cancellation from the caller's context into the
// chromedp task context.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
