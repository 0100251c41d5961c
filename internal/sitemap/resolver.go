package sitemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"go.uber.org/zap"
)

// trivialURLCount is the generation-failure heuristic: a generator that
// produces this many URLs or fewer did not really map the site.
const trivialURLCount = 2

// Generator produces a sitemap XML file for a base URL and returns its path.
type Generator interface {
	Generate(ctx context.Context, baseURL string) (string, error)
}

// Resolver determines the list of page URLs for a site. It prefers the
// published sitemap, then the primary generator, then the secondary
// generator when the primary output looks trivial. Every step's failure is
// logged and treated as zero URLs from that step; an empty final list means
// the run has nothing to do, not that resolution errored.
type Resolver struct {
	client      *http.Client
	sitemapPath string
	primary     Generator
	secondary   Generator
	logger      *zap.Logger
}

// NewResolver constructs a Resolver. Either generator may be nil, in which
// case its fallback step is skipped.
func NewResolver(client *http.Client, sitemapPath string, primary, secondary Generator, logger *zap.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:      client,
		sitemapPath: sitemapPath,
		primary:     primary,
		secondary:   secondary,
		logger:      logger,
	}
}

// Resolve returns the ordered page URLs for baseURL. A nil error with an
// empty slice means the fallback chain was exhausted without finding any.
func (r *Resolver) Resolve(ctx context.Context, baseURL string) ([]string, error) {
	if urls := r.fromPublished(ctx, baseURL); len(urls) > 0 {
		return urls, nil
	}

	urls := r.fromGenerator(ctx, "primary", r.primary, baseURL)
	if len(urls) <= trivialURLCount {
		if alt := r.fromGenerator(ctx, "secondary", r.secondary, baseURL); len(alt) > 0 {
			urls = alt
		}
	}
	return urls, nil
}

// fromPublished probes for a sitemap at the conventional path with a HEAD
// request and fetches it only when present.
func (r *Resolver) fromPublished(ctx context.Context, baseURL string) []string {
	sitemapURL, err := url.JoinPath(baseURL, r.sitemapPath)
	if err != nil {
		r.logger.Warn("build sitemap url failed", zap.String("base_url", baseURL), zap.Error(err))
		return nil
	}

	if !r.exists(ctx, sitemapURL) {
		r.logger.Info("no published sitemap", zap.String("url", sitemapURL))
		return nil
	}

	body, err := r.get(ctx, sitemapURL)
	if err != nil {
		r.logger.Warn("sitemap fetch failed", zap.String("url", sitemapURL), zap.Error(err))
		return nil
	}

	urls := ParseURLs(body)
	r.logger.Info("parsed published sitemap", zap.String("url", sitemapURL), zap.Int("urls", len(urls)))
	return urls
}

func (r *Resolver) fromGenerator(ctx context.Context, label string, gen Generator, baseURL string) []string {
	if gen == nil {
		return nil
	}
	path, err := gen.Generate(ctx, baseURL)
	if err != nil {
		r.logger.Error("sitemap generation failed", zap.String("generator", label), zap.Error(err))
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the generator's own configuration.
	if err != nil {
		r.logger.Error("read generated sitemap failed", zap.String("generator", label), zap.String("path", path), zap.Error(err))
		return nil
	}
	urls := ParseURLs(data)
	r.logger.Info("parsed generated sitemap",
		zap.String("generator", label),
		zap.String("path", path),
		zap.Int("urls", len(urls)),
	)
	return urls
}

func (r *Resolver) exists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		r.logger.Warn("build probe request failed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("sitemap probe failed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (r *Resolver) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sitemap request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sitemap request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap request: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sitemap body: %w", err)
	}
	return body, nil
}
