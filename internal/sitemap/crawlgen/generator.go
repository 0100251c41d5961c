// Package crawlgen generates a sitemap by walking a site's links with Colly.
// It only sees server-rendered HTML, which makes it the cheap first fallback
// when a site publishes no sitemap.
package crawlgen

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls the link walk and where the sitemap file lands.
type Config struct {
	MaxDepth   int
	MaxPages   int
	UserAgent  string
	OutputFile string
}

// Generator writes a sitemap XML file discovered via an HTML link walk.
type Generator struct {
	cfg    Config
	logger *zap.Logger
}

// New constructs a Generator.
func New(cfg Config, logger *zap.Logger) (*Generator, error) {
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("max pages must be > 0")
	}
	if strings.TrimSpace(cfg.OutputFile) == "" {
		return nil, fmt.Errorf("output file is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

// Generate walks baseURL up to the configured depth and page cap, writes the
// discovered pages as sitemap XML, and returns the output file path.
func (g *Generator) Generate(ctx context.Context, baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("sitemap walk canceled: %w", err)
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(allowedHosts(parsed.Hostname())...),
		colly.MaxDepth(g.cfg.MaxDepth),
		colly.UserAgent(g.cfg.UserAgent),
		colly.Async(true),
	)
	collector.AllowURLRevisit = false

	var (
		mu    sync.Mutex
		pages []string
	)
	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		mu.Lock()
		full := len(pages) >= g.cfg.MaxPages
		mu.Unlock()
		if full {
			r.Abort()
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode != 200 {
			return
		}
		mu.Lock()
		if len(pages) < g.cfg.MaxPages {
			pages = append(pages, r.Request.URL.String())
		}
		mu.Unlock()
	})
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if err := e.Request.Visit(e.Attr("href")); err != nil {
			g.logger.Debug("skip link", zap.String("href", e.Attr("href")), zap.Error(err))
		}
	})

	if err := collector.Visit(baseURL); err != nil {
		return "", fmt.Errorf("visit %s: %w", baseURL, err)
	}
	collector.Wait()

	g.logger.Info("link walk finished", zap.String("base_url", baseURL), zap.Int("pages", len(pages)))
	if err := writeSitemap(g.cfg.OutputFile, pages); err != nil {
		return "", err
	}
	return g.cfg.OutputFile, nil
}

func allowedHosts(host string) []string {
	bare := strings.TrimPrefix(host, "www.")
	if bare == host {
		return []string{host, "www." + host}
	}
	return []string{host, bare}
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

func writeSitemap(path string, pages []string) error {
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range pages {
		set.URLs = append(set.URLs, urlEntry{Loc: page})
	}
	payload, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sitemap: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create sitemap dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(xml.Header), payload...), 0o600); err != nil {
		return fmt.Errorf("write sitemap %s: %w", path, err)
	}
	return nil
}
