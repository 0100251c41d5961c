// Package sitemap resolves the authoritative page list for a site: it probes
// for a published sitemap, falls back to generator capabilities when none
// exists, and parses sitemap XML into a flat URL list.
package sitemap

import (
	"encoding/xml"
	"strings"
)

// sitemapNS is the standard sitemaps.org namespace.
const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemaps in the wild come in two shapes: <loc> elements with no namespace
// qualification, and the standard namespaced form. The unqualified decode is
// tried first; the namespaced decode is the fallback.
type plainURLSet struct {
	URLs []plainEntry `xml:"url"`
}

type plainEntry struct {
	Loc string `xml:"loc"`
}

type nsURLSet struct {
	URLs []nsEntry `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 url"`
}

type nsEntry struct {
	Loc string `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 loc"`
}

// ParseURLs extracts page URLs from sitemap XML in document order. Entries
// with an empty <loc> are excluded. Malformed documents yield an empty list
// rather than an error.
func ParseURLs(data []byte) []string {
	var plain plainURLSet
	if err := xml.Unmarshal(data, &plain); err == nil {
		if urls := collectLocs(plain.URLs, func(e plainEntry) string { return e.Loc }); len(urls) > 0 {
			return urls
		}
	}

	var namespaced nsURLSet
	if err := xml.Unmarshal(data, &namespaced); err == nil {
		return collectLocs(namespaced.URLs, func(e nsEntry) string { return e.Loc })
	}
	return nil
}

func collectLocs[T any](entries []T, loc func(T) string) []string {
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		if trimmed := strings.TrimSpace(loc(entry)); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
