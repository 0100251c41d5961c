package scribe

import (
	"net/url"
	"strings"
)

// rootArtifactName names the artifact for a URL whose path is empty or "/".
const rootArtifactName = "index"

// ArtifactFilename derives the per-page artifact filename from a URL: the
// path with separators replaced by underscores, or a sentinel name for the
// site root, plus the markdown extension. The mapping is not injective;
// collisions are accepted.
func ArtifactFilename(rawURL string) string {
	name := rootArtifactName
	if parsed, err := url.Parse(rawURL); err == nil {
		trimmed := strings.Trim(parsed.Path, "/")
		if trimmed != "" {
			name = strings.ReplaceAll(trimmed, "/", "_")
		}
	}
	return name + ".md"
}
