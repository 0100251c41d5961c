package scribe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// artifactExt is the extension shared by all per-page artifacts.
const artifactExt = ".md"

// MergeArtifacts concatenates every artifact in pagesDir into a single
// document at outPath, in lexicographic filename order, each section headed
// by the filename without its extension and followed by a separator. It is
// purely filesystem-driven: whatever artifacts exist at merge time are
// merged, so a partial run yields a partial document. Re-running over the
// same artifact set produces byte-identical output.
func MergeArtifacts(pagesDir, outPath string) (int, error) {
	dirEntries, err := os.ReadDir(pagesDir)
	if err != nil {
		return 0, fmt.Errorf("list artifact dir %s: %w", pagesDir, err)
	}

	var b strings.Builder
	merged := 0
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(pagesDir, name)) // #nosec G304 -- reads from the run's own artifact directory.
		if err != nil {
			return merged, fmt.Errorf("read artifact %s: %w", name, err)
		}
		fmt.Fprintf(&b, "\n\n## %s\n\n", strings.TrimSuffix(name, artifactExt))
		b.Write(content)
		b.WriteString("\n\n---\n")
		merged++
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0o600); err != nil {
		return merged, fmt.Errorf("write combined document %s: %w", outPath, err)
	}
	return merged, nil
}
