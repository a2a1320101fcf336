package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// directoryFile is one candidate file discovered by pollFiles, paired with
// its modification time for cursor comparison.
type directoryFile struct {
	path  string
	mtime float64
}

// pollFiles enumerates *.jpg (sorted by name) then *.png (sorted by name),
// concatenated without a global re-sort, and returns only the files whose
// mtime is strictly greater than cursor. Matches spec §4.1's directory-mode
// idempotent replay guard: files mtime-equal-or-older than the cursor are
// skipped.
func pollFiles(dir string, cursor float64) ([]directoryFile, error) {
	jpgs, err := globSorted(dir, "*.jpg")
	if err != nil {
		return nil, err
	}
	pngs, err := globSorted(dir, "*.png")
	if err != nil {
		return nil, err
	}

	var out []directoryFile
	for _, path := range append(jpgs, pngs...) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		mtime := float64(info.ModTime().UnixNano()) / 1e9
		if mtime <= cursor {
			continue
		}
		out = append(out, directoryFile{path: path, mtime: mtime})
	}
	return out, nil
}

func globSorted(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
