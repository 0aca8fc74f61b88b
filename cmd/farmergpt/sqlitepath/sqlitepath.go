// Package sqlitepath decides where the sqlite storage driver keeps its
// database file.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is the database file name inside the .farmergpt/ directory.
const DefaultName = "farmergpt.db"

// ResolveSQLitePath returns override when set, otherwise the first existing
// candidate database, otherwise DefaultName inside dotdir.
func ResolveSQLitePath(override, dotdir string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}

	for _, candidate := range sqliteCandidates(dotdir) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return filepath.Join(dotdir, DefaultName)
}

func sqliteCandidates(dotdir string) []string {
	candidates := []string{
		filepath.Join(dotdir, DefaultName),
		DefaultName,
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "farmergpt", DefaultName))
	}

	return candidates
}
