package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory of run logs and which files in it are up
// for pruning.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs deletes files under the target directory that match the
// pattern and are older than retentionDays. Zero or negative retention
// disables pruning. Pruning never fails the run; problems are logged and the
// file is left in place.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, target RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep := keepSet(target.Exclude)

	for _, entry := range entries {
		if entry.IsDir() || !nameMatches(target.Pattern, entry.Name()) {
			continue
		}
		path := absOrSelf(filepath.Join(dir, entry.Name()))
		if _, skip := keep[path]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			if logger != nil {
				logger.Warn("log retention remove failed", String("path", path), Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Debug("log pruned", String("path", path))
		}
	}
}

func keepSet(paths []string) map[string]struct{} {
	keep := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			keep[absOrSelf(p)] = struct{}{}
		}
	}
	return keep
}

func nameMatches(pattern, name string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
