package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// filenameSafe strips anything outside the partner-agreed filename
// character set. The caret survives because the courier service code
// can appear in filenames.
var filenameSafe = regexp.MustCompile(`[^a-zA-Z0-9_.^-]`)

func sanitizeFilename(name string) string {
	return filenameSafe.ReplaceAllString(name, "")
}

// Archive writes generated export files into a local directory before
// upload and prunes them once the retention window passes. The files
// contain personal data, hence the restrictive permissions.
type Archive struct {
	logger *zap.Logger
	root   string
}

func NewArchive(logger *zap.Logger, root string) *Archive {
	return &Archive{logger: logger, root: root}
}

// Write stores data under a sanitized name inside the archive root and
// returns the full path. The resolved path must stay within the root;
// anything that escapes is rejected before a byte is written.
func (a *Archive) Write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.root, 0o700); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	root, err := filepath.Abs(a.root)
	if err != nil {
		return "", fmt.Errorf("resolve archive root: %w", err)
	}

	full := filepath.Join(root, sanitizeFilename(name))
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("archive path %q escapes archive root", name)
	}

	if err := os.WriteFile(full, data, 0o600); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return full, nil
}

// Cleanup deletes archived CSV files older than the retention period
// and reports how many were removed. Failures to remove individual
// files are logged, not fatal; the next run tries again.
func (a *Archive) Cleanup(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	matches, err := filepath.Glob(filepath.Join(a.root, "*.csv"))
	if err != nil {
		a.logger.Warn("Archive cleanup glob failed", zap.Error(err))
		return 0
	}

	deleted := 0
	for _, file := range matches {
		info, err := os.Stat(file)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(file); err != nil {
			a.logger.Warn("Failed to remove expired archive file",
				zap.String("file", file),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		a.logger.Info("Cleaned up expired archive files",
			zap.Int("deleted", deleted),
			zap.Duration("retention", retention),
		)
	}
	return deleted
}
