package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateStorePath validates a local store or config file path. Absolute
// paths are allowed (the daemon typically keeps its store under the user's
// data directory), but traversal components and NUL bytes are rejected.
func ValidateStorePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("file path contains NUL byte")
	}

	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(cleanPath, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("path contains directory traversal: %s", path)
		}
	}

	return nil
}

// ValidatePathWithinBase validates that path, resolved against baseDir,
// stays inside baseDir.
func ValidatePathWithinBase(path, baseDir string) error {
	if err := ValidateStorePath(path); err != nil {
		return err
	}

	cleanPath := filepath.Clean(filepath.Join(baseDir, path))
	cleanBase := filepath.Clean(baseDir)

	if cleanPath != cleanBase && !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", path)
	}

	return nil
}
