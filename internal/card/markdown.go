package card

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsMarkdown reports whether path has a .md extension, case-insensitively.
func IsMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// ValidatePath checks that path names a markdown file a card could be
// written to. The file itself does not have to exist yet.
func ValidatePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("card path cannot be empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", fmt.Errorf("card path cannot be a directory: %s", path)
	}
	if !IsMarkdown(path) {
		return "", fmt.Errorf("card path must be a markdown file: %s", path)
	}
	return path, nil
}
