package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveCodeRoot joins workspace and the relative code path into an absolute directory.
func ResolveCodeRoot(workspace, codePath string) (string, error) {
	if workspace == "" {
		workspace = "."
	}
	joined := codePath
	if !filepath.IsAbs(codePath) {
		joined = filepath.Join(workspace, codePath)
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", joined, err)
	}
	return abs, nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// JoinSegments joins the segments of a slash path with sep, e.g. "a/b" -> "a / b".
func JoinSegments(slashPath, sep string) string {
	return strings.Join(strings.Split(slashPath, "/"), sep)
}
