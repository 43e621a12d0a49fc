package utils

import (
	"os"
	"strings"
)

// EnsureDir creates dir (and any parents) when missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// TrimmedEmpty reports whether s is empty after trimming whitespace.
func TrimmedEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
