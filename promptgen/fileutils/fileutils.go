package fileutils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Truncate shortens s to at most max runes for display, appending an
// ellipsis. Counting runes keeps multi-byte text valid UTF-8.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// ReadLines returns the trimmed, non-empty lines of a UTF-8 text file.
func ReadLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ReadLines: %w", err)
	}
	var lines []string
	for _, raw := range strings.Split(string(b), "\n") {
		if s := strings.TrimSpace(raw); s != "" {
			lines = append(lines, s)
		}
	}
	return lines, nil
}

// WriteLines writes one value per newline-terminated line, creating parent
// directories on demand. With appendTo set, lines are added to an existing
// file instead of replacing it.
func WriteLines(path string, lines []string, appendTo bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("WriteLines: mkdir: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendTo {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("WriteLines: open: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(strings.TrimRight(line, "\n") + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("WriteLines: write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("WriteLines: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("WriteLines: close: %w", err)
	}
	return nil
}
