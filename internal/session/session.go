// Package session manages the on-disk Telegram session artifact.
//
// The session itself is an opaque sqlite blob owned by the client library;
// this package only knows its path, its age, and how to remove it.
package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	// Dir is the hidden working directory holding the session file.
	Dir = ".tempts"
	// FileName is the session file name inside Dir.
	FileName = "tg.session"
	// TTL is the maximum tolerated session age. Tokens older than this are
	// dropped proactively: the library would still accept a stale token,
	// the server would not.
	TTL = 7 * 24 * time.Hour
)

// Path returns the session file path, creating the directory if needed.
func Path() (string, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	return filepath.Join(Dir, FileName), nil
}

// IsExpired reports whether the session file at path is older than TTL.
// A missing file is never expired.
func IsExpired(path string, now time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime()) > TTL
}

// Cleanup removes the session file and its sqlite journal companion.
// Missing files are a no-op, not an error.
func Cleanup(path string) {
	_ = os.Remove(path)
	_ = os.Remove(journalPath(path))
}

// ForceClear removes the session files on explicit user request, writing a
// status message to out.
func ForceClear(path string, out io.Writer) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(out, "No session found to clear.")
		return
	}

	fmt.Fprintf(out, "Clearing session: %s\n", path)
	Cleanup(path)
	fmt.Fprintln(out, "Session cleared successfully.")
}

// journalPath returns the sqlite journal file written next to the session.
func journalPath(path string) string {
	return path + "-journal"
}
