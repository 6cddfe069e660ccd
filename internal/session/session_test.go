package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSessionFile(t *testing.T, age time.Duration) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("blob"), 0o644))

	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestIsExpired_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	assert.False(t, IsExpired(path, time.Now()))
}

func TestIsExpired_FreshSession(t *testing.T) {
	path := writeSessionFile(t, time.Hour)

	assert.False(t, IsExpired(path, time.Now()))
}

func TestIsExpired_SessionOlderThanTTL(t *testing.T) {
	path := writeSessionFile(t, TTL+time.Hour)

	assert.True(t, IsExpired(path, time.Now()))
}

func TestIsExpired_BoundaryIsNotExpired(t *testing.T) {
	// exactly at TTL must not count as expired, only strictly older
	path := writeSessionFile(t, 0)
	info, err := os.Stat(path)
	require.NoError(t, err)

	assert.False(t, IsExpired(path, info.ModTime().Add(TTL)))
	assert.True(t, IsExpired(path, info.ModTime().Add(TTL+time.Second)))
}

func TestCleanup_RemovesSessionAndJournal(t *testing.T) {
	path := writeSessionFile(t, 0)
	journal := path + "-journal"
	require.NoError(t, os.WriteFile(journal, []byte("journal"), 0o644))

	Cleanup(path)

	assert.NoFileExists(t, path)
	assert.NoFileExists(t, journal)
}

func TestCleanup_MissingFilesIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	Cleanup(path) // must not panic or create anything

	assert.NoFileExists(t, path)
}

func TestForceClear_NoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	var out bytes.Buffer

	ForceClear(path, &out)

	assert.Contains(t, out.String(), "No session found to clear.")
}

func TestForceClear_RemovesAndReports(t *testing.T) {
	path := writeSessionFile(t, 0)
	var out bytes.Buffer

	ForceClear(path, &out)

	assert.NoFileExists(t, path)
	assert.Contains(t, out.String(), "Clearing session: "+path)
	assert.Contains(t, out.String(), "Session cleared successfully.")
}
