package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhanong/ecsframework/internal/config"
)

// ContentDir returns the repository's testdata/content directory.
func ContentDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "locate testutil source")
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", "content")
}

// LoadContent loads the repository content bundle.
func LoadContent(t *testing.T) *config.Bundle {
	t.Helper()
	b, err := config.Load(ContentDir(t))
	require.NoError(t, err)
	return b
}

// WriteContent writes src as content.cue in a fresh directory and returns
// the directory.
func WriteContent(t *testing.T, src string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "content")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.cue"), []byte(src), 0644))
	return dir
}
