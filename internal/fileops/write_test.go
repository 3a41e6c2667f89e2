package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFile(dir, "summary.txt", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteFile_Overwrites(t *testing.T) {
	dir := t.TempDir()

	first, err := WriteFile(dir, "summary.txt", []byte("first"))
	require.NoError(t, err)
	second, err := WriteFile(dir, "summary.txt", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestNames_Claim(t *testing.T) {
	names := NewNames()

	tests := []struct {
		name  string
		owner string
		want  string
	}{
		{"notes.summary.txt", "a/notes.md", "notes.summary.txt"},
		{"notes.summary.txt", "a/notes.md", "notes.summary.txt"},
		{"notes.summary.txt", "b/notes.md", "notes.summary_" + contentHash([]byte("b/notes.md"))[:8] + ".txt"},
		{"other.summary.txt", "other.md", "other.summary.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, names.Claim(tt.name, tt.owner), "Claim(%q, %q)", tt.name, tt.owner)
	}
}
