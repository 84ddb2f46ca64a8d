package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	start = "<!-- OPENSPEC:START -->"
	end   = "<!-- OPENSPEC:END -->"
)

func TestUpdateFileWithMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing *string
		want     string
	}{
		{
			name: "new file",
			want: start + "\nbody\n" + end,
		},
		{
			name:     "file without markers is prepended",
			existing: ptr("# Notes\nkeep me\n"),
			want:     start + "\nbody\n" + end + "\n\n# Notes\nkeep me\n",
		},
		{
			name:     "existing block is replaced",
			existing: ptr("intro\n" + start + "\nold\n" + end + "\noutro\n"),
			want:     "intro\n" + start + "\nbody\n" + end + "\noutro\n",
		},
		{
			name:     "inline mentions are ignored",
			existing: ptr("Do not edit " + start + " by hand.\n" + start + "\nold\n" + end + "\n"),
			want:     "Do not edit " + start + " by hand.\n" + start + "\nbody\n" + end + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "CLAUDE.md")
			if tt.existing != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.existing), 0o644))
			}

			require.NoError(t, UpdateFileWithMarkers(path, "body", start, end))
			first, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(first))

			require.NoError(t, UpdateFileWithMarkers(path, "body", start, end))
			second, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))
		})
	}
}

func TestMergeMarkersInvalidState(t *testing.T) {
	t.Parallel()

	for _, existing := range []string{
		start + "\nno end\n",
		"no start\n" + end + "\n",
		end + "\nbackwards\n" + start + "\n",
	} {
		_, err := MergeMarkers(existing, "body", start, end)
		require.ErrorIs(t, err, ErrInvalidMarkers, existing)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "spec.md")
	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestMoveDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "changes", "add-x")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "proposal.md"), []byte("x"), 0o644))

	dst := filepath.Join(root, "changes", "archive", "2025-01-01-add-x")
	require.NoError(t, MoveDir(src, dst))
	assert.False(t, Exists(src))
	assert.True(t, IsDir(dst))
	assert.True(t, Exists(filepath.Join(dst, "proposal.md")))

	other := filepath.Join(root, "changes", "add-y")
	require.NoError(t, os.MkdirAll(other, 0o755))
	require.ErrorIs(t, MoveDir(other, dst), ErrDestinationExists)
	assert.True(t, IsDir(other))
}

func ptr(s string) *string { return &s }
