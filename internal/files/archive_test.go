package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/internal/config"
)

func newTestArchive(t *testing.T, keep int) *Archive {
	t.Helper()
	paths := &config.Paths{UploadsDir: t.TempDir()}
	return NewArchive(paths, keep, nil)
}

func TestArchive_SaveAndList(t *testing.T) {
	archive := newTestArchive(t, 0)

	first, err := archive.Save("11112222-3333", "posts.xlsx", []byte("first"))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := archive.Save("11112222-3333", "march.xls", []byte("second"))
	require.NoError(t, err)

	assert.Contains(t, first, "11112222")
	assert.Contains(t, first, "posts.xlsx")

	entries, err := archive.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].Name, "newest entry first")
	assert.Equal(t, first, entries[1].Name)
	assert.Equal(t, int64(len("second")), entries[0].Size)

	data, err := os.ReadFile(filepath.Join(archive.dir, first))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestArchive_Save_PrunesBeyondKeep(t *testing.T) {
	archive := newTestArchive(t, 2)

	var names []string
	for _, payload := range []string{"one", "two", "three"} {
		name, err := archive.Save("session-"+payload, payload+".xlsx", []byte(payload))
		require.NoError(t, err)
		names = append(names, name)
		time.Sleep(10 * time.Millisecond)
	}

	entries, err := archive.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, names[2], entries[0].Name)
	assert.Equal(t, names[1], entries[1].Name)

	_, err = os.Stat(filepath.Join(archive.dir, names[0]))
	assert.True(t, os.IsNotExist(err), "oldest entry should be pruned")
}

func TestArchive_List_MissingDir(t *testing.T) {
	paths := &config.Paths{UploadsDir: filepath.Join(t.TempDir(), "never-created")}
	archive := NewArchive(paths, 0, nil)

	entries, err := archive.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArchive_List_SkipsTempFiles(t *testing.T) {
	archive := newTestArchive(t, 0)

	_, err := archive.Save("sess", "posts.xlsx", []byte("data"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(archive.dir, ".upload-123"), []byte("partial"), 0o644))

	entries, err := archive.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestArchive_Open(t *testing.T) {
	archive := newTestArchive(t, 0)
	name, err := archive.Save("sess", "posts.xlsx", []byte("data"))
	require.NoError(t, err)

	t.Run("valid name", func(t *testing.T) {
		f, err := archive.Open(name)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	})

	for _, bad := range []string{"", "../escape.xlsx", "/etc/passwd", ".upload-1", "a/b.xlsx"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := archive.Open(bad)
			assert.Error(t, err)
		})
	}
}

func TestArchiveName(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		sessionID  string
		sourceName string
		want       string
	}{
		{
			name:       "long session truncated",
			sessionID:  "0123456789abcdef",
			sourceName: "posts.xlsx",
			want:       "20260314T093000Z_01234567_posts.xlsx",
		},
		{
			name:       "empty session",
			sessionID:  "",
			sourceName: "posts.xlsx",
			want:       "20260314T093000Z_nosession_posts.xlsx",
		},
		{
			name:       "path stripped from source",
			sessionID:  "abc",
			sourceName: `C:\exports\march report.xlsx`,
			want:       "20260314T093000Z_abc_march report.xlsx",
		},
		{
			name:       "hostile source falls back",
			sessionID:  "abc",
			sourceName: "../..",
			want:       "20260314T093000Z_abc_workbook.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, archiveName(tt.sessionID, tt.sourceName, now))
		})
	}
}
