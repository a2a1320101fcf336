package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFileAt(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestPollFiles_OnlyReturnsFilesNewerThanCursor(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Truncate(time.Second)

	writeFileAt(t, dir, "a.jpg", base)
	writeFileAt(t, dir, "b.jpg", base.Add(2*time.Second))
	writeFileAt(t, dir, "c.png", base.Add(4*time.Second))

	cursor := float64(base.Unix())
	files, err := pollFiles(dir, cursor)
	require.NoError(t, err)
	require.Len(t, files, 2, "a.jpg is mtime-equal to the cursor and must not be re-emitted")

	names := []string{filepath.Base(files[0].path), filepath.Base(files[1].path)}
	require.Equal(t, []string{"b.jpg", "c.png"}, names)
}

func TestPollFiles_ReplayWithUnchangedMtimesYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Truncate(time.Second)
	writeFileAt(t, dir, "a.jpg", base)

	first, err := pollFiles(dir, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	cursor := first[0].mtime
	second, err := pollFiles(dir, cursor)
	require.NoError(t, err)
	require.Empty(t, second, "re-polling with the advanced cursor must produce zero new files")
}

func TestPollFiles_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	files, err := pollFiles(dir, 0)
	require.NoError(t, err)
	require.Empty(t, files)
}
