// pkg/archive/archive_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test the content-addressed store: put, batched extract, backup

package archive_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/archive"
	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/hashing"
)

func TestPutOpen(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := archive.NewFileStore(fs, "/archive")

	h, err := s.Put(ctx, bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	assert.Equal(t, hashing.HashBytes([]byte("content")), h)

	ok, err := s.Has(ctx, h)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Open(ctx, h)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "content", string(data))

	// same content twice keeps one blob
	again, err := s.Put(ctx, bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	assert.Equal(t, h, again)

	_, err = s.Open(ctx, hashing.Hash(1))
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveMissing))
}

func TestExtractFiles(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := archive.NewFileStore(fs, "/archive")

	a, err := s.Put(ctx, bytes.NewReader([]byte("aaa")))
	require.NoError(t, err)
	b, err := s.Put(ctx, bytes.NewReader([]byte("bbb")))
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/game/existing.txt", []byte("old"), 0644))
	err = s.ExtractFiles(ctx, []archive.ExtractRequest{
		{Hash: a, Destination: "/game/one/a.txt"},
		{Hash: a, Destination: "/game/two/a-copy.txt"},
		{Hash: b, Destination: "/game/existing.txt"},
	})
	require.NoError(t, err)

	for path, want := range map[string]string{
		"/game/one/a.txt":      "aaa",
		"/game/two/a-copy.txt": "aaa",
		"/game/existing.txt":   "bbb",
	} {
		got, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), path)
	}

	require.NoError(t, s.ExtractFiles(ctx, nil))

	err = s.ExtractFiles(ctx, []archive.ExtractRequest{{Hash: 99, Destination: "/game/x"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveMissing))
}

func TestExtractCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := archive.NewFileStore(fs, "/archive")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.ExtractFiles(ctx, []archive.ExtractRequest{{Hash: 1, Destination: "/x"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
}

func TestBackup(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := archive.NewFileStore(fs, "/archive")
	require.NoError(t, afero.WriteFile(fs, "/game/save.sav", []byte("save"), 0644))

	h := hashing.HashBytes([]byte("save"))
	require.NoError(t, s.Backup(ctx, []archive.BackupRequest{{Hash: h, Source: "/game/save.sav"}}))
	ok, err := s.Has(ctx, h)
	require.NoError(t, err)
	assert.True(t, ok)

	// already stored: source need not exist any more
	require.NoError(t, fs.Remove("/game/save.sav"))
	require.NoError(t, s.Backup(ctx, []archive.BackupRequest{{Hash: h, Source: "/game/save.sav"}}))

	require.NoError(t, afero.WriteFile(fs, "/game/other.sav", []byte("changed"), 0644))
	err = s.Backup(ctx, []archive.BackupRequest{{Hash: 5, Source: "/game/other.sav"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrStaleState))
}

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, archive.WriteFileAtomic(fs, "/deep/dir/file.txt", bytes.NewReader([]byte("x"))))

	got, err := afero.ReadFile(fs, "/deep/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))

	entries, err := afero.ReadDir(fs, "/deep/dir")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
