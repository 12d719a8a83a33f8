// Package archive is the content-addressed store that FromArchive files are
// extracted from and ingested files are backed up into.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/hashing"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// ExtractRequest asks for the content of Hash to be written at Destination.
type ExtractRequest struct {
	Hash        hashing.Hash
	Destination string
}

// BackupRequest asks for the file at Source to be stored under Hash.
type BackupRequest struct {
	Hash   hashing.Hash
	Source string
}

// Store is the archive store contract the synchronizer consumes.
type Store interface {
	// ExtractFiles writes every requested blob in one call. It accepts an
	// empty batch.
	ExtractFiles(ctx context.Context, reqs []ExtractRequest) error
	Has(ctx context.Context, h hashing.Hash) (bool, error)
	Open(ctx context.Context, h hashing.Hash) (io.ReadCloser, error)
	// Backup stores the given files, skipping hashes already present.
	Backup(ctx context.Context, reqs []BackupRequest) error
}

// FileStore keeps one blob per hash under root on a filesystem. Blobs live at
// <root>/<first two hex digits>/<hash>.blob. Destinations and sources are
// paths on the same filesystem as the blobs.
type FileStore struct {
	fs   afero.Fs
	root string
	log  zerolog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at root.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root, log: logging.GetLogger("archive")}
}

func (s *FileStore) blobPath(h hashing.Hash) string {
	hex := h.String()
	return filepath.Join(s.root, hex[:2], hex+".blob")
}

// Has implements Store.
func (s *FileStore) Has(_ context.Context, h hashing.Hash) (bool, error) {
	_, err := s.fs.Stat(s.blobPath(h))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrFileRead, "stat blob %s", h)
}

// Open implements Store.
func (s *FileStore) Open(_ context.Context, h hashing.Hash) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.blobPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrArchiveMissing, "no archived content for hash %s", h)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "open blob %s", h)
	}
	return f, nil
}

// Put stores r under its own hash and returns it.
func (s *FileStore) Put(ctx context.Context, r io.Reader) (hashing.Hash, error) {
	if err := s.fs.MkdirAll(s.root, 0755); err != nil {
		return 0, errors.Wrapf(err, errors.ErrDirCreate, "create archive root %s", s.root)
	}
	tmp, err := afero.TempFile(s.fs, s.root, ".put-*")
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrFileWrite, "create temp blob")
	}
	w := hashing.NewWriter(tmp)
	_, copyErr := io.Copy(w, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(tmp.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return 0, errors.Wrap(copyErr, errors.ErrFileWrite, "write blob")
	}
	h := w.Sum()
	if err := s.commit(tmp.Name(), h); err != nil {
		return 0, err
	}
	return h, ctx.Err()
}

// commit moves a finished temp file into place, dropping it if the blob
// already exists.
func (s *FileStore) commit(tmp string, h hashing.Hash) error {
	dst := s.blobPath(h)
	if _, err := s.fs.Stat(dst); err == nil {
		_ = s.fs.Remove(tmp)
		return nil
	}
	if err := s.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "create blob dir for %s", h)
	}
	if err := s.fs.Rename(tmp, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "commit blob %s", h)
	}
	return nil
}

// ExtractFiles implements Store. Requests are grouped by hash so each blob is
// opened once regardless of how many destinations share it.
func (s *FileStore) ExtractFiles(ctx context.Context, reqs []ExtractRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	byHash := make(map[hashing.Hash][]string)
	for _, r := range reqs {
		byHash[r.Hash] = append(byHash[r.Hash], r.Destination)
	}
	hashes := make([]hashing.Hash, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	s.log.Debug().Int("requests", len(reqs)).Int("blobs", len(hashes)).Msg("Extracting files")
	for _, h := range hashes {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "extraction cancelled")
		}
		if err := s.extractOne(h, byHash[h]); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) extractOne(h hashing.Hash, dests []string) error {
	src, err := s.fs.Open(s.blobPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrArchiveMissing, "no archived content for hash %s", h)
		}
		return errors.Wrapf(err, errors.ErrExtract, "open blob %s", h)
	}
	defer func() { _ = src.Close() }()

	for _, dst := range dests {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return errors.Wrapf(err, errors.ErrExtract, "rewind blob %s", h)
		}
		if err := WriteFileAtomic(s.fs, dst, src); err != nil {
			return errors.Wrapf(err, errors.ErrExtract, "extract %s to %s", h, dst)
		}
		s.log.Trace().Str("hash", h.String()).Str("dest", dst).Msg("Extracted file")
	}
	return nil
}

// Backup implements Store.
func (s *FileStore) Backup(ctx context.Context, reqs []BackupRequest) error {
	stored := 0
	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "backup cancelled")
		}
		present, err := s.Has(ctx, r.Hash)
		if err != nil {
			return err
		}
		if present {
			continue
		}
		f, err := s.fs.Open(r.Source)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "open %s for backup", r.Source)
		}
		h, err := s.Put(ctx, f)
		_ = f.Close()
		if err != nil {
			return err
		}
		if h != r.Hash {
			return errors.Newf(errors.ErrStaleState, "%s changed during backup: expected %s, got %s", r.Source, r.Hash, h).
				WithDetail("path", r.Source)
		}
		stored++
	}
	if len(reqs) > 0 {
		s.log.Debug().Int("requested", len(reqs)).Int("stored", stored).Msg("Backed up files")
	}
	return nil
}

// WriteFileAtomic writes r to dst through a temp file in the same
// directory, creating parents as needed.
func WriteFileAtomic(fs afero.Fs, dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "create %s", dir)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "create temp for %s", dst)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrFileWrite, "write %s", dst)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrFileWrite, "close %s", dst)
	}
	if err := fs.Rename(tmp.Name(), dst); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrFileWrite, "rename into %s", dst)
	}
	return nil
}
