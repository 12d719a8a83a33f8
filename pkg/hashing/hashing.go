// Package hashing computes the content hashes modsync uses to fingerprint
// files: 64-bit xxHash, rendered as 16 lower-case hex digits.
package hashing

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// Hash is an xxHash64 content hash.
type Hash uint64

// String renders h as 16 hex digits.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash reads the String form.
func ParseHash(s string) (Hash, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrInvalidInput, "invalid hash %q", s)
	}
	return Hash(v), nil
}

// HashBytes hashes an in-memory buffer.
func HashBytes(b []byte) Hash {
	return Hash(xxhash.Sum64(b))
}

// HashReader consumes r and returns its hash and length.
func HashReader(r io.Reader) (Hash, int64, error) {
	d := xxhash.New()
	n, err := io.Copy(d, r)
	if err != nil {
		return 0, n, err
	}
	return Hash(d.Sum64()), n, nil
}

// HashFile hashes the file at path on fs.
func HashFile(fs afero.Fs, path string) (Hash, int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, errors.ErrFileRead, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	h, n, err := HashReader(f)
	if err != nil {
		return 0, 0, errors.Wrapf(err, errors.ErrFileRead, "hash %s", path)
	}
	return h, n, nil
}

// Writer hashes everything written through it while forwarding to an
// optional destination.
type Writer struct {
	d   *xxhash.Digest
	dst io.Writer
	n   int64
}

// NewWriter returns a Writer forwarding to dst; dst may be nil.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{d: xxhash.New(), dst: dst}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.dst != nil {
		n, err := w.dst.Write(p)
		_, _ = w.d.Write(p[:n])
		w.n += int64(n)
		return n, err
	}
	_, _ = w.d.Write(p)
	w.n += int64(len(p))
	return len(p), nil
}

// Sum returns the hash of the bytes written so far.
func (w *Writer) Sum() Hash { return Hash(w.d.Sum64()) }

// Size returns the number of bytes written so far.
func (w *Writer) Size() int64 { return w.n }
