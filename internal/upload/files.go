package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store owns the temporary on-disk lifetime of uploaded documents. The
// directory is an explicit value, created on first use, never a
// process-global.
type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger

	mkdir sync.Once
	err   error
}

// NewStore builds an upload store rooted at dir. maxBytes caps accepted
// uploads; zero means no cap.
func NewStore(dir string, maxBytes int64, logger zerolog.Logger) *Store {
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "uploads").Logger(),
	}
}

// Saved is a document written to the upload directory. Cleanup deletes it
// exactly once; extra calls are no-ops, so callers may defer it and also
// invoke it early on error paths.
type Saved struct {
	Path         string
	OriginalName string
	Size         int64

	once   sync.Once
	logger zerolog.Logger
}

// Save copies the multipart upload into the store under a fresh name,
// preserving only the original extension.
func (s *Store) Save(fh *multipart.FileHeader) (*Saved, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, fmt.Errorf("file %q exceeds the %d byte upload limit", fh.Filename, s.maxBytes)
	}

	s.mkdir.Do(func() {
		s.err = os.MkdirAll(s.dir, 0o750)
	})
	if s.err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", s.dir, s.err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("statement-%s%s", uuid.NewString(), filepath.Ext(fh.Filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	return &Saved{
		Path:         path,
		OriginalName: fh.Filename,
		Size:         n,
		logger:       s.logger,
	}, nil
}

// Cleanup removes the saved document. Failures are logged, not returned:
// nothing downstream of a finished run can act on them.
func (f *Saved) Cleanup() {
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			f.logger.Error().Err(err).Str("path", f.Path).Msg("failed to delete temp upload")
		}
	})
}
