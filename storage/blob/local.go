// Package blob stores uploaded files on the local filesystem, one directory
// per upload surface.
package blob

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
)

type LocalStore struct {
	root string
}

var _ core.FileStore = (*LocalStore)(nil) // interface compliance check

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload root")
	}
	return &LocalStore{root: root}, nil
}

// Save streams the upload to a temp file, sniffs its real content type and
// enforces the surface's rule before moving it into place. The declared
// content type of the request is never trusted.
func (s *LocalStore) Save(ctx context.Context, surface, filename string, r io.Reader) (core.FileInfo, error) {
	rule, ok := core.UploadRules[surface]
	if !ok {
		return core.FileInfo{}, core.NewValidationError(errors.New("unknown upload surface"),
			core.FieldError{Field: "file", Error: "unknown upload surface"})
	}

	dir := filepath.Join(s.root, surface)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.FileInfo{}, errors.Wrap(err, "creating surface directory")
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return core.FileInfo{}, errors.Wrap(err, "creating temp file")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	// read one byte past the limit to detect oversize uploads
	size, err := io.Copy(tmp, io.LimitReader(r, rule.MaxSize+1))
	if err != nil {
		return core.FileInfo{}, errors.Wrap(err, "writing upload")
	}
	mtype, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		return core.FileInfo{}, errors.Wrap(err, "detecting content type")
	}
	if err = rule.Check(mtype.String(), size); err != nil {
		return core.FileInfo{}, err
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = filepath.Ext(filename)
	}
	path := filepath.Join(surface, uuid.New().String()+ext)
	if err = tmp.Close(); err != nil {
		return core.FileInfo{}, errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), filepath.Join(s.root, path)); err != nil {
		return core.FileInfo{}, errors.Wrap(err, "storing upload")
	}
	return core.FileInfo{Path: path, ContentType: mtype.String(), Size: size}, nil
}

// resolve maps a stored path back under the root, refusing traversal.
func (s *LocalStore) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", core.NewNotFoundError("file not found")
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, core.FileInfo, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, core.FileInfo{}, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.FileInfo{}, core.NewNotFoundError("file not found")
		}
		return nil, core.FileInfo{}, errors.Wrap(err, "opening file")
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, core.FileInfo{}, errors.Wrap(err, "stating file")
	}
	mtype, err := mimetype.DetectFile(full)
	if err != nil {
		_ = f.Close()
		return nil, core.FileInfo{}, errors.Wrap(err, "detecting content type")
	}
	return f, core.FileInfo{Path: path, ContentType: mtype.String(), Size: stat.Size()}, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err = os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}
