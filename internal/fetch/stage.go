package fetch

import (
	"errors"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/handiism/quilt-installer/internal/model"
)

// stagedFile is a hidden temporary file in the destination's directory.
// Keeping it on the same filesystem makes promote an atomic rename.
type stagedFile struct {
	file *os.File
	path string

	// created lists the directories made for the file, deepest first.
	created []string
}

func newStagedFile(dest string) (*stagedFile, error) {
	dir := filepath.Dir(dest)
	created, err := mkdirs(dir)
	if err != nil {
		return nil, &model.FilesystemError{Op: "create directory", Path: dir, Err: err}
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		removeDirs(created)
		return nil, &model.FilesystemError{Op: "create staging file", Path: dir, Err: err}
	}
	return &stagedFile{file: file, path: file.Name(), created: created}, nil
}

// mkdirs creates dir and its missing parents, returning the ones it made.
func mkdirs(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; {
		if _, err := os.Stat(d); !errors.Is(err, os.ErrNotExist) {
			break
		}
		missing = append(missing, d)
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return missing, nil
}

// removeDirs removes dirs in order, stopping at the first one that is not
// empty. Another fetch may be using it.
func removeDirs(dirs []string) {
	for _, d := range dirs {
		if err := os.Remove(d); err != nil {
			return
		}
	}
}

// copyFrom streams r into the staged file, hashing on the way when a
// checksum is expected. Write failures come back as *model.FilesystemError;
// read failures are returned unchanged so the caller can retry them.
func (s *stagedFile) copyFrom(r io.Reader, sum *model.Checksum) (int64, []byte, error) {
	var h hash.Hash
	var w io.Writer = &fsWriter{file: s.file, path: s.path}
	if sum != nil {
		var err error
		if h, err = sum.Algorithm.New(); err != nil {
			return 0, nil, err
		}
		w = io.MultiWriter(w, h)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		return n, nil, err
	}
	if err := s.file.Sync(); err != nil {
		return n, nil, &model.FilesystemError{Op: "sync", Path: s.path, Err: err}
	}
	if err := s.file.Close(); err != nil {
		return n, nil, &model.FilesystemError{Op: "close", Path: s.path, Err: err}
	}

	if h == nil {
		return n, nil, nil
	}
	return n, h.Sum(nil), nil
}

func (s *stagedFile) promote(dest string) error {
	if err := os.Chmod(s.path, 0o644); err != nil {
		return &model.FilesystemError{Op: "chmod", Path: s.path, Err: err}
	}
	if err := os.Rename(s.path, dest); err != nil {
		return &model.FilesystemError{Op: "rename", Path: dest, Err: err}
	}
	return nil
}

// discard closes and removes the staged file along with the directories
// created for it.
func (s *stagedFile) discard() error {
	_ = s.file.Close()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &model.FilesystemError{Op: "remove staging file", Path: s.path, Err: err}
	}
	removeDirs(s.created)
	return nil
}

type fsWriter struct {
	file *os.File
	path string
}

func (w *fsWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	if err != nil {
		return n, &model.FilesystemError{Op: "write", Path: w.path, Err: err}
	}
	return n, nil
}

func hashFile(path string, algo model.HashAlgorithm) ([]byte, error) {
	h, err := algo.New()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
