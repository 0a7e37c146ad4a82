// Package fsys is the filesystem capability consumed by the mirror engine.
package fsys

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// readDirBatch bounds how many entries are pulled from a directory handle at a time.
const readDirBatch = 64

const dirPerm = 0o755

// DirEntry is one child of a directory, valid for a single iteration step.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FS abstracts the filesystem operations the mirror needs.
type FS interface {
	Exists(path string) bool
	IsDirectory(path string) bool
	// ListChildren lazily enumerates the direct children of dir in a single pass.
	// If dir cannot be opened or read, an *EnumerationError is yielded and the
	// sequence ends. The directory handle is released when the sequence ends or
	// the consumer stops early.
	ListChildren(dir string) iter.Seq2[DirEntry, error]
	ModTime(path string) (time.Time, error)
	CreateDirectory(dir string) error
	CopyFile(src, dst string, overwrite bool) error
	DescribeError(err error) string
}

// Afero implements FS on top of an afero.Fs.
type Afero struct {
	fs afero.Fs

	// PreserveModTime stamps copies with the source modification time.
	PreserveModTime bool
}

// New wraps an afero filesystem. Copies preserve the source modification time.
func New(fs afero.Fs) *Afero {
	return &Afero{fs: fs, PreserveModTime: true}
}

// NewOS returns an FS backed by the real operating system filesystem.
func NewOS() *Afero {
	return New(afero.NewOsFs())
}

// Fs returns the underlying afero filesystem.
func (a *Afero) Fs() afero.Fs {
	return a.fs
}

func (a *Afero) Exists(path string) bool {
	ok, err := afero.Exists(a.fs, path)
	return err == nil && ok
}

func (a *Afero) IsDirectory(path string) bool {
	ok, err := afero.IsDir(a.fs, path)
	return err == nil && ok
}

func (a *Afero) ListChildren(dir string) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		f, err := a.fs.Open(dir)
		if err != nil {
			yield(DirEntry{}, &EnumerationError{Path: dir, Err: err})
			return
		}
		defer f.Close()

		for {
			infos, err := f.Readdir(readDirBatch)
			for _, fi := range infos {
				name := fi.Name()
				if name == "." || name == ".." {
					continue
				}
				if !yield(DirEntry{Name: name, IsDir: fi.IsDir()}, nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(DirEntry{}, &EnumerationError{Path: dir, Err: err})
				}
				return
			}
			if len(infos) == 0 {
				return
			}
		}
	}
}

// ModTime opens path for reading and returns its last modification time.
// Directories fail with EISDIR.
func (a *Afero) ModTime(path string) (time.Time, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return time.Time{}, &MetadataError{Path: path, Err: err}
	}
	// A directory standing where a file is expected has no comparable timestamp.
	if info.IsDir() {
		return time.Time{}, &MetadataError{Path: path, Err: &fs.PathError{Op: "open", Path: path, Err: syscall.EISDIR}}
	}
	return info.ModTime(), nil
}

// CreateDirectory creates dir without creating missing parents.
// It is a no-op when dir already exists as a directory.
func (a *Afero) CreateDirectory(dir string) error {
	if a.IsDirectory(dir) {
		return nil
	}

	parent := filepath.Dir(dir)
	if parent != dir {
		if !a.Exists(parent) {
			return &DirectoryCreateError{Path: dir, Err: &fs.PathError{Op: "mkdir", Path: dir, Err: syscall.ENOENT}}
		}
		if !a.IsDirectory(parent) {
			return &DirectoryCreateError{Path: dir, Err: &fs.PathError{Op: "mkdir", Path: dir, Err: syscall.ENOTDIR}}
		}
	}

	if err := a.fs.Mkdir(dir, dirPerm); err != nil {
		return &DirectoryCreateError{Path: dir, Err: err}
	}
	return nil
}

// CopyFile copies src to dst. The content is staged in a temp file next to dst
// and renamed over it, so dst is either the old file or the complete copy.
func (a *Afero) CopyFile(src, dst string, overwrite bool) error {
	if err := a.copyFile(src, dst, overwrite); err != nil {
		return &CopyError{Source: src, Dest: dst, Err: err}
	}
	return nil
}

func (a *Afero) copyFile(src, dst string, overwrite bool) error {
	if !overwrite && a.Exists(dst) {
		return &fs.PathError{Op: "copy", Path: dst, Err: fs.ErrExist}
	}
	if a.IsDirectory(dst) {
		return &fs.PathError{Op: "copy", Path: dst, Err: syscall.EISDIR}
	}

	in, err := a.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: syscall.EISDIR}
	}

	tmp, err := afero.TempFile(a.fs, filepath.Dir(dst), ".dirmirror-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = a.fs.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := a.fs.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return err
	}
	if a.PreserveModTime {
		if err := a.fs.Chtimes(tmpPath, time.Now(), info.ModTime()); err != nil {
			return err
		}
	}

	if err := a.fs.Rename(tmpPath, dst); err != nil {
		return err
	}

	success = true
	return nil
}

func (a *Afero) DescribeError(err error) string {
	return DescribeError(err)
}
