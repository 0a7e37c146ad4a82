// Package fsystest provides an afero filesystem with injectable failures for tests.
package fsystest

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/afero"
)

// ErrDenied is a permission failure carrying a real OS error code.
var ErrDenied = syscall.EACCES

// FaultFs wraps an afero.Fs and fails selected operations on selected paths.
// It also counts handles returned by Open that have not been closed yet.
type FaultFs struct {
	afero.Fs

	mu     sync.Mutex
	mkdir  map[string]error
	rename map[string]error
	open   map[string]error
	live   int
}

// New wraps base. A nil base means a fresh in-memory filesystem.
func New(base afero.Fs) *FaultFs {
	if base == nil {
		base = afero.NewMemMapFs()
	}
	return &FaultFs{
		Fs:     base,
		mkdir:  make(map[string]error),
		rename: make(map[string]error),
		open:   make(map[string]error),
	}
}

// FailMkdir makes creating path fail with err.
func (f *FaultFs) FailMkdir(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdir[filepath.Clean(path)] = err
}

// FailCopyTo makes every write landing on path fail with err.
func (f *FaultFs) FailCopyTo(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rename[filepath.Clean(path)] = err
}

// FailOpen makes opening path for reading fail with err.
func (f *FaultFs) FailOpen(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open[filepath.Clean(path)] = err
}

// OpenHandles reports handles returned by Open that are still open.
func (f *FaultFs) OpenHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

func (f *FaultFs) Mkdir(name string, perm os.FileMode) error {
	if err := f.lookup(f.mkdir, name); err != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return f.Fs.Mkdir(name, perm)
}

func (f *FaultFs) MkdirAll(path string, perm os.FileMode) error {
	if err := f.lookup(f.mkdir, path); err != nil {
		return &os.PathError{Op: "mkdir", Path: path, Err: err}
	}
	return f.Fs.MkdirAll(path, perm)
}

func (f *FaultFs) Rename(oldname, newname string) error {
	if err := f.lookup(f.rename, newname); err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *FaultFs) Open(name string) (afero.File, error) {
	if err := f.lookup(f.open, name); err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.live++
	f.mu.Unlock()
	return &trackedFile{File: file, owner: f}, nil
}

func (f *FaultFs) lookup(m map[string]error, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return m[filepath.Clean(path)]
}

type trackedFile struct {
	afero.File
	owner  *FaultFs
	closed bool
}

func (t *trackedFile) Close() error {
	if !t.closed {
		t.closed = true
		t.owner.mu.Lock()
		t.owner.live--
		t.owner.mu.Unlock()
	}
	return t.File.Close()
}
