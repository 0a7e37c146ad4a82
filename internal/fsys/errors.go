package fsys

import "fmt"

// EnumerationError reports a directory that could not be opened or read.
type EnumerationError struct {
	Path string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("listing %s: %s", e.Path, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// MetadataError reports a file whose modification time could not be read.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("reading metadata of %s: %s", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// DirectoryCreateError reports a directory that could not be created.
type DirectoryCreateError struct {
	Path string
	Err  error
}

func (e *DirectoryCreateError) Error() string {
	return fmt.Sprintf("creating directory %s: %s", e.Path, e.Err)
}

func (e *DirectoryCreateError) Unwrap() error {
	return e.Err
}

// CopyError reports a failed file copy. Err carries the underlying OS error.
type CopyError struct {
	Source string
	Dest   string
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copying %s to %s: %s", e.Source, e.Dest, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
