// Package pathenc turns command line arguments into UTF-8 paths and checks
// that a source and destination pair do not overlap.
package pathenc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// ErrOverlap is returned when the destination is the source or lies inside it.
var ErrOverlap = errors.New("source and destination overlap")

// Decoder converts arguments from a fixed charset to UTF-8.
// The zero value passes arguments through unchanged.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// NewDecoder looks charset up in the IANA registry. An empty charset, or any
// UTF-8 label, yields a pass-through decoder.
func NewDecoder(charset string) (*Decoder, error) {
	if charset == "" {
		return &Decoder{}, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("argument encoding '%s': %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("argument encoding '%s' is not supported", charset)
	}
	if name, _ := ianaindex.IANA.Name(enc); enc == unicode.UTF8 || name == "UTF-8" {
		return &Decoder{name: charset}, nil
	}
	return &Decoder{name: charset, enc: enc}, nil
}

// Decode converts arg to UTF-8 in NFC form. Pass-through decoders return arg
// as given so that names already on disk keep their exact bytes.
func (d *Decoder) Decode(arg string) (string, error) {
	if d == nil || d.enc == nil {
		return arg, nil
	}
	s, err := d.enc.NewDecoder().String(arg)
	if err != nil {
		return "", fmt.Errorf("decoding argument from %s: %w", d.name, err)
	}
	return norm.NFC.String(s), nil
}

// CheckOverlap fails with ErrOverlap when dest equals source or is nested
// inside it, after resolving symlinks along the existing part of each path.
// A source nested inside dest is allowed.
func CheckOverlap(source, dest string) error {
	realSource, err := resolveExistingPath(filepath.Clean(source))
	if err != nil {
		return fmt.Errorf("resolving source path: %w", err)
	}
	realDest, err := resolveExistingPath(filepath.Clean(dest))
	if err != nil {
		return fmt.Errorf("resolving destination path: %w", err)
	}

	if realDest == realSource {
		return fmt.Errorf("%w: '%s' and '%s' are the same directory", ErrOverlap, source, dest)
	}
	// Trailing separator keeps "src2" from matching "src".
	prefix := realSource
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if strings.HasPrefix(realDest, prefix) {
		return fmt.Errorf("%w: destination '%s' is inside source '%s'", ErrOverlap, dest, source)
	}
	return nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of the path,
// then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, filepath.Base(path)), nil
}
