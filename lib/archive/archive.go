// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// SupportedExtensions lists the archive extensions hondana recognizes,
// in probe order. Both are ZIP container formats; .cbz is the comic
// packaging convention.
var SupportedExtensions = []string{".cbz", ".zip"}

// ErrUnsupportedFormat is returned when a path does not carry a
// supported archive extension.
var ErrUnsupportedFormat = errors.New("archive: unsupported format")

// ErrEntryNotFound is returned when no entry in an archive matches a
// requested name.
var ErrEntryNotFound = errors.New("archive: entry not found")

// IsArchivePath reports whether the path carries a supported archive
// extension. Comparison is case-insensitive.
func IsArchivePath(path string) bool {
	extension := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if extension == supported {
			return true
		}
	}
	return false
}

// Handle owns an open reader for one archive file. Handles are created
// by Open and owned exclusively by the handle cache while cached; no
// other component may keep one past the scope of a single request.
type Handle struct {
	path   string
	reader *zip.ReadCloser
}

// Open opens an archive file for reading. The caller owns the returned
// Handle and must Close it.
func Open(path string) (*Handle, error) {
	if !IsArchivePath(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	return &Handle{path: path, reader: reader}, nil
}

// Path returns the filesystem path the handle was opened against.
func (h *Handle) Path() string { return h.path }

// Entries returns the names of all non-directory entries in the
// archive's internal enumeration order.
func (h *Handle) Entries() []string {
	names := make([]string, 0, len(h.reader.File))
	for _, file := range h.reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		names = append(names, file.Name)
	}
	return names
}

// FindEntry locates an archive entry by suffix match: the first
// non-directory entry (in the archive's internal enumeration order)
// whose name ends with leaf. Suffix matching tolerates archives that
// nest pages under a subfolder — a request for "001.webp" matches
// "ch01/001.webp". When several entries share the suffix, the first
// match wins; that ambiguity is a documented property of the scheme,
// not an accident.
//
// Returns ErrEntryNotFound when nothing matches.
func (h *Handle) FindEntry(leaf string) (*zip.File, error) {
	for _, file := range h.reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(file.Name, leaf) {
			return file, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrEntryNotFound, leaf, h.path)
}

// ReadEntry extracts the bytes of the first entry matching leaf (see
// FindEntry for the matching rule).
func (h *Handle) ReadEntry(leaf string) ([]byte, error) {
	file, err := h.FindEntry(leaf)
	if err != nil {
		return nil, err
	}
	reader, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %q in %s: %w", file.Name, h.path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading entry %q in %s: %w", file.Name, h.path, err)
	}
	return data, nil
}

// Close releases the underlying file handle. The Handle must not be
// used after Close.
func (h *Handle) Close() error {
	return h.reader.Close()
}
