// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hondana-project/hondana/lib/address"
	"github.com/hondana-project/hondana/lib/archive"
)

// ErrNotFound is returned when an address resolves to neither a
// direct file nor a backing archive. The HTTP layer maps it to 404.
var ErrNotFound = errors.New("content: not found")

// LocationKind discriminates the two storage forms a resolved address
// can take.
type LocationKind int

const (
	// Direct means the address maps to a loose file on disk.
	Direct LocationKind = iota

	// ArchiveEntry means the address maps to an entry inside a
	// CBZ/ZIP archive.
	ArchiveEntry
)

// ResolvedLocation is the storage-level form of a content address.
// Produced by Resolver.Resolve, consumed once per request, never
// persisted.
type ResolvedLocation struct {
	Kind LocationKind

	// Path is the filesystem path: the file itself for Direct, the
	// archive file for ArchiveEntry.
	Path string

	// Entry is the leaf name to locate inside the archive (by suffix
	// match). Empty for Direct.
	Entry string
}

// Resolver maps virtual content addresses to concrete storage
// locations under a library root directory.
type Resolver struct {
	// BaseDir is the library root. Each title is a directory directly
	// below it.
	BaseDir string
}

// Resolve maps an address to storage. The full path
// baseDir/title/relativePath is probed as a regular file first; when
// that misses, the leaf is split off and the parent path is probed
// with each supported archive extension in order — the chapter
// directory name becomes the archive stem ("ch01/1.webp" is looked
// for in "ch01.cbz", then "ch01.zip"). Neither form existing is
// ErrNotFound.
func (r *Resolver) Resolve(addr address.ContentAddress) (ResolvedLocation, error) {
	fullPath := filepath.Join(r.BaseDir, addr.Title, filepath.FromSlash(addr.RelativePath))

	// Addresses are request input: one that climbs out of the library
	// root must never resolve.
	if !filepath.IsLocal(filepath.Join(addr.Title, filepath.FromSlash(addr.RelativePath))) {
		return ResolvedLocation{}, fmt.Errorf("%w: address escapes the library root", ErrNotFound)
	}

	if info, err := os.Stat(fullPath); err == nil && info.Mode().IsRegular() {
		return ResolvedLocation{Kind: Direct, Path: fullPath}, nil
	}

	parentDir := filepath.Dir(fullPath)
	leaf := filepath.Base(fullPath)
	for _, extension := range archive.SupportedExtensions {
		archivePath := parentDir + extension
		if info, err := os.Stat(archivePath); err == nil && info.Mode().IsRegular() {
			return ResolvedLocation{Kind: ArchiveEntry, Path: archivePath, Entry: leaf}, nil
		}
	}

	return ResolvedLocation{}, fmt.Errorf("%w: %s", ErrNotFound, addr)
}

// ResolveContainer locates the storage backing a chapter-level path
// (a directory of images or an archive). Returns the directory path
// and true when relPath is a real directory; otherwise probes for a
// backing archive by extension, returning its path and false. When
// neither exists, ErrNotFound.
func (r *Resolver) ResolveContainer(relPath string) (path string, isDir bool, err error) {
	if !filepath.IsLocal(filepath.FromSlash(relPath)) {
		return "", false, fmt.Errorf("%w: path escapes the library root", ErrNotFound)
	}
	fullPath := filepath.Join(r.BaseDir, filepath.FromSlash(relPath))

	if info, statErr := os.Stat(fullPath); statErr == nil && info.IsDir() {
		return fullPath, true, nil
	}
	for _, extension := range archive.SupportedExtensions {
		archivePath := fullPath + extension
		if info, statErr := os.Stat(archivePath); statErr == nil && info.Mode().IsRegular() {
			return archivePath, false, nil
		}
	}
	return "", false, fmt.Errorf("%w: %s", ErrNotFound, relPath)
}
