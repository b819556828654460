// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
)

// WriteFromDir builds a ZIP archive from the contents of rootDir and
// writes it to w. Entry names are the slash-separated paths of each
// file relative to rootDir, so an archive extracted with ExtractAll
// and rewritten with WriteFromDir preserves its internal layout.
//
// include, if non-nil, filters files by their relative slash path;
// files for which it returns false are skipped. Directories are never
// written as entries — ZIP directory markers carry no content and the
// indexer ignores them anyway.
//
// Returns the number of entries written.
func WriteFromDir(w io.Writer, rootDir string, include func(relPath string) bool) (int, error) {
	var relPaths []string
	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if include != nil && !include(relPath) {
			return nil
		}
		relPaths = append(relPaths, relPath)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking %s: %w", rootDir, err)
	}

	// Deterministic entry order regardless of directory read order.
	sort.Strings(relPaths)

	writer := zip.NewWriter(w)
	for _, relPath := range relPaths {
		if err := writeOne(writer, rootDir, relPath); err != nil {
			writer.Close()
			return 0, err
		}
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	return len(relPaths), nil
}

func writeOne(writer *zip.Writer, rootDir, relPath string) error {
	source, err := os.Open(filepath.Join(rootDir, filepath.FromSlash(relPath)))
	if err != nil {
		return fmt.Errorf("opening %s: %w", relPath, err)
	}
	defer source.Close()

	// Deflate for everything. Page images are already compressed and
	// barely shrink, but Store would change the archive's character
	// relative to what readers produce, and the CPU cost is small.
	entry, err := writer.CreateHeader(&zip.FileHeader{
		Name:   relPath,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", relPath, err)
	}
	if _, err := io.Copy(entry, source); err != nil {
		return fmt.Errorf("writing entry %s: %w", relPath, err)
	}
	return nil
}
