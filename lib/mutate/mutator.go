// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package mutate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hondana-project/hondana/lib/archive"
	"github.com/hondana-project/hondana/lib/content"
	"github.com/hondana-project/hondana/lib/handlecache"
)

// Mutator rewrites archives in place: deleting entries from an
// existing archive, or packing a loose chapter directory into one.
//
// Both operations reduce every failure to a boolean result. The
// failing step is visible only in the logs; callers get no error
// value to branch on. Administrative tooling drives these operations
// and reads the logs when something goes wrong.
type Mutator struct {
	baseDir string
	cache   *handlecache.Cache
	logger  *slog.Logger
}

// NewMutator creates a Mutator for the library rooted at baseDir,
// sharing the application's handle cache.
func NewMutator(baseDir string, cache *handlecache.Cache, logger *slog.Logger) *Mutator {
	return &Mutator{baseDir: baseDir, cache: cache, logger: logger}
}

// DeleteEntries removes the named entries (archive-relative slash
// paths) from the archive at archivePath, rewriting it in place.
// Reports whether the archive was rewritten.
//
// The pipeline: validate, take the cache's mutation lock for the
// path, extract everything to a fresh temp directory, delete the
// requested entries, recompress the remainder preserving relative
// paths, and swap the new archive over the original behind a
// digest-verified backup copy. Entries not present are logged and
// skipped; if nothing was removed the archive is left untouched and
// the call fails. The temp directory is removed on every path.
//
// If the swap fails after the backup exists, the original is restored
// from the backup. Only if that restore also fails is the backup left
// on disk for manual recovery.
func (m *Mutator) DeleteEntries(archivePath string, entries []string) bool {
	if !archive.IsArchivePath(archivePath) {
		m.logger.Error("refusing to mutate unsupported archive format",
			"path", archivePath,
		)
		return false
	}
	if info, err := os.Stat(archivePath); err != nil || !info.Mode().IsRegular() {
		m.logger.Error("archive to mutate does not exist",
			"path", archivePath,
			"error", err,
		)
		return false
	}

	// No reader may cache a handle against the old file contents while
	// the rewrite is in flight. The lock also invalidates any handle
	// cached before this call.
	release := m.cache.BeginMutation(archivePath)
	defer release()

	tempDir, err := os.MkdirTemp("", "hondana-mutate-*")
	if err != nil {
		m.logger.Error("failed to create extraction directory",
			"path", archivePath,
			"error", err,
		)
		return false
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			m.logger.Warn("failed to remove extraction directory",
				"temp_dir", tempDir,
				"error", err,
			)
		}
	}()

	if err := archive.ExtractAll(archivePath, tempDir); err != nil {
		m.logger.Error("failed to extract archive for mutation",
			"path", archivePath,
			"error", err,
		)
		return false
	}

	removed := 0
	for _, entry := range entries {
		local := filepath.FromSlash(entry)
		if !filepath.IsLocal(local) {
			m.logger.Warn("skipping entry that escapes the archive root",
				"path", archivePath,
				"entry", entry,
			)
			continue
		}
		target := filepath.Join(tempDir, local)
		if err := os.Remove(target); err != nil {
			m.logger.Warn("entry to delete not found in archive",
				"path", archivePath,
				"entry", entry,
			)
			continue
		}
		removed++
	}
	if removed == 0 {
		// Rewriting an unchanged archive would churn the file for
		// nothing and mask caller mistakes.
		m.logger.Error("no entries removed, archive left unchanged",
			"path", archivePath,
			"requested", len(entries),
		)
		return false
	}

	if !m.swap(archivePath, tempDir) {
		return false
	}

	m.logger.Info("deleted archive entries",
		"path", archivePath,
		"removed", removed,
	)
	return true
}

// swap replaces the archive at archivePath with a recompression of
// tempDir's contents, guarded by a verified backup copy.
func (m *Mutator) swap(archivePath, tempDir string) bool {
	backupPath := archivePath + ".bak"
	if _, err := archive.CopyVerified(archivePath, backupPath); err != nil {
		m.logger.Error("failed to back up archive before rewrite",
			"path", archivePath,
			"backup", backupPath,
			"error", err,
		)
		return false
	}

	if err := writeArchiveFile(archivePath, tempDir, nil); err != nil {
		m.logger.Error("failed to rewrite archive, restoring from backup",
			"path", archivePath,
			"error", err,
		)
		if restoreErr := os.Rename(backupPath, archivePath); restoreErr != nil {
			m.logger.Error("failed to restore archive from backup, backup left on disk",
				"path", archivePath,
				"backup", backupPath,
				"error", restoreErr,
			)
		}
		return false
	}

	if err := os.Remove(backupPath); err != nil {
		m.logger.Warn("failed to remove backup after successful rewrite",
			"backup", backupPath,
			"error", err,
		)
	}
	return true
}

// writeArchiveFile recompresses rootDir into a new archive file at
// path, truncating any existing file.
func writeArchiveFile(path, rootDir string, include func(string) bool) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := archive.WriteFromDir(file, rootDir, include); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// CompressDirectory packs the image files of the chapter directory at
// the library-root-relative path into a sibling .cbz archive and
// removes the directory. Reports whether the archive was created.
//
// The archive is built as a hidden temp file in the same directory and
// renamed into place, so a failed build never leaves a partial archive
// at the final path. A directory with no image files fails without
// creating anything.
func (m *Mutator) CompressDirectory(relativePath string) bool {
	if !filepath.IsLocal(filepath.FromSlash(relativePath)) {
		m.logger.Error("refusing to compress path outside the library root",
			"relative_path", relativePath,
		)
		return false
	}
	dirPath := filepath.Join(m.baseDir, filepath.FromSlash(relativePath))
	if info, err := os.Stat(dirPath); err != nil || !info.IsDir() {
		m.logger.Error("directory to compress does not exist",
			"path", dirPath,
			"error", err,
		)
		return false
	}

	archivePath := dirPath + ".cbz"
	if _, err := os.Stat(archivePath); err == nil {
		m.logger.Error("archive already exists, refusing to overwrite",
			"path", archivePath,
		)
		return false
	}

	tempFile, err := os.CreateTemp(filepath.Dir(dirPath), ".hondana-pack-*")
	if err != nil {
		m.logger.Error("failed to create archive temp file",
			"path", archivePath,
			"error", err,
		)
		return false
	}
	tempPath := tempFile.Name()

	count, err := archive.WriteFromDir(tempFile, dirPath, content.IsImagePath)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err == nil && count == 0 {
		err = fmt.Errorf("no image files under %s", dirPath)
	}
	if err != nil {
		m.logger.Error("failed to build archive from directory",
			"path", dirPath,
			"error", err,
		)
		os.Remove(tempPath)
		return false
	}

	if err := os.Rename(tempPath, archivePath); err != nil {
		m.logger.Error("failed to move archive into place",
			"path", archivePath,
			"error", err,
		)
		os.Remove(tempPath)
		return false
	}

	if err := os.RemoveAll(dirPath); err != nil {
		m.logger.Error("archive created but source directory could not be removed",
			"path", dirPath,
			"archive", archivePath,
			"error", err,
		)
		return false
	}

	m.logger.Info("compressed directory into archive",
		"path", archivePath,
		"entries", count,
	)
	return true
}
