// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ExtractAll extracts every entry of the archive at archivePath into
// destDir, preserving relative paths. destDir must already exist.
//
// Entry names are validated before use: an entry whose cleaned path
// would escape destDir (absolute, or containing "..") aborts the
// extraction. Archives are user-supplied input; a crafted entry name
// must not be able to write outside the extraction directory.
func ExtractAll(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractOne(file, destDir); err != nil {
			return fmt.Errorf("extracting %q from %s: %w", file.Name, archivePath, err)
		}
	}
	return nil
}

func extractOne(file *zip.File, destDir string) error {
	target, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	source, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening entry: %w", err)
	}
	defer source.Close()

	destination, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	return destination.Close()
}

// safeJoin joins an archive entry name onto base, rejecting names
// that would resolve outside base (zip-slip).
func safeJoin(base, entryName string) (string, error) {
	if filepath.IsAbs(entryName) {
		return "", fmt.Errorf("entry name %q is absolute", entryName)
	}
	cleaned := filepath.Clean(filepath.FromSlash(entryName))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry name %q escapes the extraction directory", entryName)
	}
	return filepath.Join(base, cleaned), nil
}
