// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// CopyVerified copies the file at src to dst and verifies the copy by
// comparing BLAKE3 digests of what was read and what landed on disk.
// The mutation pipeline uses this for backup copies: a backup that
// does not byte-match the original is worse than no backup, because a
// later restore would silently corrupt the archive.
//
// Returns the hex digest of the copied content.
func CopyVerified(src, dst string) (string, error) {
	source, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}

	hasher := blake3.New()
	if _, err := io.Copy(io.MultiWriter(destination, hasher), source); err != nil {
		destination.Close()
		return "", fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := destination.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", dst, err)
	}
	sourceDigest := hex.EncodeToString(hasher.Sum(nil))

	copyDigest, err := HashFile(dst)
	if err != nil {
		return "", err
	}
	if copyDigest != sourceDigest {
		return "", fmt.Errorf("verifying copy %s: digest %s does not match source %s",
			dst, copyDigest, sourceDigest)
	}
	return sourceDigest, nil
}

// HashFile returns the hex-encoded BLAKE3 digest of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashBytes returns the hex-encoded BLAKE3 digest of data. The content
// responder uses this for ETag values.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
