// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/hondana-project/hondana/lib/address"
	"github.com/hondana-project/hondana/lib/handlecache"
)

// Indexer lists the page images of a chapter, whether stored as a
// loose directory or inside an archive. Listings are recomputed per
// call; the indexer keeps no state between calls.
type Indexer struct {
	resolver *Resolver
	cache    *handlecache.Cache
}

// NewIndexer creates an Indexer sharing the application's resolver
// and handle cache.
func NewIndexer(resolver *Resolver, cache *handlecache.Cache) *Indexer {
	return &Indexer{resolver: resolver, cache: cache}
}

// ListImages returns the virtual addresses of every page image under
// the library-root-relative path ("<title>/<chapter>"), sorted
// lexicographically. For archive-backed chapters, sorting is by entry
// basename and directory-marker entries are excluded.
//
// A chapter with neither a directory nor an archive yields an empty
// slice, not an error — "no images" is a valid terminal state for
// callers.
func (x *Indexer) ListImages(relPath string) ([]string, error) {
	containerPath, isDir, err := x.resolver.ResolveContainer(relPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	chapter := address.Split(relPath)

	if isDir {
		return x.listDirectory(containerPath, chapter)
	}
	return x.listArchive(containerPath, chapter)
}

func (x *Indexer) listDirectory(dirPath string, chapter address.ContentAddress) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dirPath, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImagePath(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return toAddresses(chapter, names), nil
}

func (x *Indexer) listArchive(archivePath string, chapter address.ContentAddress) ([]string, error) {
	handle, err := x.cache.Get(archivePath)
	if err != nil {
		return nil, fmt.Errorf("getting handle for %s: %w", archivePath, err)
	}

	var names []string
	for _, entryName := range handle.Entries() {
		if !IsImagePath(entryName) {
			continue
		}
		// Addresses use the entry basename: page requests resolve by
		// suffix match, so nesting folders inside the archive do not
		// appear in the virtual address.
		names = append(names, path.Base(entryName))
	}
	sort.Strings(names)

	return toAddresses(chapter, names), nil
}

func toAddresses(chapter address.ContentAddress, names []string) []string {
	addresses := make([]string, 0, len(names))
	for _, name := range names {
		page := address.New(chapter.Title, path.Join(chapter.RelativePath, name))
		addresses = append(addresses, page.String())
	}
	return addresses
}
