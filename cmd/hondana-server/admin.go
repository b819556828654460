// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hondana-project/hondana/lib/codec"
	"github.com/hondana-project/hondana/lib/content"
	"github.com/hondana-project/hondana/lib/handlecache"
	"github.com/hondana-project/hondana/lib/mutate"
	"github.com/hondana-project/hondana/lib/service"
)

// adminState holds the components the admin socket actions operate on.
type adminState struct {
	libraryRoot string
	indexer     *content.Indexer
	mutator     *mutate.Mutator
	cache       *handlecache.Cache
}

// registerAdminActions wires the admin socket protocol. All paths in
// requests are library-root-relative; the server never accepts
// absolute filesystem paths over the socket.
func registerAdminActions(server *service.SocketServer, state *adminState) {
	server.Handle("list-images", state.listImages)
	server.Handle("delete-entries", state.deleteEntries)
	server.Handle("compress-directory", state.compressDirectory)
	server.Handle("cache-stats", state.cacheStats)
	server.Handle("cache-clear", state.cacheClear)
}

// listImages returns the ordered page addresses of a chapter.
//
// Request: {path: "<title>/<chapter>"}
// Response data: {images: [...]}.
func (s *adminState) listImages(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		Path string `cbor:"path"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if request.Path == "" {
		return nil, fmt.Errorf("missing required field: path")
	}

	images, err := s.indexer.ListImages(request.Path)
	if err != nil {
		return nil, err
	}
	return map[string]any{"images": images}, nil
}

// deleteEntries removes entries from an archive.
//
// Request: {archive: "<title>/<chapter>.cbz", entries: [...]}.
// The mutation pipeline reduces every failure to a boolean and logs
// the failing step; the socket response mirrors that contract.
func (s *adminState) deleteEntries(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		Archive string   `cbor:"archive"`
		Entries []string `cbor:"entries"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if request.Archive == "" {
		return nil, fmt.Errorf("missing required field: archive")
	}
	if !filepath.IsLocal(filepath.FromSlash(request.Archive)) {
		return nil, fmt.Errorf("archive path escapes the library root")
	}

	archivePath := filepath.Join(s.libraryRoot, filepath.FromSlash(request.Archive))
	if !s.mutator.DeleteEntries(archivePath, request.Entries) {
		return nil, fmt.Errorf("delete-entries failed for %s; see server logs", request.Archive)
	}
	return nil, nil
}

// compressDirectory packs a chapter directory into a .cbz archive.
//
// Request: {path: "<title>/<chapter>"}.
func (s *adminState) compressDirectory(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		Path string `cbor:"path"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if request.Path == "" {
		return nil, fmt.Errorf("missing required field: path")
	}

	if !s.mutator.CompressDirectory(request.Path) {
		return nil, fmt.Errorf("compress-directory failed for %s; see server logs", request.Path)
	}
	return nil, nil
}

// cacheStats returns handle cache utilization.
func (s *adminState) cacheStats(ctx context.Context, raw []byte) (any, error) {
	return s.cache.Stats(), nil
}

// cacheClear closes and removes every cached archive handle.
func (s *adminState) cacheClear(ctx context.Context, raw []byte) (any, error) {
	s.cache.Clear()
	return nil, nil
}
