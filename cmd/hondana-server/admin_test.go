// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hondana-project/hondana/lib/content"
	"github.com/hondana-project/hondana/lib/handlecache"
	"github.com/hondana-project/hondana/lib/mutate"
	"github.com/hondana-project/hondana/lib/service"
)

// startAdminServer wires the full admin surface over a real Unix
// socket and returns a client for it plus the library root.
func startAdminServer(t *testing.T) (*service.Client, string) {
	t.Helper()
	baseDir := newTestLibrary(t)

	cache, err := handlecache.New(handlecache.Config{
		MaxEntries: 4,
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("handlecache.New: %v", err)
	}
	t.Cleanup(cache.Close)

	resolver := &content.Resolver{BaseDir: baseDir}
	socketPath := filepath.Join(t.TempDir(), "admin.sock")
	server := service.NewSocketServer(socketPath, testLogger())
	registerAdminActions(server, &adminState{
		libraryRoot: baseDir,
		indexer:     content.NewIndexer(resolver, cache),
		mutator:     mutate.NewMutator(baseDir, cache, testLogger()),
		cache:       cache,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	waitForSocket(t, socketPath)
	return service.NewClient(socketPath), baseDir
}

// waitForSocket polls until the socket file exists.
func waitForSocket(t *testing.T, path string) {
	t.Helper()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if t.Context().Err() != nil {
			t.Fatalf("socket %s did not appear before test context expired", path)
		}
	}
}

func TestAdminListImages(t *testing.T) {
	client, _ := startAdminServer(t)

	var result struct {
		Images []string `cbor:"images"`
	}
	err := client.Call(t.Context(), "list-images", map[string]any{"path": "Akira/ch02"}, &result)
	if err != nil {
		t.Fatalf("list-images: %v", err)
	}
	if len(result.Images) != 1 || result.Images[0] != "manga://Akira/ch02/1.webp" {
		t.Errorf("images = %v, want [manga://Akira/ch02/1.webp]", result.Images)
	}
}

func TestAdminListImagesEmptyChapter(t *testing.T) {
	client, _ := startAdminServer(t)

	var result struct {
		Images []string `cbor:"images"`
	}
	err := client.Call(t.Context(), "list-images", map[string]any{"path": "Akira/ch99"}, &result)
	if err != nil {
		t.Fatalf("list-images: %v", err)
	}
	if len(result.Images) != 0 {
		t.Errorf("images = %v, want empty", result.Images)
	}
}

func TestAdminDeleteEntries(t *testing.T) {
	client, _ := startAdminServer(t)

	err := client.Call(t.Context(), "delete-entries", map[string]any{
		"archive": "Akira/ch02.cbz",
		"entries": []string{"pages/1.webp"},
	}, nil)
	if err != nil {
		t.Fatalf("delete-entries: %v", err)
	}

	// The only page is gone; the chapter now lists empty.
	var result struct {
		Images []string `cbor:"images"`
	}
	if err := client.Call(t.Context(), "list-images", map[string]any{"path": "Akira/ch02"}, &result); err != nil {
		t.Fatalf("list-images after delete: %v", err)
	}
	if len(result.Images) != 0 {
		t.Errorf("images after delete = %v, want empty", result.Images)
	}
}

func TestAdminDeleteEntriesFailure(t *testing.T) {
	client, _ := startAdminServer(t)

	err := client.Call(t.Context(), "delete-entries", map[string]any{
		"archive": "Akira/ch02.cbz",
		"entries": []string{"no-such-entry.webp"},
	}, nil)

	var serviceErr *service.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *service.ServiceError, got %v", err)
	}
}

func TestAdminDeleteEntriesRejectsEscapingPath(t *testing.T) {
	client, _ := startAdminServer(t)

	err := client.Call(t.Context(), "delete-entries", map[string]any{
		"archive": "../outside.cbz",
		"entries": []string{"1.webp"},
	}, nil)
	if err == nil {
		t.Fatal("expected error for archive path outside the library root")
	}
}

func TestAdminCompressDirectory(t *testing.T) {
	client, baseDir := startAdminServer(t)

	if err := client.Call(t.Context(), "compress-directory", map[string]any{"path": "Akira/ch01"}, nil); err != nil {
		t.Fatalf("compress-directory: %v", err)
	}

	if _, err := os.Stat(filepath.Join(baseDir, "Akira", "ch01.cbz")); err != nil {
		t.Errorf("archive not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, "Akira", "ch01")); !os.IsNotExist(err) {
		t.Errorf("source directory still present: %v", err)
	}

	// The packed chapter still lists the same page, now archive-backed.
	var result struct {
		Images []string `cbor:"images"`
	}
	if err := client.Call(t.Context(), "list-images", map[string]any{"path": "Akira/ch01"}, &result); err != nil {
		t.Fatalf("list-images after compress: %v", err)
	}
	if len(result.Images) != 1 || result.Images[0] != "manga://Akira/ch01/1.webp" {
		t.Errorf("images = %v, want [manga://Akira/ch01/1.webp]", result.Images)
	}
}

func TestAdminCacheStatsAndClear(t *testing.T) {
	client, _ := startAdminServer(t)

	// Prime the cache through a listing of the archive-backed chapter.
	var listResult struct {
		Images []string `cbor:"images"`
	}
	if err := client.Call(t.Context(), "list-images", map[string]any{"path": "Akira/ch02"}, &listResult); err != nil {
		t.Fatalf("list-images: %v", err)
	}

	var stats handlecache.Stats
	if err := client.Call(t.Context(), "cache-stats", nil, &stats); err != nil {
		t.Fatalf("cache-stats: %v", err)
	}
	if stats.Size != 1 {
		t.Errorf("cache size = %d, want 1", stats.Size)
	}

	if err := client.Call(t.Context(), "cache-clear", nil, nil); err != nil {
		t.Fatalf("cache-clear: %v", err)
	}

	if err := client.Call(t.Context(), "cache-stats", nil, &stats); err != nil {
		t.Fatalf("cache-stats after clear: %v", err)
	}
	if stats.Size != 0 {
		t.Errorf("cache size after clear = %d, want 0", stats.Size)
	}
}
