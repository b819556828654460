// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hondana-project/hondana/lib/codec"
)

// startTestServer runs a SocketServer with the given actions and
// returns its socket path. The server stops when the test ends.
func startTestServer(t *testing.T, actions map[string]ActionFunc) string {
	t.Helper()
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	for name, handler := range actions {
		server.Handle(name, handler)
	}

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
	return socketPath
}

func TestClientCallDecodesData(t *testing.T) {
	socketPath := startTestServer(t, map[string]ActionFunc{
		"list-images": func(ctx context.Context, raw []byte) (any, error) {
			var request struct {
				Path string `cbor:"path"`
			}
			if err := codec.Unmarshal(raw, &request); err != nil {
				return nil, err
			}
			return map[string]any{
				"images": []string{
					"manga://" + request.Path + "/1.webp",
					"manga://" + request.Path + "/2.webp",
				},
			}, nil
		},
	})

	client := NewClient(socketPath)

	var result struct {
		Images []string `cbor:"images"`
	}
	err := client.Call(t.Context(), "list-images", map[string]any{"path": "Berserk/ch01"}, &result)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	if len(result.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(result.Images))
	}
	if result.Images[0] != "manga://Berserk/ch01/1.webp" {
		t.Errorf("images[0] = %q", result.Images[0])
	}
}

func TestClientCallNilResult(t *testing.T) {
	socketPath := startTestServer(t, map[string]ActionFunc{
		"cache-clear": func(ctx context.Context, raw []byte) (any, error) {
			return nil, nil
		},
	})

	client := NewClient(socketPath)
	if err := client.Call(t.Context(), "cache-clear", nil, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestClientCallServiceError(t *testing.T) {
	socketPath := startTestServer(t, map[string]ActionFunc{
		"delete-entries": func(ctx context.Context, raw []byte) (any, error) {
			return nil, fmt.Errorf("mutation failed")
		},
	})

	client := NewClient(socketPath)
	err := client.Call(t.Context(), "delete-entries", nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if serviceErr.Action != "delete-entries" {
		t.Errorf("Action = %q, want delete-entries", serviceErr.Action)
	}
	if serviceErr.Message != "mutation failed" {
		t.Errorf("Message = %q, want 'mutation failed'", serviceErr.Message)
	}
}

func TestClientCallConnectFailure(t *testing.T) {
	client := NewClient("/nonexistent/admin.sock")
	err := client.Call(t.Context(), "cache-stats", nil, nil)
	if err == nil {
		t.Fatal("expected error for missing socket, got nil")
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		t.Error("connection failure should not be a *ServiceError")
	}
}
