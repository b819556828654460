// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the shared runtime plumbing for Hondana
// binaries: the HTTP content server, the CBOR-over-Unix-socket admin
// protocol (server and client), and the standard logger.
//
// Both servers follow the same lifecycle: Serve(ctx) blocks until the
// context is cancelled, then drains in-flight work before returning.
package service
