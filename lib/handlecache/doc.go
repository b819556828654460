// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package handlecache bounds the number of open archive readers.
//
// Serving pages out of CBZ archives means reopening the same archive
// for every page of a reading session unless the reader is kept open.
// The cache keeps up to MaxEntries readers live, keyed by archive
// path, with least-recently-accessed eviction on capacity and a
// clock-driven sweep that closes readers idle longer than MaxIdle.
//
// The cache is an explicit instance owned by the composing command
// and passed into the responder, indexer, and mutator — there is no
// package-level singleton, so tests get isolated caches.
//
// Mutation safety: [Cache.BeginMutation] hands a mutation exclusive
// ownership of one archive path. The cached handle is invalidated and
// Gets for that path block until release, which guarantees no reader
// serves bytes from a file that is mid-rewrite.
package handlecache
