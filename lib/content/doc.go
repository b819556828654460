// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package content resolves virtual addresses to bytes.
//
// This is the unification layer of the library: a chapter may be a
// directory of loose images or a CBZ/ZIP archive, and callers must
// not care which. [Resolver] maps an address to either a direct file
// path or an (archive, entry) pair; [Responder] produces the bytes
// and content type for one address; [Indexer] lists a chapter's page
// addresses in order.
//
// Archive reads go through the shared [handlecache.Cache] — neither
// the responder nor the indexer ever owns an open archive reader past
// the scope of one call.
package content
