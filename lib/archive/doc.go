// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive provides the CBZ/ZIP primitives the rest of hondana
// is built on: opening read handles, suffix-match entry lookup, full
// extraction, rebuilding archives from directories, and BLAKE3-verified
// file copies.
//
// This is deliberately not a general-purpose archive layer. It supports
// exactly the operations the library manager needs — read, extract,
// rebuild, copy — over the two extensions in [SupportedExtensions].
//
// Key exports:
//
//   - [Handle] and [Open] — an open archive reader, owned by the
//     handle cache while cached
//   - [Handle.FindEntry] — the documented suffix-match, first-match-wins
//     entry resolution strategy
//   - [ExtractAll] — zip-slip-guarded extraction into a directory
//   - [WriteFromDir] — deterministic archive construction from a
//     directory tree
//   - [CopyVerified] — digest-checked file copy for mutation backups
package archive
