// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package mutate rewrites library archives: deleting entries from a
// CBZ/ZIP via an extract-modify-recompress pipeline, and packing a
// loose chapter directory into a fresh archive.
//
// Mutations coordinate with the handle cache so no reader serves
// bytes from an archive mid-rewrite, and guard every overwrite with a
// digest-verified backup copy of the original.
package mutate
