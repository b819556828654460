// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package address defines the manga:// virtual address scheme.
//
// A virtual address names a chapter or page logically — by library
// title and relative path — without saying whether the bytes live in
// a loose image directory or inside a CBZ/ZIP archive. Resolution of
// an address to concrete storage is lib/content's job; this package
// only parses and formats the scheme:
//
//	manga://<title>/<relativePath>
//
// The title is the URL host component and the relative path is the
// URL path with the leading separator stripped. Both components are
// percent-decoded on parse and percent-encoded on format.
//
// This package depends on no other hondana packages.
package address
