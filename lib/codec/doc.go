// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the canonical CBOR encoding used by the
// admin socket protocol.
//
// All encoding uses Core Deterministic Encoding so that the same
// logical request or response always produces identical bytes.
// Decoding accepts standard CBOR and ignores unknown fields, so old
// clients keep working against newer servers.
//
// This package depends on no other hondana packages.
package codec
