// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The handle cache's idle sweep runs on a ticker; testing eviction
// deadlines against the real wall clock would be slow and flaky.
// Components take a [Clock] and production wiring passes [Real];
// tests pass a [FakeClock] and drive time with Advance.
//
// This package depends on no other hondana packages.
package clock
