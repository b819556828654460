// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command-tree framework for the hondana CLI:
// nested subcommand dispatch, pflag flag parsing, structured help
// output, and typo suggestions for unknown commands and flags.
package cli
