// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hondana-project/hondana/cmd/hondana/cli"
	"github.com/hondana-project/hondana/lib/handlecache"
)

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:        "cache",
		Summary:     "inspect and manage the server's archive handle cache",
		Description: "cache inspects and manages the archive handle cache of a running\nhondana-server.",
		Subcommands: []*cli.Command{
			cacheStatsCommand(),
			cacheClearCommand(),
		},
	}
}

func cacheStatsCommand() *cli.Command {
	var socket string
	return &cli.Command{
		Name:    "stats",
		Summary: "print cache statistics",
		Usage:   "hondana cache stats [flags]",
		Flags: func() *pflag.FlagSet {
			return socketFlagSet("stats", &socket)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("stats takes no arguments, got %d", len(args))
			}

			var stats handlecache.Stats
			err := newClient(socket).Call(context.Background(), "cache-stats", nil, &stats)
			if err != nil {
				return err
			}

			fmt.Printf("open handles: %d\n", stats.Size)
			return nil
		},
	}
}

func cacheClearCommand() *cli.Command {
	var socket string
	return &cli.Command{
		Name:    "clear",
		Summary: "close every cached archive handle",
		Usage:   "hondana cache clear [flags]",
		Flags: func() *pflag.FlagSet {
			return socketFlagSet("clear", &socket)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("clear takes no arguments, got %d", len(args))
			}

			err := newClient(socket).Call(context.Background(), "cache-clear", nil, nil)
			if err != nil {
				return err
			}

			fmt.Println("cache cleared")
			return nil
		},
	}
}
