// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the hondana command tree. Every command talks
// to a running hondana-server over its admin socket; none of them touch
// the library directly.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/hondana-project/hondana/cmd/hondana/cli"
	"github.com/hondana-project/hondana/lib/service"
	"github.com/hondana-project/hondana/lib/version"
)

const defaultSocketPath = "/run/hondana/admin.sock"

// socketPath resolves the admin socket path for a command: the --socket
// flag wins, then the HONDANA_SOCKET environment variable, then the
// default install location.
func socketPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("HONDANA_SOCKET"); env != "" {
		return env
	}
	return defaultSocketPath
}

// socketFlagSet returns a FlagSet with the shared --socket flag bound
// to target. Every leaf command carries it.
func socketFlagSet(name string, target *string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVar(target, "socket", "",
		"admin socket path (default $HONDANA_SOCKET or "+defaultSocketPath+")")
	return flagSet
}

// Root builds the complete hondana command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:        "hondana",
		Summary:     "manage a hondana manga library",
		Description: "hondana manages the content of a running hondana-server:\nlisting chapter pages, deleting pages from archives, and packing\nloose image directories into archives.",
		Examples: []cli.Example{
			{
				Description: "List the pages of a chapter",
				Command:     "hondana ls Berserk/ch01",
			},
			{
				Description: "Delete two pages from an archived chapter",
				Command:     "hondana rm Berserk/ch02.cbz pages/1.webp pages/2.webp",
			},
			{
				Description: "Pack a loose chapter directory into a .cbz archive",
				Command:     "hondana pack Berserk/ch01",
			},
		},
		Subcommands: []*cli.Command{
			listCommand(),
			removeCommand(),
			packCommand(),
			cacheCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "print version information",
		Usage:   "hondana version",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}

// newClient builds an admin socket client for a leaf command.
func newClient(socketFlag string) *service.Client {
	return service.NewClient(socketPath(socketFlag))
}
