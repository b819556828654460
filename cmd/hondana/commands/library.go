// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hondana-project/hondana/cmd/hondana/cli"
)

func listCommand() *cli.Command {
	var socket string
	return &cli.Command{
		Name:        "ls",
		Summary:     "list the image pages of a chapter",
		Description: "ls lists the virtual addresses of every image page in a chapter,\nwhether the chapter is a loose directory or a .cbz archive.\nThe path is relative to the library root.",
		Usage:       "hondana ls <title>/<chapter> [flags]",
		Examples: []cli.Example{
			{
				Description: "List an archived chapter",
				Command:     "hondana ls Berserk/ch02",
			},
		},
		Flags: func() *pflag.FlagSet {
			return socketFlagSet("ls", &socket)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one chapter path, got %d args", len(args))
			}

			var result struct {
				Images []string `cbor:"images"`
			}
			err := newClient(socket).Call(context.Background(), "list-images",
				map[string]any{"path": args[0]}, &result)
			if err != nil {
				return err
			}

			for _, image := range result.Images {
				fmt.Println(image)
			}
			return nil
		},
	}
}

func removeCommand() *cli.Command {
	var socket string
	return &cli.Command{
		Name:        "rm",
		Summary:     "delete entries from a chapter archive",
		Description: "rm deletes the named entries from a .cbz archive and rewrites it\nin place. Entry names are archive-relative paths as printed by\n'hondana ls'. The archive path is relative to the library root.",
		Usage:       "hondana rm <archive> <entry>... [flags]",
		Examples: []cli.Example{
			{
				Description: "Delete a duplicate scan from an archive",
				Command:     "hondana rm Berserk/ch02.cbz pages/04-dup.webp",
			},
		},
		Flags: func() *pflag.FlagSet {
			return socketFlagSet("rm", &socket)
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("expected an archive path and at least one entry, got %d args", len(args))
			}

			archive, entries := args[0], args[1:]
			err := newClient(socket).Call(context.Background(), "delete-entries",
				map[string]any{"archive": archive, "entries": entries}, nil)
			if err != nil {
				return err
			}

			fmt.Printf("deleted %d entries from %s\n", len(entries), archive)
			return nil
		},
	}
}

func packCommand() *cli.Command {
	var socket string
	return &cli.Command{
		Name:        "pack",
		Summary:     "compress a loose chapter directory into a .cbz archive",
		Description: "pack compresses the image files of a loose chapter directory into\na sibling .cbz archive and removes the directory on success.\nThe path is relative to the library root.",
		Usage:       "hondana pack <title>/<chapter> [flags]",
		Examples: []cli.Example{
			{
				Description: "Pack a freshly downloaded chapter",
				Command:     "hondana pack Berserk/ch01",
			},
		},
		Flags: func() *pflag.FlagSet {
			return socketFlagSet("pack", &socket)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one directory path, got %d args", len(args))
			}

			err := newClient(socket).Call(context.Background(), "compress-directory",
				map[string]any{"path": args[0]}, nil)
			if err != nil {
				return err
			}

			fmt.Printf("packed %s into %s.cbz\n", args[0], args[0])
			return nil
		},
	}
}
