// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hondana-project/hondana/lib/config"
	"github.com/hondana-project/hondana/lib/content"
	"github.com/hondana-project/hondana/lib/handlecache"
	"github.com/hondana-project/hondana/lib/mutate"
	"github.com/hondana-project/hondana/lib/service"
	"github.com/hondana-project/hondana/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var showVersion bool
	var configPath string
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "path to the config file (overrides HONDANA_CONFIG)")
	flag.Parse()

	if showVersion {
		fmt.Printf("hondana-server %s\n", version.Info())
		return nil
	}

	logger := service.NewLogger()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return fmt.Errorf("preparing directories: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := handlecache.New(handlecache.Config{
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: cfg.Cache.SweepInterval.Std(),
		MaxIdle:       cfg.Cache.MaxIdle.Std(),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating handle cache: %w", err)
	}
	// Close stops the sweep and releases every open archive handle.
	defer cache.Close()

	resolver := &content.Resolver{BaseDir: cfg.Library.Root}
	responder := content.NewResponder(resolver, cache)
	indexer := content.NewIndexer(resolver, cache)
	mutator := mutate.NewMutator(cfg.Library.Root, cache, logger)

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address:         cfg.Server.Address,
		Handler:         newContentHandler(responder, logger),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		Logger:          logger,
	})

	socketServer := service.NewSocketServer(cfg.Admin.SocketPath, logger)
	registerAdminActions(socketServer, &adminState{
		libraryRoot: cfg.Library.Root,
		indexer:     indexer,
		mutator:     mutator,
		cache:       cache,
	})

	httpDone := make(chan error, 1)
	go func() {
		httpDone <- httpServer.Serve(ctx)
	}()

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- socketServer.Serve(ctx)
	}()

	logger.Info("hondana server running",
		"library", cfg.Library.Root,
		"address", cfg.Server.Address,
		"socket", cfg.Admin.SocketPath,
	)

	// Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// Wait for both listeners to drain active requests.
	if err := <-httpDone; err != nil {
		logger.Error("http server error", "error", err)
	}
	if err := <-socketDone; err != nil {
		logger.Error("socket server error", "error", err)
	}

	return nil
}
