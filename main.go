// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/tictac/cliparse"
	"github.com/danielhkuo/tictac/db"
	"github.com/danielhkuo/tictac/middleware"
	"github.com/danielhkuo/tictac/router"
	"github.com/danielhkuo/tictac/store"
)

func main() {
	var err error

	cliparse.LoadEnv()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database open failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Postgres shares change notifications across server processes
	var notifier store.Notifier
	if cfg.DatabaseType == db.TypePostgres {
		notifier, err = store.NewPGNotifier(dbConn, cfg.DatabaseURL)
		if err != nil {
			slog.Error("listener setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		notifier = store.NewHub()
	}
	s := store.New(dbConn, notifier)
	defer s.Close()

	mux := router.NewRouter(s, cfg)

	server := http.Server{
		Handler:           middleware.CORS(cfg.AllowedOrigins)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Live connections are hijacked, so Shutdown does not wait for them.
		// Closing the store ends their streams.
		s.Close()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
