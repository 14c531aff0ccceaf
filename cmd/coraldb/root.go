package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coraldb/coraldb/internal/api"
	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/logging"
	"github.com/coraldb/coraldb/internal/sync"
	"github.com/coraldb/coraldb/pkg/config"
)

// Version is set during build.
var Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

var configFile string

var rootCmd = &cobra.Command{
	Use:     "coraldb",
	Short:   "In-memory search database with exact, prefix, full-text, range, and batch-id lookups",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (ignored: config.yaml is read only from ./ or /etc/coraldb)")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	})
	log := logging.GetLogger("main")

	db := database.NewDatabase()
	server := api.NewServer(db, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer, err := sync.New(cfg.Sync, db)
	if err != nil {
		return fmt.Errorf("initializing sync collaborator: %w", err)
	}
	if syncer != nil {
		log.Info("columnar sync collaborator enabled")
		go syncer.Start(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	if err := server.StartWithContext(ctx, shutdownTimeout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
