package cmd

import (
	"fmt"
	"time"

	"anydl/config"
	"anydl/internal/storage"
	"anydl/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupMaxAge int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove downloaded files older than their TTL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCleanup()
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupMaxAge, "max-age", 0,
		"override file age in seconds (default: configured TTL)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup() error {
	cfg := config.Load()

	if err := logger.Init(&cfg.Logging); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	manager := storage.NewManager(&cfg.Storage)
	maxAge := manager.FileTTL()
	if cleanupMaxAge > 0 {
		maxAge = time.Duration(cleanupMaxAge) * time.Second
	}

	deleted := manager.SweepOrphans(maxAge)
	logger.Logger.Info("Cleanup finished",
		zap.Int("deleted", deleted),
		zap.Duration("max_age", maxAge))
	return nil
}
