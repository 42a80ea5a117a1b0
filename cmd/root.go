package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "anydl",
	Short: "Web front-end for video downloads",
	Long: `anydl serves a small web UI and JSON API for downloading videos.
It resolves a direct stream URL when the platform offers a pre-merged
rendition and falls back to a local download-and-remux otherwise.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
