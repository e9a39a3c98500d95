package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"watchflip/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "watchflip",
	Short: "Inventory and profit tracker for watch flipping",
	Long: `watchflip tracks watches bought for resale: costs, projected and
realized profit, listing research and exports.

Run "watchflip serve" for the dashboard and JSON API. The export, import
and hash-password commands work against the same database offline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and tees the standard logger into LOG_FILE.
// The returned closer releases the log file.
func loadConfig() (config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, func() {}, err
	}
	if cfg.LogFile == "" {
		return cfg, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		return cfg, func() {}, nil
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return cfg, func() {
		log.SetOutput(os.Stdout)
		f.Close()
	}, nil
}
