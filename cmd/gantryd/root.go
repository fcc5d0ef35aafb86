package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gantry/gantry/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gantryd",
	Short: "Gantry scheduling server",
	Long:  `A task graph scheduling server with a durable optimization job queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFileName, "Path to the config file")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
