package main

import (
	"context"
	"scanwarden/cmd/scanwarden/scan"
	"scanwarden/cmd/scanwarden/server"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func Execute() error {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "scanwarden",
		Short: "Web vulnerability scan orchestration service",
		Long:  `Scanwarden drives an external scanning daemon through its control API to run web vulnerability scans, on demand or on a recurring schedule`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(scan.NewScanCommand())
	rootCmd.AddCommand(server.NewServerCommand())
	return rootCmd.ExecuteContext(context.Background())
}
