package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"scanwarden/internal/daemon"
	"scanwarden/internal/models"
	"scanwarden/internal/services"

	"github.com/spf13/cobra"
)

// Options holds the one-shot scan configuration
type Options struct {
	URL          string
	Quick        bool
	DaemonURL    string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
}

func NewScanCommand() *cobra.Command {
	opts := &Options{}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan and print the result",
		Long:  `Run one full or quick-passive scan against a target and print the collected findings as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := daemon.NewClient(opts.DaemonURL, opts.APIKey, 30*time.Second)
			orchestrator := services.NewScanOrchestrator(client, services.OrchestratorOptions{
				PollInterval: opts.PollInterval,
				ScanTimeout:  opts.Timeout,
			})

			var result *models.ScanResult
			var err error
			if opts.Quick {
				result, err = orchestrator.QuickScan(ctx, opts.URL)
			} else {
				result, err = orchestrator.FullScan(ctx, opts.URL)
			}
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Println(string(encoded))
			return nil
		},
	}

	scanCmd.Flags().StringVarP(&opts.URL, "url", "u", "", "Target URL to scan (required)")
	scanCmd.Flags().BoolVarP(&opts.Quick, "quick", "q", false, "Run a quick passive-only scan")
	scanCmd.Flags().StringVar(&opts.DaemonURL, "daemon", "http://localhost:8090", "Base address of the scanning daemon")
	scanCmd.Flags().StringVar(&opts.APIKey, "apikey", "", "API key for the scanning daemon")
	scanCmd.Flags().DurationVar(&opts.Timeout, "timeout", 180*time.Second, "Wall-clock budget for a full scan")
	scanCmd.Flags().DurationVar(&opts.PollInterval, "poll-interval", 3*time.Second, "Interval between phase status checks")

	scanCmd.MarkFlagRequired("url")

	return scanCmd
}
