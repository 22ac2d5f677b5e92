package server

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"scanwarden/api/routes"
	"scanwarden/internal/config"
	"scanwarden/internal/daemon"
	"scanwarden/internal/notification"
	"scanwarden/internal/services"
	"scanwarden/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewServerCommand() *cobra.Command {
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the scanwarden API server",
		Long:  `Start the scanwarden server to run and monitor web vulnerability scans via a JSON API`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
			run()
		},
	}

	return serverCmd
}

func run() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLogger(logrus.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := daemon.NewClient(cfg.DaemonURL, cfg.DaemonAPIKey, cfg.DaemonTimeout)
	orchestrator := services.NewScanOrchestrator(client, services.OrchestratorOptions{
		PollInterval: cfg.PollInterval,
		ScanTimeout:  cfg.ScanTimeout,
		MaxAlerts:    cfg.MaxAlerts,
	})

	var notifier services.Notifier
	if cfg.DiscordToken != "" {
		discord, err := notification.NewClient(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Discord client")
		} else {
			defer discord.Close()
			notifier = discord
			log.Info("Discord notifications enabled")
		}
	}

	monitor := services.NewSiteMonitor(orchestrator, cfg.SweepInterval, notifier)

	if cfg.TargetsFile != "" {
		seeds, err := config.LoadSeedTargets(cfg.TargetsFile)
		if err != nil {
			log.WithError(err).Warn("Failed to load seed targets")
		}
		for _, seed := range seeds {
			if _, err := monitor.Register(seed); err != nil {
				log.WithFields(logger.Fields{"target": seed}).WithError(err).Warn("Skipping invalid seed target")
			}
		}
	}

	// A daemon that never comes up is not fatal: the server still starts
	// and individual scans fail until it does.
	var daemonReady atomic.Bool
	daemonReady.Store(daemon.AwaitReady(ctx, client, cfg.ReadyAttempts, cfg.ReadyInterval, log))
	if !daemonReady.Load() {
		log.Warn("Scan daemon not ready, scans will fail until it comes up")
	}

	go monitor.Run(ctx)

	router := routes.InitRouter(cfg, orchestrator, monitor, daemonReady.Load)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
