package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"scanwarden/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string

	DaemonURL     string
	DaemonAPIKey  string
	DaemonTimeout time.Duration
	ReadyAttempts int
	ReadyInterval time.Duration

	APISecret      string
	AllowedOrigins []string

	PollInterval time.Duration
	ScanTimeout  time.Duration
	MaxAlerts    int

	SweepInterval time.Duration
	TargetsFile   string

	DiscordToken     string
	DiscordChannelID string
}

// Load reads configuration from an optional scanwarden.yaml (working
// directory, ./config or /etc/scanwarden) with SCANWARDEN_* environment
// variables taking precedence. When a config file is present it is watched
// and edits are logged as they land.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("scanwarden")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scanwarden")

	v.SetEnvPrefix("SCANWARDEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("daemon.url", "http://localhost:8090")
	v.SetDefault("daemon.api_key", "")
	v.SetDefault("daemon.timeout", "30s")
	v.SetDefault("daemon.ready_attempts", 10)
	v.SetDefault("daemon.ready_interval", "5s")
	v.SetDefault("api.secret", "")
	v.SetDefault("api.allowed_origins", []string{"*"})
	v.SetDefault("scan.poll_interval", "3s")
	v.SetDefault("scan.timeout", "180s")
	v.SetDefault("scan.max_alerts", 9999)
	v.SetDefault("monitor.sweep_interval", "1h")
	v.SetDefault("monitor.targets_file", "")
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.channel_id", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		logger.Infof("Loaded config file: %s", v.ConfigFileUsed())
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.WithFields(logger.Fields{"file": e.Name, "op": e.Op.String()}).Info("Config file changed")
		})
		v.WatchConfig()
	}

	cfg := &Config{
		ListenAddr:       v.GetString("listen_addr"),
		DaemonURL:        v.GetString("daemon.url"),
		DaemonAPIKey:     v.GetString("daemon.api_key"),
		DaemonTimeout:    v.GetDuration("daemon.timeout"),
		ReadyAttempts:    v.GetInt("daemon.ready_attempts"),
		ReadyInterval:    v.GetDuration("daemon.ready_interval"),
		APISecret:        v.GetString("api.secret"),
		AllowedOrigins:   v.GetStringSlice("api.allowed_origins"),
		PollInterval:     v.GetDuration("scan.poll_interval"),
		ScanTimeout:      v.GetDuration("scan.timeout"),
		MaxAlerts:        v.GetInt("scan.max_alerts"),
		SweepInterval:    v.GetDuration("monitor.sweep_interval"),
		TargetsFile:      v.GetString("monitor.targets_file"),
		DiscordToken:     v.GetString("discord.token"),
		DiscordChannelID: v.GetString("discord.channel_id"),
	}
	return cfg, nil
}

type seedFile struct {
	Targets []string `yaml:"targets"`
}

// LoadSeedTargets reads a YAML file listing targets to register for
// monitoring at startup.
func LoadSeedTargets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse targets file: %w", err)
	}
	return seed.Targets, nil
}
