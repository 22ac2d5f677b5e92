package services

import (
	"context"
	"sync"
	"time"

	"scanwarden/internal/models"
	"scanwarden/internal/target"
	"scanwarden/pkg/logger"

	"github.com/sirupsen/logrus"
)

// SiteRegistry is the surface the monitoring endpoints consume.
type SiteRegistry interface {
	Register(rawURL string) (string, error)
	Snapshot() map[string]models.MonitoredSite
}

// Notifier receives the findings a sweep produced for one target.
type Notifier interface {
	NotifyFindings(target string, alerts []models.Alert) error
}

// SiteMonitor owns the table of monitored targets and re-scans them on a
// fixed period. Registration and sweep updates are serialized through one
// mutex; readers only ever see point-in-time copies.
type SiteMonitor struct {
	scanner  Scanner
	logger   *logger.Logger
	notifier Notifier
	interval time.Duration

	mu    sync.Mutex
	sites map[string]*models.MonitoredSite
	order []string
}

func NewSiteMonitor(scanner Scanner, interval time.Duration, notifier Notifier) *SiteMonitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SiteMonitor{
		scanner:  scanner,
		logger:   logger.NewLogger(logrus.InfoLevel),
		notifier: notifier,
		interval: interval,
		sites:    make(map[string]*models.MonitoredSite),
	}
}

// Register adds the target to the monitored set. Registering an
// already-present target resets its entry to an unscanned state,
// discarding prior history: registration always means "start fresh".
func (m *SiteMonitor) Register(rawURL string) (string, error) {
	normalized, err := target.Normalize(rawURL)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sites[normalized]; !exists {
		m.order = append(m.order, normalized)
	}
	m.sites[normalized] = &models.MonitoredSite{
		Target: normalized,
		Alerts: []models.Alert{},
	}

	m.logger.WithFields(logger.Fields{"target": normalized}).Info("Target registered for monitoring")
	return normalized, nil
}

// Snapshot returns a point-in-time copy of every monitored site. The copy
// shares no memory with the live table, so a concurrent sweep can never
// mutate what a reader holds.
func (m *SiteMonitor) Snapshot() map[string]models.MonitoredSite {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]models.MonitoredSite, len(m.sites))
	for key, site := range m.sites {
		copied := models.MonitoredSite{
			Target: site.Target,
			Alerts: make([]models.Alert, len(site.Alerts)),
		}
		copy(copied.Alerts, site.Alerts)
		if site.LastScan != nil {
			lastScan := *site.LastScan
			copied.LastScan = &lastScan
		}
		snapshot[key] = copied
	}
	return snapshot
}

// Run executes a sweep every interval until the context is cancelled.
func (m *SiteMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.WithFields(logger.Fields{"interval": m.interval.String()}).Info("Monitoring sweep started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Monitoring sweep stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep runs a full scan for every registered target, sequentially and in
// registration order. A failed scan leaves the previous entry untouched
// and never aborts the sweep for the remaining targets.
func (m *SiteMonitor) Sweep(ctx context.Context) {
	for _, targetURL := range m.targets() {
		result, err := m.scanner.FullScan(ctx, targetURL)
		if err != nil {
			m.logger.WithFields(logger.Fields{"target": targetURL}).WithError(err).Error("Sweep scan failed")
			continue
		}
		m.record(targetURL, result)
	}
}

func (m *SiteMonitor) targets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	targets := make([]string, len(m.order))
	copy(targets, m.order)
	return targets
}

func (m *SiteMonitor) record(targetURL string, result *models.ScanResult) {
	m.mu.Lock()
	site, registered := m.sites[targetURL]
	if registered {
		completedAt := result.CompletedAt
		site.LastScan = &completedAt
		site.Alerts = result.Alerts
	}
	m.mu.Unlock()

	if !registered {
		return
	}

	m.logger.WithFields(logger.Fields{
		"target": targetURL,
		"alerts": len(result.Alerts),
	}).Info("Monitored site updated")

	if m.notifier != nil && len(result.Alerts) > 0 {
		if err := m.notifier.NotifyFindings(targetURL, result.Alerts); err != nil {
			m.logger.WithFields(logger.Fields{"target": targetURL}).WithError(err).Error("Failed to send findings notification")
		}
	}
}
