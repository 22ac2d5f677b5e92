package services

import (
	"context"
	"regexp"
	"sync"
	"time"

	"scanwarden/internal/daemon"
	"scanwarden/internal/models"
	"scanwarden/internal/target"
	"scanwarden/pkg/errors"
	"scanwarden/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	phaseDiscovery   = "discovery"
	phaseActiveProbe = "active-probe"
)

// Scanner drives one scan to completion against a single target.
type Scanner interface {
	FullScan(ctx context.Context, rawURL string) (*models.ScanResult, error)
	QuickScan(ctx context.Context, rawURL string) (*models.ScanResult, error)
}

type OrchestratorOptions struct {
	// PollInterval is the fixed suspension between phase status checks.
	PollInterval time.Duration
	// ScanTimeout is the wall-clock budget for a full scan, measured from
	// scan start and shared by the discovery and active-probe phases.
	ScanTimeout time.Duration
	// MaxAlerts bounds how many findings are collected per scan.
	MaxAlerts int
}

func (o OrchestratorOptions) withDefaults() OrchestratorOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = 3 * time.Second
	}
	if o.ScanTimeout <= 0 {
		o.ScanTimeout = 180 * time.Second
	}
	if o.MaxAlerts <= 0 {
		o.MaxAlerts = 9999
	}
	return o
}

// ScanOrchestrator sequences the daemon's control calls for full and
// quick-passive scans. It guarantees at most one in-flight scan per
// normalized target: a second request for a busy target is rejected with
// ErrScanInProgress rather than queued.
type ScanOrchestrator struct {
	daemon      daemon.Daemon
	logger      *logger.Logger
	opts        OrchestratorOptions
	targetLocks sync.Map
}

func NewScanOrchestrator(d daemon.Daemon, opts OrchestratorOptions) *ScanOrchestrator {
	return &ScanOrchestrator{
		daemon: d,
		logger: logger.NewLogger(logrus.InfoLevel),
		opts:   opts.withDefaults(),
	}
}

func (o *ScanOrchestrator) tryAcquire(normalized string) (func(), error) {
	value, _ := o.targetLocks.LoadOrStore(normalized, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, errors.ErrScanInProgress
	}
	return mu.Unlock, nil
}

// FullScan runs warm-up, discovery, active probing and alert collection
// against the target. Any control-call failure aborts the scan with no
// partial result; exceeding the scan budget fails with ScanTimeoutError
// naming the phase that overran. Retries belong to callers.
func (o *ScanOrchestrator) FullScan(ctx context.Context, rawURL string) (*models.ScanResult, error) {
	normalized, err := target.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	release, err := o.tryAcquire(normalized)
	if err != nil {
		return nil, err
	}
	defer release()

	scanID := uuid.New().String()
	log := o.logger.WithScan(scanID, normalized)
	deadline := time.Now().Add(o.opts.ScanTimeout)

	if err := o.daemon.Prime(ctx, normalized); err != nil {
		log.WithError(err).Debug("Warm-up fetch failed, continuing")
	}

	log.Info("Starting discovery phase")
	if err := o.daemon.StartDiscovery(ctx, normalized); err != nil {
		return nil, err
	}
	if err := o.awaitPhase(ctx, phaseDiscovery, deadline, o.daemon.DiscoveryStatus, log); err != nil {
		return nil, err
	}

	log.Info("Starting active-probe phase")
	if err := o.daemon.StartActiveProbe(ctx, normalized); err != nil {
		return nil, err
	}
	if err := o.awaitPhase(ctx, phaseActiveProbe, deadline, o.daemon.ActiveProbeStatus, log); err != nil {
		return nil, err
	}

	alerts, err := o.daemon.ListAlerts(ctx, normalized, o.opts.MaxAlerts)
	if err != nil {
		return nil, err
	}

	log.WithField("alerts", len(alerts)).Info("Full scan completed")
	return &models.ScanResult{
		ScanID:      scanID,
		Target:      normalized,
		CompletedAt: time.Now().UTC(),
		Alerts:      alerts,
		Mode:        models.ModeFull,
	}, nil
}

// QuickScan registers the target in the daemon's default scanning context
// and triggers a passive scan of everything in scope, then collects
// whatever findings the daemon has. There is no polling loop and therefore
// no timeout budget in this mode.
func (o *ScanOrchestrator) QuickScan(ctx context.Context, rawURL string) (*models.ScanResult, error) {
	normalized, err := target.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	release, err := o.tryAcquire(normalized)
	if err != nil {
		return nil, err
	}
	defer release()

	scanID := uuid.New().String()
	log := o.logger.WithScan(scanID, normalized)

	if err := o.daemon.Prime(ctx, normalized); err != nil {
		log.WithError(err).Debug("Warm-up fetch failed, continuing")
	}

	pattern := regexp.QuoteMeta(normalized) + ".*"
	if err := o.daemon.IncludeInScope(ctx, pattern); err != nil {
		return nil, err
	}
	if err := o.daemon.StartPassive(ctx); err != nil {
		return nil, err
	}

	alerts, err := o.daemon.ListAlerts(ctx, normalized, o.opts.MaxAlerts)
	if err != nil {
		return nil, err
	}

	log.WithField("alerts", len(alerts)).Info("Quick scan completed")
	return &models.ScanResult{
		ScanID:      scanID,
		Target:      normalized,
		CompletedAt: time.Now().UTC(),
		Alerts:      alerts,
		Mode:        models.ModeQuickPassive,
	}, nil
}

// awaitPhase suspends for one poll interval between status checks and
// returns once the phase reports complete. The deadline is checked after
// each incomplete poll, so a timeout surfaces no earlier than the budget
// and no later than one poll interval past it.
func (o *ScanOrchestrator) awaitPhase(ctx context.Context, phase string, deadline time.Time, poll func(context.Context) (map[string]int, error), log *logrus.Entry) error {
	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			progress, err := poll(ctx)
			if err != nil {
				return err
			}

			// The phase counts as complete as soon as the furthest
			// sub-job reports 100. Kept for compatibility with the
			// daemon's documented polling contract.
			if maxPercentage(progress) >= 100 {
				return nil
			}

			log.WithFields(logrus.Fields{"phase": phase, "progress": progress}).Debug("Phase still running")

			if !time.Now().Before(deadline) {
				return errors.NewScanTimeoutError(phase)
			}
		}
	}
}

func maxPercentage(progress map[string]int) int {
	highest := 0
	for _, pct := range progress {
		if pct > highest {
			highest = pct
		}
	}
	return highest
}
