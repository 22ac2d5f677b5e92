package daemon

import (
	"context"
	"time"

	"scanwarden/pkg/logger"
)

// AwaitReady polls the daemon's version view until it answers, giving up
// after maxAttempts. A false result means the daemon never became ready;
// callers decide whether that is fatal (the server treats it as a warning
// and starts anyway).
func AwaitReady(ctx context.Context, d Daemon, maxAttempts int, interval time.Duration, log *logger.Logger) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		version, err := d.Version(ctx)
		if err == nil {
			log.WithFields(logger.Fields{"version": version, "attempt": attempt}).Info("Scan daemon ready")
			return true
		}

		log.WithFields(logger.Fields{"attempt": attempt}).WithError(err).Warn("Scan daemon not ready yet")

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}

	return false
}
