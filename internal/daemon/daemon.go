// Package daemon bridges to the external scanning daemon's control-and-query
// HTTP API. The Daemon interface carries exactly the operations the
// orchestrator uses so it can run against a stub in tests.
package daemon

import (
	"context"

	"scanwarden/internal/models"
)

type Daemon interface {
	// Prime fetches the target directly so the daemon's passive observer
	// sees at least one request for it. Callers treat failure as non-fatal.
	Prime(ctx context.Context, target string) error

	StartDiscovery(ctx context.Context, target string) error
	// DiscoveryStatus returns completion percentage per discovery sub-job.
	DiscoveryStatus(ctx context.Context) (map[string]int, error)

	StartActiveProbe(ctx context.Context, target string) error
	ActiveProbeStatus(ctx context.Context) (map[string]int, error)

	IncludeInScope(ctx context.Context, pattern string) error
	StartPassive(ctx context.Context) error

	// ListAlerts returns at most limit findings recorded for baseURL.
	ListAlerts(ctx context.Context, baseURL string, limit int) ([]models.Alert, error)

	Version(ctx context.Context) (string, error)
}
