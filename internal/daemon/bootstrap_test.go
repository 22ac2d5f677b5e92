package daemon

import (
	"context"
	"fmt"
	"testing"
	"time"

	"scanwarden/internal/models"
	"scanwarden/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// flakyDaemon answers Version successfully only after a number of failures.
type flakyDaemon struct {
	failures int
	calls    int
}

func (d *flakyDaemon) Version(ctx context.Context) (string, error) {
	d.calls++
	if d.calls <= d.failures {
		return "", fmt.Errorf("connection refused")
	}
	return "2.14.0", nil
}

func (d *flakyDaemon) Prime(ctx context.Context, target string) error { return nil }

func (d *flakyDaemon) StartDiscovery(ctx context.Context, target string) error { return nil }

func (d *flakyDaemon) DiscoveryStatus(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

func (d *flakyDaemon) StartActiveProbe(ctx context.Context, target string) error { return nil }

func (d *flakyDaemon) ActiveProbeStatus(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

func (d *flakyDaemon) IncludeInScope(ctx context.Context, pattern string) error { return nil }

func (d *flakyDaemon) StartPassive(ctx context.Context) error { return nil }

func (d *flakyDaemon) ListAlerts(ctx context.Context, baseURL string, limit int) ([]models.Alert, error) {
	return nil, nil
}

func TestAwaitReadyImmediate(t *testing.T) {
	d := &flakyDaemon{}
	log := logger.NewLogger(logrus.ErrorLevel)

	ready := AwaitReady(context.Background(), d, 3, time.Millisecond, log)
	assert.True(t, ready)
	assert.Equal(t, 1, d.calls)
}

func TestAwaitReadyAfterRetries(t *testing.T) {
	d := &flakyDaemon{failures: 2}
	log := logger.NewLogger(logrus.ErrorLevel)

	ready := AwaitReady(context.Background(), d, 5, time.Millisecond, log)
	assert.True(t, ready)
	assert.Equal(t, 3, d.calls)
}

func TestAwaitReadyGivesUp(t *testing.T) {
	d := &flakyDaemon{failures: 100}
	log := logger.NewLogger(logrus.ErrorLevel)

	ready := AwaitReady(context.Background(), d, 3, time.Millisecond, log)
	assert.False(t, ready)
	assert.Equal(t, 3, d.calls)
}

func TestAwaitReadyStopsOnCancel(t *testing.T) {
	d := &flakyDaemon{failures: 100}
	log := logger.NewLogger(logrus.ErrorLevel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ready := AwaitReady(ctx, d, 10, 50*time.Millisecond, log)
	assert.False(t, ready)
	assert.Equal(t, 1, d.calls)
}
