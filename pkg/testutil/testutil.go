// Package testutil provides testing utilities for the scanwarden application
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"scanwarden/internal/models"
)

// StubDaemon implements daemon.Daemon for testing. Status calls consume the
// configured sequences one entry per poll, repeating the last entry once the
// sequence is exhausted. Errors maps an operation name to a forced failure.
type StubDaemon struct {
	mu    sync.Mutex
	calls []string

	DiscoverySequence []map[string]int
	ProbeSequence     []map[string]int
	Alerts            []models.Alert
	VersionString     string
	Errors            map[string]error

	discoveryPolls int
	probePolls     int
}

func NewStubDaemon() *StubDaemon {
	return &StubDaemon{
		DiscoverySequence: []map[string]int{{"0": 100}},
		ProbeSequence:     []map[string]int{{"0": 100}},
		Alerts:            []models.Alert{},
		VersionString:     "2.14.0",
		Errors:            make(map[string]error),
	}
}

func (d *StubDaemon) record(op string) error {
	d.mu.Lock()
	d.calls = append(d.calls, op)
	err := d.Errors[op]
	d.mu.Unlock()
	return err
}

func (d *StubDaemon) next(sequence []map[string]int, polls *int) map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(sequence) == 0 {
		return map[string]int{}
	}
	index := *polls
	if index >= len(sequence) {
		index = len(sequence) - 1
	}
	*polls++
	return sequence[index]
}

func (d *StubDaemon) Prime(ctx context.Context, target string) error {
	return d.record("prime")
}

func (d *StubDaemon) StartDiscovery(ctx context.Context, target string) error {
	return d.record("start-discovery")
}

func (d *StubDaemon) DiscoveryStatus(ctx context.Context) (map[string]int, error) {
	if err := d.record("discovery-status"); err != nil {
		return nil, err
	}
	return d.next(d.DiscoverySequence, &d.discoveryPolls), nil
}

func (d *StubDaemon) StartActiveProbe(ctx context.Context, target string) error {
	return d.record("start-active-probe")
}

func (d *StubDaemon) ActiveProbeStatus(ctx context.Context) (map[string]int, error) {
	if err := d.record("active-probe-status"); err != nil {
		return nil, err
	}
	return d.next(d.ProbeSequence, &d.probePolls), nil
}

func (d *StubDaemon) IncludeInScope(ctx context.Context, pattern string) error {
	return d.record("include-in-scope")
}

func (d *StubDaemon) StartPassive(ctx context.Context) error {
	return d.record("start-passive")
}

func (d *StubDaemon) ListAlerts(ctx context.Context, baseURL string, limit int) ([]models.Alert, error) {
	if err := d.record("list-alerts"); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	alerts := make([]models.Alert, len(d.Alerts))
	copy(alerts, d.Alerts)
	return alerts, nil
}

func (d *StubDaemon) Version(ctx context.Context) (string, error) {
	if err := d.record("version"); err != nil {
		return "", err
	}
	return d.VersionString, nil
}

// Calls returns the operations invoked so far, in order.
func (d *StubDaemon) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	calls := make([]string, len(d.calls))
	copy(calls, d.calls)
	return calls
}

// CallCount returns how many times the named operation was invoked.
func (d *StubDaemon) CallCount(op string) int {
	count := 0
	for _, call := range d.Calls() {
		if call == op {
			count++
		}
	}
	return count
}

func (d *StubDaemon) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.discoveryPolls = 0
	d.probePolls = 0
	d.mu.Unlock()
}

// WithTimeout creates a context with timeout for tests
func WithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}
