package services

import (
	"context"
	goerrors "errors"
	"sync"
	"testing"
	"time"

	"scanwarden/internal/models"
	"scanwarden/pkg/errors"
	"scanwarden/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScanner returns a canned result or error per target.
type fakeScanner struct {
	mu      sync.Mutex
	results map[string]*models.ScanResult
	errs    map[string]error
	calls   []string
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{
		results: make(map[string]*models.ScanResult),
		errs:    make(map[string]error),
	}
}

func (f *fakeScanner) FullScan(ctx context.Context, rawURL string) (*models.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	if err := f.errs[rawURL]; err != nil {
		return nil, err
	}
	if result := f.results[rawURL]; result != nil {
		return result, nil
	}
	return &models.ScanResult{
		Target:      rawURL,
		CompletedAt: time.Now().UTC(),
		Alerts:      []models.Alert{},
		Mode:        models.ModeFull,
	}, nil
}

func (f *fakeScanner) QuickScan(ctx context.Context, rawURL string) (*models.ScanResult, error) {
	return f.FullScan(ctx, rawURL)
}

func (f *fakeScanner) scanCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]string, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// recordingNotifier captures sweep notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNotifier) NotifyFindings(target string, alerts []models.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return nil
}

func TestRegisterStartsEmpty(t *testing.T) {
	monitor := NewSiteMonitor(newFakeScanner(), time.Hour, nil)

	normalized, err := monitor.Register("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", normalized)

	snapshot := monitor.Snapshot()
	site, ok := snapshot["http://example.com/"]
	require.True(t, ok)
	assert.Nil(t, site.LastScan)
	assert.NotNil(t, site.Alerts)
	assert.Empty(t, site.Alerts)
}

func TestRegisterRejectsInvalidTarget(t *testing.T) {
	monitor := NewSiteMonitor(newFakeScanner(), time.Hour, nil)

	_, err := monitor.Register("ftp://x")
	assert.True(t, goerrors.Is(err, errors.ErrInvalidTarget), "expected ErrInvalidTarget, got %v", err)
	assert.Empty(t, monitor.Snapshot())
}

func TestReregistrationResetsState(t *testing.T) {
	scanner := newFakeScanner()
	scanner.results["http://example.com/"] = &models.ScanResult{
		Target:      "http://example.com/",
		CompletedAt: time.Now().UTC(),
		Alerts:      []models.Alert{{"risk": "High"}},
		Mode:        models.ModeFull,
	}
	monitor := NewSiteMonitor(scanner, time.Hour, nil)

	_, err := monitor.Register("http://example.com/")
	require.NoError(t, err)
	monitor.Sweep(context.Background())

	site := monitor.Snapshot()["http://example.com/"]
	require.NotNil(t, site.LastScan)
	require.Len(t, site.Alerts, 1)

	// Registration always means "start fresh": prior alerts are discarded,
	// never merged.
	_, err = monitor.Register("http://example.com/")
	require.NoError(t, err)

	site = monitor.Snapshot()["http://example.com/"]
	assert.Nil(t, site.LastScan)
	assert.Empty(t, site.Alerts)
}

func TestSweepUpdatesSites(t *testing.T) {
	scanner := newFakeScanner()
	scanner.results["http://example.com/"] = &models.ScanResult{
		Target:      "http://example.com/",
		CompletedAt: time.Now().UTC(),
		Alerts:      []models.Alert{{"risk": "Medium", "description": "CSP missing"}},
		Mode:        models.ModeFull,
	}
	notifier := &recordingNotifier{}
	monitor := NewSiteMonitor(scanner, time.Hour, notifier)

	_, err := monitor.Register("http://example.com/")
	require.NoError(t, err)

	monitor.Sweep(context.Background())

	site := monitor.Snapshot()["http://example.com/"]
	require.NotNil(t, site.LastScan)
	assert.Equal(t, []models.Alert{{"risk": "Medium", "description": "CSP missing"}}, site.Alerts)
	assert.Equal(t, []string{"http://example.com/"}, notifier.targets)
}

func TestSweepFailureLeavesPreviousState(t *testing.T) {
	scanner := newFakeScanner()
	scanner.results["http://example.com/"] = &models.ScanResult{
		Target:      "http://example.com/",
		CompletedAt: time.Now().UTC(),
		Alerts:      []models.Alert{{"risk": "Low"}},
		Mode:        models.ModeFull,
	}
	monitor := NewSiteMonitor(scanner, time.Hour, nil)

	_, err := monitor.Register("http://example.com/")
	require.NoError(t, err)
	monitor.Sweep(context.Background())

	before := monitor.Snapshot()["http://example.com/"]
	require.NotNil(t, before.LastScan)

	scanner.mu.Lock()
	scanner.errs["http://example.com/"] = errors.NewRemoteError("JSON/spider/action/scan", goerrors.New("down"))
	scanner.mu.Unlock()

	monitor.Sweep(context.Background())

	after := monitor.Snapshot()["http://example.com/"]
	assert.Equal(t, before.LastScan, after.LastScan)
	assert.Equal(t, before.Alerts, after.Alerts)
}

func TestSweepContinuesPastFailingTarget(t *testing.T) {
	scanner := newFakeScanner()
	scanner.errs["http://broken.example/"] = goerrors.New("boom")
	monitor := NewSiteMonitor(scanner, time.Hour, nil)

	_, err := monitor.Register("http://broken.example/")
	require.NoError(t, err)
	_, err = monitor.Register("http://healthy.example/")
	require.NoError(t, err)

	monitor.Sweep(context.Background())

	assert.Equal(t, []string{"http://broken.example/", "http://healthy.example/"}, scanner.scanCalls(),
		"sweep must visit targets in registration order despite failures")

	broken := monitor.Snapshot()["http://broken.example/"]
	assert.Nil(t, broken.LastScan)

	healthy := monitor.Snapshot()["http://healthy.example/"]
	assert.NotNil(t, healthy.LastScan)
}

func TestSnapshotSharesNoState(t *testing.T) {
	monitor := NewSiteMonitor(newFakeScanner(), time.Hour, nil)

	_, err := monitor.Register("http://example.com/")
	require.NoError(t, err)

	snapshot := monitor.Snapshot()
	site := snapshot["http://example.com/"]
	site.Alerts = append(site.Alerts, models.Alert{"risk": "High"})
	now := time.Now()
	site.LastScan = &now
	snapshot["http://example.com/"] = site
	delete(snapshot, "http://example.com/")

	fresh := monitor.Snapshot()["http://example.com/"]
	assert.Nil(t, fresh.LastScan)
	assert.Empty(t, fresh.Alerts)
}

// End-to-end through the real orchestrator against a stub daemon.
func TestMonitorEndToEnd(t *testing.T) {
	stub := testutil.NewStubDaemon()
	stub.Alerts = []models.Alert{{"risk": "High", "description": "SQL injection", "url": "http://example.com/q"}}
	orchestrator := NewScanOrchestrator(stub, OrchestratorOptions{
		PollInterval: 5 * time.Millisecond,
		ScanTimeout:  time.Second,
	})
	monitor := NewSiteMonitor(orchestrator, time.Hour, nil)

	_, err := monitor.Register("http://example.com/")
	require.NoError(t, err)

	initial := monitor.Snapshot()["http://example.com/"]
	assert.Nil(t, initial.LastScan)
	assert.Empty(t, initial.Alerts)

	ctx, cancel := testutil.WithTimeout(t, 5*time.Second)
	defer cancel()
	monitor.Sweep(ctx)

	swept := monitor.Snapshot()["http://example.com/"]
	require.NotNil(t, swept.LastScan)
	assert.Equal(t, stub.Alerts, swept.Alerts)
}

func TestRunSweepsOnTicker(t *testing.T) {
	scanner := newFakeScanner()
	monitor := NewSiteMonitor(scanner, 20*time.Millisecond, nil)

	_, err := monitor.Register("http://example.com/")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return len(scanner.scanCalls()) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
