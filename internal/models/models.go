package models

import "time"

// ScanMode tags which orchestration path produced a result.
type ScanMode string

const (
	ModeFull         ScanMode = "full"
	ModeQuickPassive ScanMode = "quick-passive"
)

// Alert is a single finding as reported by the scanning daemon. The
// orchestrator never interprets its fields, it only carries them through.
type Alert map[string]any

// ScanResult is the immutable outcome of one orchestrated scan.
type ScanResult struct {
	ScanID      string    `json:"scan_id"`
	Target      string    `json:"target"`
	CompletedAt time.Time `json:"completed_at"`
	Alerts      []Alert   `json:"alerts"`
	Mode        ScanMode  `json:"mode"`
}

// MonitoredSite is the most recent scan outcome for a registered target.
// LastScan stays nil until the first successful sweep.
type MonitoredSite struct {
	Target   string     `json:"target"`
	LastScan *time.Time `json:"last_scan"`
	Alerts   []Alert    `json:"alerts"`
}
