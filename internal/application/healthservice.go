package application

import (
	"context"
	"time"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ScanReporter exposes the most recent expiration scan.
type ScanReporter interface {
	LastScan() (ScanResult, bool)
}

// HealthReport is the liveness view served to probes.
type HealthReport struct {
	Healthy  bool
	Database string // "ok" or the ping error.
	LastScan *ScanSummary
	Time     time.Time
}

// ScanSummary is the part of a ScanResult shown in health output.
type ScanSummary struct {
	StartedAt time.Time
	Alerts    int
	Criticals int
	Err       string
}

// HealthService reports whether the vault can serve requests. A failed last
// scan is reported but does not make the service unhealthy.
type HealthService struct {
	db      Pinger
	scans   ScanReporter
	nowFunc func() time.Time
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(db Pinger, scans ScanReporter) *HealthService {
	return &HealthService{db: db, scans: scans, nowFunc: time.Now}
}

// Check pings the database and summarizes the last scan.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{Healthy: true, Database: "ok", Time: s.nowFunc()}

	if err := s.db.Ping(ctx); err != nil {
		report.Healthy = false
		report.Database = err.Error()
	}

	if r, ok := s.scans.LastScan(); ok {
		report.LastScan = &ScanSummary{
			StartedAt: r.StartedAt,
			Alerts:    r.Alerts,
			Criticals: r.Criticals,
			Err:       r.Err,
		}
	}

	return report
}
