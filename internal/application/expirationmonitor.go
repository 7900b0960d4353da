package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// DefaultScanHour is the local hour of the daily scan when none is configured.
const DefaultScanHour = 1

// ScanResult summarizes one expiration scan.
type ScanResult struct {
	StartedAt     time.Time
	Today         time.Time
	Alerts        int
	Criticals     int
	Notifications []model.Notification
	Err           string // Non-empty when the scan failed.
}

// scanRequest represents a manual scan trigger.
type scanRequest struct {
	done chan scanReply
}

type scanReply struct {
	result ScanResult
	err    error
}

// MonitorOption configures optional ExpirationMonitor collaborators.
type MonitorOption func(*ExpirationMonitor)

// WithMonitorLogger sets the logger. The default is slog.Default().
func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *ExpirationMonitor) { m.logger = l }
}

// WithMonitorMetrics sets the metrics sink. The default discards.
func WithMonitorMetrics(mt Metrics) MonitorOption {
	return func(m *ExpirationMonitor) { m.metrics = mt }
}

// WithScanHour sets the local hour (0-23) of the daily scan.
func WithScanHour(hour int) MonitorOption {
	return func(m *ExpirationMonitor) { m.scanHour = hour }
}

// ExpirationMonitor classifies credentials that are expired or about to
// expire and appends one notification per credential on every scan.
type ExpirationMonitor struct {
	creds         driven.CredentialStore
	notifications driven.NotificationStore
	clock         driven.Clock
	windowDays    int
	scanHour      int
	logger        *slog.Logger
	metrics       Metrics
	scanCh        chan scanRequest

	mu       sync.RWMutex
	lastScan *ScanResult
}

// NewExpirationMonitor creates a new ExpirationMonitor. windowDays must be
// the same value the VaultService uses so both views agree.
func NewExpirationMonitor(
	creds driven.CredentialStore,
	notifications driven.NotificationStore,
	clock driven.Clock,
	windowDays int,
	opts ...MonitorOption,
) *ExpirationMonitor {
	if windowDays <= 0 {
		windowDays = DefaultAlertWindowDays
	}
	m := &ExpirationMonitor{
		creds:         creds,
		notifications: notifications,
		clock:         clock,
		windowDays:    windowDays,
		scanHour:      DefaultScanHour,
		logger:        slog.Default(),
		metrics:       NopMetrics{},
		scanCh:        make(chan scanRequest),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs an immediate scan, then one every day at the configured hour.
// It also serves manual TriggerScan requests. Start blocks until the context
// is canceled.
func (m *ExpirationMonitor) Start(ctx context.Context) {
	if _, err := m.RunExpirationScan(ctx); err != nil {
		m.logger.Error("initial expiration scan failed", "error", err)
	}

	timer := time.NewTimer(m.untilNextScan())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("expiration monitor stopped")
			return
		case <-timer.C:
			if _, err := m.RunExpirationScan(ctx); err != nil {
				m.logger.Error("scheduled expiration scan failed", "error", err)
			}
			timer.Reset(m.untilNextScan())
		case req := <-m.scanCh:
			result, err := m.RunExpirationScan(ctx)
			req.done <- scanReply{result: result, err: err}
		}
	}
}

// TriggerScan asks the running monitor loop for an immediate scan and waits
// for its result. It blocks until the scan completes or ctx is canceled.
func (m *ExpirationMonitor) TriggerScan(ctx context.Context) (ScanResult, error) {
	req := scanRequest{done: make(chan scanReply, 1)}

	select {
	case m.scanCh <- req:
	case <-ctx.Done():
		return ScanResult{}, ctx.Err()
	}

	select {
	case reply := <-req.done:
		return reply.result, reply.err
	case <-ctx.Done():
		return ScanResult{}, ctx.Err()
	}
}

// RunExpirationScan fetches every active credential expiring on or before
// today plus the alert window and appends one notification for each.
func (m *ExpirationMonitor) RunExpirationScan(ctx context.Context) (ScanResult, error) {
	start := m.clock.Now()
	today := m.clock.Today()
	limit := model.AddDays(today, m.windowDays)

	result := ScanResult{StartedAt: start, Today: today}

	creds, err := m.creds.FindExpiringBy(ctx, limit)
	if err != nil {
		m.metrics.ScanFailed()
		result.Err = err.Error()
		m.recordScan(result)
		return result, fmt.Errorf("find expiring credentials: %w", err)
	}

	for _, cred := range creds {
		if cred.ExpiresOn == nil {
			continue
		}

		kind := ClassifyExpiration(*cred.ExpiresOn, today)
		n := m.notifications.Append(kind, expirationMessage(kind, cred, today))
		result.Notifications = append(result.Notifications, n)

		if kind == model.NotificationCritical {
			result.Criticals++
		} else {
			result.Alerts++
		}
	}

	took := m.clock.Now().Sub(start)
	m.metrics.ScanCompleted(result.Alerts, result.Criticals, took)
	m.recordScan(result)

	m.logger.Info("expiration scan complete",
		"today", today.Format(model.DateLayout),
		"window_days", m.windowDays,
		"alerts", result.Alerts,
		"criticals", result.Criticals,
		"duration", took,
	)
	return result, nil
}

// LastScan returns the most recent scan result, if any scan has run.
func (m *ExpirationMonitor) LastScan() (ScanResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastScan == nil {
		return ScanResult{}, false
	}
	return *m.lastScan, true
}

func (m *ExpirationMonitor) untilNextScan() time.Duration {
	now := m.clock.Now()
	return nextScanAt(now, m.scanHour).Sub(now)
}

func (m *ExpirationMonitor) recordScan(r ScanResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastScan = &r
}

func expirationMessage(kind model.NotificationKind, cred model.Credential, today time.Time) string {
	owner := cred.Owner.Name
	if owner == "" {
		owner = cred.Owner.Email
	}
	date := cred.ExpiresOn.Format(model.DateLayout)

	if kind == model.NotificationCritical {
		return fmt.Sprintf("CRITICAL: credential '%s' (owner: %s) expired on %s", cred.Title, owner, date)
	}

	days := model.DaysBetween(today, model.Date(*cred.ExpiresOn))
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("ALERT: credential '%s' (owner: %s) expires in %d %s (%s)", cred.Title, owner, days, unit, date)
}

// nextScanAt returns the next occurrence of hour:00 strictly after now, in
// now's location.
func nextScanAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
