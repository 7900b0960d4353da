package application

import (
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/policy"
)

// Metrics receives operational counters from the application services.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Denied(action policy.Action)
	Revealed()
	DecryptFailed()
	AuditFailed()
	ScanCompleted(alerts, criticals int, took time.Duration)
	ScanFailed()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) Denied(policy.Action) {}
func (NopMetrics) Revealed() {}
func (NopMetrics) DecryptFailed() {}
func (NopMetrics) AuditFailed() {}
func (NopMetrics) ScanCompleted(int, int, time.Duration) {}
func (NopMetrics) ScanFailed() {}
