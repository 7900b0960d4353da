package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextScanAt(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{"before hour today", time.Date(2026, 10, 18, 0, 30, 0, 0, loc), 1, time.Date(2026, 10, 18, 1, 0, 0, 0, loc)},
		{"exactly at hour", time.Date(2026, 10, 18, 1, 0, 0, 0, loc), 1, time.Date(2026, 10, 19, 1, 0, 0, 0, loc)},
		{"after hour", time.Date(2026, 10, 18, 13, 0, 0, 0, loc), 1, time.Date(2026, 10, 19, 1, 0, 0, 0, loc)},
		{"end of month", time.Date(2026, 10, 31, 23, 0, 0, 0, loc), 1, time.Date(2026, 11, 1, 1, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextScanAt(tt.now, tt.hour))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", normalizeEmail("  Alice@Example.COM "))
}
