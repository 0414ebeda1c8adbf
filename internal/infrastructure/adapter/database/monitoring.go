package database

import (
	"time"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// DefaultSlowUnitThreshold is the duration above which a unit of work is logged as slow
const DefaultSlowUnitThreshold = 500 * time.Millisecond

// MetricsCollector times units of work and reports the slow ones
type MetricsCollector struct {
	logger        coreport.Logger
	timeProvider  coreport.TimeProvider
	slowThreshold time.Duration
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider) *MetricsCollector {
	return &MetricsCollector{
		logger:        logger,
		timeProvider:  timeProvider,
		slowThreshold: DefaultSlowUnitThreshold,
	}
}

// MeasureUnit runs fn and logs it when it takes longer than the slow threshold
func (c *MetricsCollector) MeasureUnit(operation string, fn func() error) error {
	start := c.timeProvider.Now()
	err := fn()
	elapsed := c.timeProvider.Since(start).Std()

	if elapsed > c.slowThreshold {
		fields := map[string]any{
			"operation":   operation,
			"duration_ms": elapsed.Milliseconds(),
			"failed":      err != nil,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		c.logger.Warn("Slow unit of work detected", fields)
	}
	return err
}
