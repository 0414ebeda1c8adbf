package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// poolSaturation is the in-use share of MaxOpenConns above which the pool is reported as saturated
const poolSaturation = 0.8

// PoolSnapshot is one sample of the connection pool
type PoolSnapshot struct {
	Open         int
	InUse        int
	Idle         int
	MaxOpen      int
	WaitCount    int64
	WaitDuration time.Duration
	SampledAt    time.Time
}

func snapshotOf(stats sql.DBStats, at time.Time) PoolSnapshot {
	return PoolSnapshot{
		Open:         stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
		MaxOpen:      stats.MaxOpenConnections,
		WaitCount:    stats.WaitCount,
		WaitDuration: stats.WaitDuration,
		SampledAt:    at,
	}
}

// poolPressure describes what changed between two samples
type poolPressure struct {
	saturated bool
	newWaits  int64
	waitDelta time.Duration
}

func (p poolPressure) any() bool { return p.saturated || p.newWaits > 0 }

// assessPool compares cur with the previous sample. Settlements that queue for a
// connection show up as new waits even when the pool looks idle at sampling time.
func assessPool(prev, cur PoolSnapshot) poolPressure {
	var p poolPressure
	if cur.MaxOpen > 0 && float64(cur.InUse) > float64(cur.MaxOpen)*poolSaturation {
		p.saturated = true
	}
	if cur.WaitCount > prev.WaitCount {
		p.newWaits = cur.WaitCount - prev.WaitCount
		p.waitDelta = cur.WaitDuration - prev.WaitDuration
	}
	return p
}

// PoolMonitor samples the connection pool on an interval and warns under pressure
type PoolMonitor struct {
	stats        func() (sql.DBStats, error)
	logger       coreport.Logger
	timeProvider coreport.TimeProvider

	mu   sync.RWMutex
	last PoolSnapshot

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPoolMonitor creates a monitor for the pool behind db
func NewPoolMonitor(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *PoolMonitor {
	return newPoolMonitor(func() (sql.DBStats, error) {
		sqlDB, err := db.DB()
		if err != nil {
			return sql.DBStats{}, fmt.Errorf("failed to get database connection: %w", err)
		}
		return sqlDB.Stats(), nil
	}, logger, timeProvider)
}

func newPoolMonitor(stats func() (sql.DBStats, error), logger coreport.Logger, timeProvider coreport.TimeProvider) *PoolMonitor {
	return &PoolMonitor{
		stats:        stats,
		logger:       logger,
		timeProvider: timeProvider,
		stop:         make(chan struct{}),
	}
}

// Start takes a first sample and keeps sampling until Stop
func (m *PoolMonitor) Start(interval time.Duration) error {
	if err := m.sample(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.sample(); err != nil {
					m.logger.Error("Failed to sample connection pool", map[string]any{"error": err.Error()})
				}
			case <-m.stop:
				return
			}
		}
	}()
	return nil
}

// Stop ends sampling. It is safe to call more than once.
func (m *PoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Last returns the most recent sample
func (m *PoolMonitor) Last() PoolSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *PoolMonitor) sample() error {
	stats, err := m.stats()
	if err != nil {
		return err
	}
	cur := snapshotOf(stats, m.timeProvider.Now())

	m.mu.Lock()
	prev := m.last
	m.last = cur
	m.mu.Unlock()

	if p := assessPool(prev, cur); p.any() {
		m.logger.Warn("Database connection pool under pressure", map[string]any{
			"in_use":    cur.InUse,
			"max_open":  cur.MaxOpen,
			"idle":      cur.Idle,
			"saturated": p.saturated,
			"new_waits": p.newWaits,
			"wait_time": p.waitDelta.String(),
		})
	}
	return nil
}

// HealthChecker answers liveness probes for the database
type HealthChecker struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *gorm.DB, logger coreport.Logger) *HealthChecker {
	return &HealthChecker{
		db:     db,
		logger: logger,
	}
}

// Check pings the database and logs pool stats when the ping fails
func (h *HealthChecker) Check(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats := sqlDB.Stats()
		h.logger.Error("Database ping failed", map[string]any{
			"error":            err.Error(),
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"wait_count":       stats.WaitCount,
		})
		return err
	}
	return nil
}
