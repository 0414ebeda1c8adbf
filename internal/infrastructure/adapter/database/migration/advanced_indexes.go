package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// AdvancedIndexManager manages PostgreSQL-specific indexes that struct tags cannot express
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

var advancedIndexes = []struct {
	name, stmt string
}{
	// lock cleanup scans expired leases
	{"idx_user_locks_expires_at", `
		CREATE INDEX IF NOT EXISTS idx_user_locks_expires_at
		ON user_locks (expires_at)`},
	// workers and operators look for stuck work
	{"idx_transactions_processing", `
		CREATE INDEX IF NOT EXISTS idx_transactions_processing
		ON transactions (created_at)
		WHERE status = 'PROCESSING'`},
	{"idx_generations_processing", `
		CREATE INDEX IF NOT EXISTS idx_generations_processing
		ON generations (created_at)
		WHERE status = 'PROCESSING'`},
	{"idx_transactions_created_at_brin", `
		CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin
		ON transactions USING BRIN (created_at)
		WITH (pages_per_range = 32)`},
	{"idx_users_email_lower", `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower
		ON users (LOWER(email))`},
}

// CreateAdvancedIndexes creates the partial, BRIN and expression indexes
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	for _, idx := range advancedIndexes {
		if err := m.db.WithContext(ctx).Exec(idx.stmt).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", nil)
	return nil
}

// CreatePerformanceTweaks applies PostgreSQL storage tweaks. Failures are logged only.
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	// balance rows are rewritten on every settlement
	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE balances SET (fillfactor = 80)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for balances table", map[string]any{
			"error": err.Error(),
		})
	}

	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE transactions ALTER COLUMN user_id SET STATISTICS 1000`).Error; err != nil {
		m.logger.Warn("Failed to set statistics target for user_id", map[string]any{
			"error": err.Error(),
		})
	}
}
