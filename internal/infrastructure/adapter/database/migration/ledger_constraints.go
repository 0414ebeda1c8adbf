package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// LedgerConstraints adds the CHECK constraints that keep balances and rates valid
// even when a write bypasses the domain layer
type LedgerConstraints struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewLedgerConstraints creates a new migration instance
func NewLedgerConstraints(db *gorm.DB, logger coreport.Logger) *LedgerConstraints {
	return &LedgerConstraints{
		db:     db,
		logger: logger,
	}
}

var ledgerConstraints = []struct {
	table, name, check string
}{
	{"balances", "chk_balances_amount_non_negative", "amount >= 0"},
	{"exchange_rates", "chk_exchange_rates_rate_positive", "rate > 0"},
	{"exchange_rates", "chk_exchange_rates_singleton", "singleton"},
	{"generations", "chk_generations_tokens_positive", "tokens_spent > 0"},
}

// Run executes the migration
func (m *LedgerConstraints) Run(ctx context.Context) error {
	m.logger.Info("Adding ledger constraints", nil)

	for _, c := range ledgerConstraints {
		exists, err := m.constraintExists(ctx, c.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		stmt := "ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.check + ")"
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Error("Failed to add constraint", map[string]any{
				"constraint": c.name,
				"error":      err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Ledger constraints added", nil)
	return nil
}

func (m *LedgerConstraints) constraintExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM information_schema.table_constraints
		WHERE constraint_name = ?
	`, name).Scan(&count).Error
	if err != nil {
		m.logger.Error("Failed to check constraint existence", map[string]any{"error": err.Error()})
		return false, err
	}
	return count > 0, nil
}
