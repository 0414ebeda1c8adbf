package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/time"
)

// TestDBHostEnv names the variable that enables database integration tests
const TestDBHostEnv = "TL_TEST_DB_HOST"

// TestDBManager provides utilities for testing with a database
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to the test database and migrates it.
// The test is skipped when TL_TEST_DB_HOST is not set.
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv(TestDBHostEnv)
	if !ok || host == "" {
		t.Skipf("%s not set, skipping database integration test", TestDBHostEnv)
	}

	timeProvider := timeprovider.NewRealTimeProvider()

	config := DefaultConfig()
	config.Host = host
	config.Port = getEnvIntOrDefault("TL_TEST_DB_PORT", 5432)
	config.Username = getEnvOrDefault("TL_TEST_DB_USER", "postgres")
	config.Password = getEnvOrDefault("TL_TEST_DB_PASSWORD", "postgres")
	config.Database = getEnvOrDefault("TL_TEST_DB_NAME", "tts_ledger_test")
	config.MaxOpenConns = 20
	config.MaxIdleConns = 10
	config.QueryTimeout = 5 * time.Second
	config.LogLevel = "silent"
	config.RetryAttempts = 1
	config.UnitRetries = 10

	manager := NewManager(config, logger, timeProvider)
	if _, err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	m := &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
	m.SetupTestDB(t)
	return m
}

// SetupTestDB drops every table and runs the migrations from scratch
func (m *TestDBManager) SetupTestDB(t *testing.T) {
	t.Helper()

	if err := dropAllTables(m.Manager.DB()); err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}
	if err := m.Manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

// dropAllTables drops all tables in the test database
func dropAllTables(db *gorm.DB) error {
	return db.Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error
}

// CreateTestUser inserts a user with a balance and returns its ID
func (m *TestDBManager) CreateTestUser(t *testing.T, balance int64) uuid.UUID {
	t.Helper()

	db := m.Manager.DB()
	now := m.TimeProvider.Now()

	user := model.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	row := model.Balance{
		ID:        uuid.New(),
		UserID:    user.ID,
		Amount:    decimal.NewFromInt(balance),
		UpdatedAt: now,
	}
	if err := db.Omit("User").Create(&row).Error; err != nil {
		t.Fatalf("Failed to create test balance: %v", err)
	}
	return user.ID
}

// CreateTestRate inserts the exchange rate singleton
func (m *TestDBManager) CreateTestRate(t *testing.T, rate string) {
	t.Helper()

	row := model.ExchangeRate{
		ID:         uuid.New(),
		Singleton:  true,
		Rate:       decimal.RequireFromString(rate),
		LastUpdate: m.TimeProvider.Now(),
	}
	if err := m.Manager.DB().Create(&row).Error; err != nil {
		t.Fatalf("Failed to create test rate: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
