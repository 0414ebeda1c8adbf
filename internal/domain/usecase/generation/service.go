package generation

import (
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	genport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
)

const (
	// DefaultListLimit is used when a caller asks for no particular page size
	DefaultListLimit = 50
	// MaxListLimit caps a single page of generation records
	MaxListLimit = 200
)

// ServiceConfig holds the request-side generation settings
type ServiceConfig struct {
	// Description is the speaker description sent with every task
	Description string
	// PublishTimeout bounds a single dispatch including its retries
	PublishTimeout coreport.Duration
}

// Service pays for generations, records them and dispatches them to the workers
type Service struct {
	transactions usecase.TransactionUseCase
	balanceRepo  persistence.BalanceRepository
	genRepo      persistence.GenerationRepository
	publisher    messaging.TaskPublisher
	estimator    genport.TokenEstimator
	artifacts    genport.ArtifactStore
	config       ServiceConfig
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new generation service
func NewService(
	transactions usecase.TransactionUseCase,
	balanceRepo persistence.BalanceRepository,
	genRepo persistence.GenerationRepository,
	publisher messaging.TaskPublisher,
	estimator genport.TokenEstimator,
	artifacts genport.ArtifactStore,
	config ServiceConfig,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) usecase.GenerationUseCase {
	if config.Description == "" {
		config.Description = entity.DefaultSpeakerDescription
	}
	return &Service{
		transactions: transactions,
		balanceRepo:  balanceRepo,
		genRepo:      genRepo,
		publisher:    publisher,
		estimator:    estimator,
		artifacts:    artifacts,
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
