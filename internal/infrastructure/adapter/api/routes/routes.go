package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups every HTTP handler the router serves
type Handlers struct {
	User         *handler.UserHandler
	Transaction  *handler.TransactionHandler
	Generation   *handler.GenerationHandler
	ExchangeRate *handler.ExchangeRateHandler
	Health       *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Check)

	router.GET("/exchange-rate", h.ExchangeRate.Get)
	router.PUT("/exchange-rate", h.ExchangeRate.Set)

	router.POST("/user", h.User.Register)

	userRoutes := router.Group("/user/:userId")
	{
		userRoutes.GET("/balance", h.User.GetBalance)

		userRoutes.POST("/transactions", h.Transaction.Create)
		userRoutes.GET("/transactions", h.Transaction.List)
		userRoutes.GET("/transactions/:transactionId", h.Transaction.Get)
		userRoutes.POST("/transactions/:transactionId/settle", h.Transaction.Settle)

		userRoutes.POST("/generations", h.Generation.Request)
		userRoutes.GET("/generations", h.Generation.List)
		userRoutes.GET("/generations/:generationId", h.Generation.Get)
		userRoutes.GET("/generations/:generationId/audio", h.Generation.Audio)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
}

// NewRouter builds a gin engine with middlewares and routes installed
func NewRouter(h Handlers, logger coreport.Logger, timeProvider coreport.TimeProvider) *gin.Engine {
	router := gin.New()
	SetupMiddlewares(router, logger, timeProvider)
	SetupRoutes(router, h)
	return router
}
