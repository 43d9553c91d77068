package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/vicuna-trace/ledger/internal/api/middleware"
	"github.com/vicuna-trace/ledger/internal/ratelimit"
)

// SetupRoutes configures all REST API routes.
// limiter budgets the routes that submit or settle transactions; nil disables it.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, limiter ratelimit.Limiter) {
	// Health check endpoint (no auth, no version prefix)
	router.GET(middleware.HEALTH_ROUTE, handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Provenance (public read access)
		v1.GET("/products/:id/provenance", handler.GetProvenance)

		// Minting submits transactions from the service wallet (requires authentication)
		v1.POST("/products/:id/mint", middleware.Auth(authCfg), middleware.RateLimit(limiter), handler.MintProduct)
		v1.POST("/products/:id/recheck", middleware.Auth(authCfg), middleware.RateLimit(limiter), handler.RecheckProduct)

		// Mint attempt journal (requires authentication)
		v1.GET("/mint-attempts", middleware.Auth(authCfg), handler.ListMintAttempts)
	}
}
