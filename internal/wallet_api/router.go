package wallet_api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/wallet_api/handler"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
)

const readinessTimeout = 2 * time.Second

type routerDeps struct {
	logger             *slog.Logger
	verifier           *middleware.TokenVerifier
	idempotency        gin.HandlerFunc
	userHandler        *handler.UserHandler
	walletHandler      *handler.WalletHandler
	transactionHandler *handler.TransactionHandler
	passbookHandler    *handler.PassbookHandler
	currencyHandler    *handler.CurrencyHandler
	checks             map[string]HealthCheck
}

// setupRouter configures API routes and middleware for the application
func setupRouter(r *gin.Engine, d routerDeps) {
	r.Use(middleware.Recovery(d.logger))
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.CorrelationID())

	v1 := r.Group("/api/v1")
	{
		// Registration is the only unauthenticated API route
		v1.POST("/users", d.idempotency, d.userHandler.Register)

		authed := v1.Group("", middleware.Auth(d.verifier, d.logger))

		users := authed.Group("/users")
		{
			users.DELETE("/me", d.userHandler.Delete)
		}

		wallets := authed.Group("/wallets")
		{
			wallets.POST("", d.idempotency, d.walletHandler.Create)
			wallets.GET("", d.walletHandler.List)
			wallets.POST("/:id/deposit", d.idempotency, d.walletHandler.Deposit)
			wallets.POST("/:id/withdraw", d.idempotency, d.walletHandler.Withdraw)
			wallets.GET("/:id/entries", d.walletHandler.Entries)
		}

		transactions := authed.Group("/transactions")
		{
			transactions.POST("", d.idempotency, d.transactionHandler.Create)
			transactions.GET("", d.transactionHandler.List)
		}

		authed.GET("/passbook", d.passbookHandler.List)

		currencies := authed.Group("/currencies")
		{
			currencies.GET("", d.currencyHandler.List)
			currencies.GET("/:code", d.currencyHandler.Get)
		}

		admin := authed.Group("/admin", middleware.Admin())
		{
			admin.POST("/currencies", d.idempotency, d.currencyHandler.Add)
			admin.PUT("/currencies", d.currencyHandler.UpdateMany)
			admin.PUT("/currencies/:code", d.currencyHandler.Update)
		}
	}

	// Liveness
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Readiness pings every dependency
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for name, check := range d.checks {
			if err := check(ctx); err != nil {
				d.logger.Warn("Readiness check failed", "dependency", name, "error", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"checks": results})
	})
}
