package routes

import (
	"os"
	"strings"

	"vaultcontrol/internal/handlers"
	"vaultcontrol/internal/middleware"
	"vaultcontrol/pkg/stream"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(hub *stream.Hub) *gin.Engine {
	r := gin.Default()

	// Add health check endpoint
	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Configure CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Get allowed origins from environment variable
		// Format: comma-separated list, e.g., "http://localhost:3000,http://localhost:3001"
		allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
		var allowedOrigins []string

		if allowedOriginsStr != "" {
			origins := strings.Split(allowedOriginsStr, ",")
			for _, o := range origins {
				trimmed := strings.TrimSpace(o)
				if trimmed != "" {
					allowedOrigins = append(allowedOrigins, trimmed)
				}
			}
		}

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Rate limit mutating traffic
	r.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 50,
		Burst:             100,
	}))

	// Websocket event stream
	if hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			hub.Serve(c.Writer, c.Request)
		})
	}

	// Setup routes for each module
	SetupVaultRoutes(r)
	SetupStrategyRoutes(r)
	SetupGovernanceRoutes(r)
	SetupRecordRoutes(r)

	return r
}

// SetupVaultRoutes sets up the share ledger and view endpoints
func SetupVaultRoutes(r *gin.Engine) {
	vault := r.Group("/vault")
	{
		vault.GET("/state", handlers.GetVaultState)
		vault.GET("/balance/:holder", handlers.GetBalance)
		vault.GET("/allowance", handlers.GetAllowance)
		vault.GET("/convert", handlers.Convert)
		vault.GET("/limits", handlers.GetLimits)

		vault.POST("/deposit", handlers.Deposit)
		vault.POST("/mint", handlers.Mint)
		vault.POST("/withdraw", handlers.Withdraw)
		vault.POST("/redeem", handlers.Redeem)
		vault.POST("/transfer", handlers.Transfer)
		vault.POST("/transfer-from", handlers.TransferFrom)
		vault.POST("/approve", handlers.Approve)
		vault.POST("/faucet", handlers.Faucet)
	}
}

// SetupStrategyRoutes sets up strategy registry, queue and harvest endpoints
func SetupStrategyRoutes(r *gin.Engine) {
	strategies := r.Group("/strategies")
	{
		strategies.GET("", handlers.ListStrategies)
		strategies.GET("/queue", handlers.GetWithdrawalQueue)
		strategies.GET("/:address", handlers.GetStrategy)
		strategies.POST("", handlers.AddStrategy)
		strategies.PATCH("/:address/debt-ratio", handlers.UpdateStrategyDebtRatio)
		strategies.PATCH("/:address/min-debt", handlers.UpdateStrategyMinDebt)
		strategies.PATCH("/:address/max-debt", handlers.UpdateStrategyMaxDebt)
		strategies.PATCH("/:address/performance-fee", handlers.UpdateStrategyPerformanceFee)
		strategies.POST("/:address/revoke", handlers.RevokeStrategy)
		strategies.POST("/:address/queue", handlers.AddToQueue)
		strategies.DELETE("/:address/queue", handlers.RemoveFromQueue)
		strategies.POST("/:address/queue/insert", handlers.InsertToQueue)
		strategies.POST("/:address/simulate", handlers.Simulate)
		strategies.POST("/:address/harvest", handlers.Harvest)
		strategies.POST("/:address/harvest-async", handlers.RequestHarvest)
	}

	r.POST("/report", handlers.Report)
}

// SetupGovernanceRoutes sets up the privileged configuration endpoints
func SetupGovernanceRoutes(r *gin.Engine) {
	governance := r.Group("/governance")
	{
		governance.POST("/set-governance", handlers.SetGovernance)
		governance.POST("/accept-governance", handlers.AcceptGovernance)
		governance.POST("/set-management", handlers.SetManagement)
		governance.POST("/set-guardian", handlers.SetGuardian)
		governance.POST("/set-fee-recipient", handlers.SetFeeRecipient)
		governance.POST("/set-deposit-limit", handlers.SetDepositLimit)
		governance.POST("/set-emergency-shutdown", handlers.SetEmergencyShutdown)
		governance.POST("/set-management-fee", handlers.SetManagementFee)
		governance.POST("/set-performance-fee", handlers.SetPerformanceFee)
		governance.POST("/set-dispense-rate", handlers.SetDispenseRate)
		governance.POST("/sweep", handlers.Sweep)
	}
}

// SetupRecordRoutes sets up the persisted history endpoints
func SetupRecordRoutes(r *gin.Engine) {
	records := r.Group("/records")
	{
		records.GET("/snapshots", handlers.ListVaultSnapshots)
		records.GET("/reports", handlers.ListReportRecords)
		records.GET("/withdrawals", handlers.ListWithdrawRecords)
		records.GET("/strategies", handlers.ListStrategyRecords)
	}
}
