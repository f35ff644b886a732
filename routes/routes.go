package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stock-alert-backend/controllers"
	"stock-alert-backend/middleware"
	"stock-alert-backend/services"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB) {
	// Initialize controllers against the global services
	authController := controllers.NewAuthController(db)
	stockController := controllers.NewStockController(services.GlobalMarketService)
	alertController := controllers.NewAlertController(services.GlobalAlertService, services.GlobalHistoryStore)
	watchlistController := controllers.NewWatchlistController(db, services.GlobalMarketService)
	dividendController := controllers.NewDividendController(db, services.GlobalDividendService, services.GlobalAlertService)
	ipoController := controllers.NewIPOController(services.GlobalIPOService)
	cacheController := controllers.NewCacheController(services.GlobalMarketService.Cache(), services.GlobalMarketService)

	// API v1 group
	api := router.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", middleware.LoginRateLimitMiddleware(), authController.Login)
			auth.GET("/me", middleware.JWTAuthMiddleware(), authController.Me)
			auth.PUT("/preferences", middleware.JWTAuthMiddleware(), authController.UpdatePreferences)
		}

		// Stock routes (public)
		stocks := api.Group("/stocks")
		{
			stocks.GET("", stockController.GetStocks)
			stocks.GET("/:symbol", stockController.GetStock)
			stocks.GET("/:symbol/details", stockController.GetStockDetails)
			stocks.GET("/:symbol/indicators", stockController.GetStockIndicators)
			stocks.GET("/:symbol/history", stockController.GetStockHistory)
		}

		// Dividend routes (public)
		dividends := api.Group("/dividends")
		{
			dividends.GET("/yields", dividendController.GetYields)
			dividends.GET("/announcements", dividendController.GetAnnouncements)
		}

		// IPO routes (public)
		ipos := api.Group("/ipos")
		{
			ipos.GET("", ipoController.GetIPOs)
			ipos.GET("/upcoming", ipoController.GetUpcomingIPOs)
		}

		// Alert routes (authenticated)
		alerts := api.Group("/alerts", middleware.JWTAuthMiddleware())
		{
			alerts.GET("", alertController.GetAlerts)
			alerts.POST("", alertController.CreateAlert)
			alerts.GET("/history", alertController.GetTriggerHistory)
			alerts.GET("/:id", alertController.GetAlert)
			alerts.PUT("/:id", alertController.UpdateAlert)
			alerts.DELETE("/:id", alertController.DeleteAlert)
		}

		// Watchlist routes (authenticated)
		watchlist := api.Group("/watchlist", middleware.JWTAuthMiddleware())
		{
			watchlist.GET("", watchlistController.GetWatchlist)
			watchlist.POST("", watchlistController.AddToWatchlist)
			watchlist.DELETE("/:symbol", watchlistController.RemoveFromWatchlist)
		}

		// Admin routes
		admin := api.Group("/admin", middleware.JWTAuthMiddleware(), middleware.AdminRoleMiddleware())
		{
			admin.GET("/cache", cacheController.GetStats)
			admin.POST("/cache/clear", cacheController.ClearCache)
			admin.POST("/cache/prune", cacheController.PruneCache)
			admin.POST("/cache/invalidate/stocks", cacheController.InvalidateStocks)
			admin.POST("/cache/invalidate/alerts", cacheController.InvalidateAlerts)
			admin.POST("/alerts/check", alertController.RunAlertCheck)
			admin.POST("/dividends/announcements", dividendController.CreateAnnouncement)
			admin.POST("/ipos", ipoController.CreateIPO)
			admin.POST("/ipos/check", ipoController.CheckIPOListings)
		}
	}

	// WebSocket quote stream
	router.GET("/ws/quotes", func(c *gin.Context) {
		services.GlobalStreamService.HandleWebSocket(c.Writer, c.Request)
	})
}
