package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stock-alert-backend/config"
	"stock-alert-backend/middleware"
	"stock-alert-backend/models"
	"stock-alert-backend/routes"
	"stock-alert-backend/scheduler"
	"stock-alert-backend/services"
	"stock-alert-backend/services/cache"
)

// dbInitialized tracks whether the database has been successfully
// initialized, guarded for access from the /ready handler while the
// background init goroutine is still working
var dbInitialized bool
var dbInitMutex sync.RWMutex

// jobScheduler is written by the background init goroutine and read
// during shutdown, guarded by the same pattern
var jobScheduler *scheduler.Scheduler
var jobSchedulerMutex sync.Mutex

func main() {
	log.Println("==============================================")
	log.Println("  Stock Alert Backend - Starting...")
	log.Println("==============================================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Config load issue: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger())

	// Health check endpoints FIRST so the platform can detect the service
	// is up while the database initializes in the background
	setupHealthEndpoints(router)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		log.Println("==============================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Initialize database, services, and routes in background
	go func() {
		db, err := config.InitDB()
		if err != nil {
			log.Printf("ERROR: Database connection failed: %v", err)
			log.Println("Service will continue in limited mode (health check only)")
			return
		}

		log.Println("Running database migrations...")
		if err := runMigrations(); err != nil {
			log.Printf("ERROR: Migration failed: %v", err)
		} else {
			log.Println("Database migrations completed successfully")
		}

		if err := models.SeedDefaultAdminUser(config.DB); err != nil {
			log.Printf("Warning: Could not seed admin user: %v", err)
		}

		initializeGlobalServices(cfg)

		dbInitMutex.Lock()
		dbInitialized = true
		dbInitMutex.Unlock()

		routes.SetupRoutes(router, db)

		js := scheduler.NewScheduler()
		jobSchedulerMutex.Lock()
		jobScheduler = js
		jobSchedulerMutex.Unlock()
		go js.Start()

		if err := services.GlobalStreamService.StartPolling(); err != nil {
			log.Printf("Warning: Could not start quote polling: %v", err)
		}

		log.Println("Application fully initialized with database")
	}()

	gracefulShutdown(server)
}

// runMigrations runs all database migrations
func runMigrations() error {
	db := config.DB

	if err := models.MigrateUserModels(db); err != nil {
		return err
	}
	if err := models.MigrateAlertModels(db); err != nil {
		return err
	}
	if err := models.MigrateWatchlistModels(db); err != nil {
		return err
	}
	if err := models.MigrateDividendModels(db); err != nil {
		return err
	}
	if err := models.MigrateIPOModels(db); err != nil {
		return err
	}
	return nil
}

// initializeGlobalServices wires up the global service instances in
// dependency order
func initializeGlobalServices(cfg *config.Config) {
	responseCache := cache.New()

	if err := services.InitMarketService(cfg.MarketDataURL, responseCache); err != nil {
		log.Printf("Warning: Failed to initialize market service: %v", err)
	}
	if err := services.InitDividendService(services.GlobalMarketService); err != nil {
		log.Printf("Warning: Failed to initialize dividend service: %v", err)
	}
	if err := services.InitEmailService(cfg); err != nil {
		log.Printf("Email not configured: %v", err)
	}
	if err := services.InitHistoryStore(cfg.HistoryDBPath); err != nil {
		log.Printf("Warning: Failed to open history store: %v", err)
	}
	if err := services.InitEventArchive(cfg.MongoURI); err != nil {
		log.Printf("MongoDB not configured or failed to connect: %v", err)
	}
	if err := services.InitAlertService(config.DB, responseCache,
		services.GlobalMarketService, services.GlobalDividendService); err != nil {
		log.Printf("Warning: Failed to initialize alert service: %v", err)
	}
	if err := services.InitIPOService(config.DB, services.GlobalAlertService); err != nil {
		log.Printf("Warning: Failed to initialize IPO service: %v", err)
	}
	if err := services.InitStreamService(services.GlobalMarketService); err != nil {
		log.Printf("Warning: Failed to initialize stream service: %v", err)
	}

	middleware.InitLoginRateLimiter()

	log.Println("Global services initialized")
}

// setupHealthEndpoints sets up liveness and readiness probes
func setupHealthEndpoints(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Stock Alert Backend API",
			"version": "1.0.0",
		})
	})

	// Liveness probe - always returns OK if server is running
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Readiness probe - checks if service is ready to receive traffic
	router.GET("/ready", func(c *gin.Context) {
		dbInitMutex.RLock()
		isDBReady := dbInitialized
		dbInitMutex.RUnlock()

		if !isDBReady {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database not connected",
			})
			return
		}

		sqlDB, err := config.DB.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database connection error",
			})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"message": "Database ping failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" || path == "/ready" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.Printf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), duration)
		}
	}
}

// gracefulShutdown handles graceful shutdown of the server
func gracefulShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal %v, shutting down gracefully...", sig)

	jobSchedulerMutex.Lock()
	js := jobScheduler
	jobSchedulerMutex.Unlock()
	if js != nil {
		js.Stop()
	}
	if services.GlobalStreamService != nil {
		services.GlobalStreamService.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if services.GlobalHistoryStore != nil {
		if err := services.GlobalHistoryStore.Close(); err != nil {
			log.Printf("History store close error: %v", err)
		}
	}
	if services.GlobalEventArchive != nil {
		services.GlobalEventArchive.Close()
	}
	if config.DB != nil {
		sqlDB, err := config.DB.DB()
		if err == nil {
			sqlDB.Close()
			log.Println("Database connection closed")
		}
	}

	log.Println("Server shutdown completed")
}
