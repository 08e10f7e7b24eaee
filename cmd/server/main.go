package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jayanth-org1/Green-Bus-Server/internal/config"
	"github.com/jayanth-org1/Green-Bus-Server/internal/database"
	"github.com/jayanth-org1/Green-Bus-Server/internal/handlers"
	"github.com/jayanth-org1/Green-Bus-Server/internal/middleware"
	"github.com/jayanth-org1/Green-Bus-Server/internal/services"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/jwt"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/payment"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/sms"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting GreenBus Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize repositories
	bookingRepository := database.NewBookingRepository(db)
	paymentRepository := database.NewPaymentRepository(db)
	routeRepository := database.NewRouteRepository(db)
	notificationLogRepository := database.NewNotificationLogRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// SMS gateway selection. Production talks to Dialog, everything else
	// logs messages instead of sending them.
	var smsSender sms.Sender
	if cfg.Notification.SMSMode == "production" {
		logger.Info("Initializing Dialog SMS Gateway in production mode...")
		smsSender = sms.NewDialogGateway(sms.DialogConfig{
			APIURL:   cfg.Notification.SMSAPIURL,
			Username: cfg.Notification.SMSUsername,
			Password: cfg.Notification.SMSPassword,
			Mask:     cfg.Notification.SMSMask,
		})
	} else {
		logger.Info("SMS gateway running in dev mode, messages are logged only")
		smsSender = sms.NewDevGateway(logger)
	}

	paymentGateway := payment.NewSandboxGateway(payment.SandboxConfig{
		MerchantKey:    cfg.Payment.MerchantKey,
		MerchantSecret: cfg.Payment.MerchantSecret,
		Latency:        cfg.Payment.GatewayLatency,
	}, logger)

	notificationService := services.NewNotificationService(
		smsSender,
		notificationLogRepository,
		cfg.Notification.AdminRecipients,
		logger,
	)
	bookingService := services.NewBookingService(
		bookingRepository,
		paymentRepository,
		routeRepository,
		paymentGateway,
		notificationService,
		cfg.Payment,
		logger,
	)
	reportingService := services.NewReportingService(bookingRepository, paymentRepository, routeRepository, logger)
	receiptService := services.NewReceiptService(bookingRepository, paymentRepository, routeRepository)
	logger.Info("Services initialized")

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, receiptService)
	reportHandler := handlers.NewReportHandler(reportingService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Route catalogue (public)
		routes := v1.Group("/routes")
		{
			routes.GET("", reportHandler.ListRoutes)
			routes.GET("/:id/availability", bookingHandler.GetSeatAvailability)
		}

		// Booking routes (all protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.GetMyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.GET("/:id/receipt", bookingHandler.GetReceipt)
		}

		// Reporting routes (admin only)
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthMiddleware(jwtService))
		reports.Use(middleware.RequireRole("admin"))
		{
			reports.GET("/bookings", reportHandler.GetBookingStats)
			reports.GET("/revenue", reportHandler.GetRevenue)
			reports.GET("/routes/:id/occupancy", reportHandler.GetRouteOccupancy)
			reports.GET("/routes/:id/bookings", reportHandler.ListRouteBookings)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.WithFields(fields).Error("Request completed")
		case c.Writer.Status() >= 400:
			logger.WithFields(fields).Warn("Request completed")
		default:
			logger.WithFields(fields).Info("Request completed")
		}
	}
}

// healthCheckHandler verifies the database connection
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
