package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camlive/internal/core/services"
	httphandlers "camlive/internal/handlers/http"
	"camlive/internal/infrastructure/gateway"
	"camlive/internal/infrastructure/middleware"
	"camlive/internal/infrastructure/monitoring"
	"camlive/internal/infrastructure/repositories"
	"camlive/pkg/config"
	"camlive/pkg/logger"
	"camlive/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/camlive/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	// Tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "camlive",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Repositories
	ctx := context.Background()
	repoFactory, err := repositories.NewRepositoryFactory(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}

	userRepo := repoFactory.CreateUserRepository()
	streamRepo := repoFactory.CreateStreamRepository()
	paymentRepo := repoFactory.CreatePaymentRepository()

	// Core services
	tokenService := services.NewTokenService(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
		cfg.Auth.Issuer,
		cfg.Auth.Audience,
		userRepo,
	)
	sessionService := services.NewSessionService(userRepo, tokenService, cfg.Auth.BcryptCost)
	streamService := services.NewStreamService(streamRepo, cfg.Streaming.RTMPBaseURL, cfg.Streaming.HLSBaseURL)

	// Monitoring
	collector := monitoring.NewCollector(prometheus.DefaultRegisterer)

	// Websocket gateway
	registry := gateway.NewRoomRegistry(collector, log)
	gatewayServer := gateway.NewServer(tokenService, registry, collector, gateway.Config{
		PingInterval:      cfg.Gateway.PingInterval,
		PongTimeout:       cfg.Gateway.PongTimeout,
		WriteTimeout:      cfg.Gateway.WriteTimeout,
		SendBufferSize:    cfg.Gateway.SendBufferSize,
		MaxMessageBytes:   cfg.Gateway.MaxMessageBytes,
		MessagesPerSecond: cfg.RateLimiting.MessagesPerSecond,
		MessageBurst:      cfg.RateLimiting.MessageBurst,
	}, log)

	// Completed tips fan out to the stream's room through the registry.
	paymentService := services.NewPaymentService(paymentRepo, userRepo, registry, log)

	// Health checks
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("repositories", repoFactory.HealthCheck, 2*time.Second)

	// HTTP handlers
	authHandler := httphandlers.NewAuthHandler(sessionService, tokenService)
	userHandler := httphandlers.NewUserHandler(userRepo, tokenService)
	streamHandler := httphandlers.NewStreamHandler(streamService, streamRepo, tokenService, registry)
	paymentHandler := httphandlers.NewPaymentHandler(paymentService, paymentRepo, tokenService)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	authHandler.SetupRoutes(router)
	userHandler.SetupRoutes(router)
	streamHandler.SetupRoutes(router)
	paymentHandler.SetupRoutes(router)

	router.GET("/ws", func(c *gin.Context) {
		gatewayServer.HandleWebSocket(c.Writer, c.Request)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	// Prometheus metrics on a dedicated port so the scrape surface is
	// not exposed through the public API.
	var metricsSrv *http.Server
	if cfg.Monitoring.PrometheusEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
			Handler: metricsMux,
		}
		go func() {
			log.Infof("Prometheus metrics listening on %s", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("metrics server failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting camlive server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down camlive server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Error during metrics server shutdown", "error", err)
		}
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("camlive server stopped")
}
