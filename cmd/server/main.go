package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slatewise/parlayforge/internal/api/handlers"
	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/simulator"
	"github.com/slatewise/parlayforge/internal/storage"
	"github.com/slatewise/parlayforge/internal/websocket"
	"github.com/slatewise/parlayforge/pkg/config"
	"github.com/slatewise/parlayforge/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.InitLogger("info", cfg.IsDevelopment())
	log.WithField("env", cfg.Env).Info("Starting parlayforge server")

	store, err := storage.NewSlateStore(cfg.RedisURL, time.Duration(cfg.SnapshotTTL)*time.Hour, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer store.Close()

	hub := websocket.NewHub(log)
	go hub.Run()

	builder := engine.NewBuilder(log)

	simDefaults := simulator.DefaultConfig()
	simDefaults.Iterations = cfg.MaxSimIterations
	simDefaults.MaxCombinations = cfg.MaxCombinations
	simDefaults.ClosedFormWeight = cfg.ClosedFormWeight
	simDefaults.CorrelationWeight = cfg.CorrelationWeight
	simDefaults.PayoutMultiplier = cfg.AssumedParlayPayout

	buildHandler := handlers.NewBuildHandler(builder, store, cfg.DefaultPreset, log)
	snapshotHandler := handlers.NewSnapshotHandler(store, log)
	simulateHandler := handlers.NewSimulateHandler(builder, store, hub, simDefaults, cfg.DefaultPreset, log)
	healthHandler := handlers.NewHealthHandler(store, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CorsOrigins))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/snapshots", snapshotHandler.Save)
		v1.GET("/snapshots", snapshotHandler.List)
		v1.GET("/snapshots/:date", snapshotHandler.Get)

		v1.POST("/build", buildHandler.Build)
		v1.GET("/presets", buildHandler.Presets)

		v1.POST("/simulate", simulateHandler.Start)
		v1.GET("/simulate/:run_id", simulateHandler.GetReport)
	}

	router.GET("/ws/:channel_id", hub.HandleWebSocket)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
