package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"rag-chatbot-backend/internal/ai"
	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/telemetry"
	"rag-chatbot-backend/internal/vectorstore"
	"rag-chatbot-backend/middleware"
	"rag-chatbot-backend/routes"
	"rag-chatbot-backend/services"
)

const serviceName = "rag-chatbot-backend"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer(serviceName, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to init tracer:", err)
		}
		defer shutdown()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Redis backs the rate limiter, which fails open without it.
	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "error", err)
	}
	defer rdb.Close()

	ctx := context.Background()

	// Embedding generator
	embedder, err := ai.NewEmbedder(ctx, cfg, metrics)
	if err != nil {
		log.Fatal("Failed to create embedder:", err)
	}
	defer embedder.Close()

	// Vector store adapter
	store, err := vectorstore.NewStore(cfg)
	if err != nil {
		log.Fatal("Failed to connect to vector store:", err)
	}
	defer store.Close()

	// Chat-completion client for answer synthesis
	gemini, err := ai.NewGeminiClient(ctx, cfg, metrics)
	if err != nil {
		log.Fatal("Failed to create gemini client:", err)
	}
	defer gemini.Close()

	extractor := services.NewPDFExtractor()
	ingestion := services.NewIngestionService(cfg, extractor, embedder, store, metrics)
	retrieval := services.NewRetrievalService(cfg, embedder, store, metrics)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	routes.SetupAuthRoutes(router, cfg, mongoClient)
	routes.SetupUploadRoutes(router, cfg, ingestion, retrieval)
	routes.SetupChatRoutes(router, cfg, mongoClient, retrieval, gemini, authMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
