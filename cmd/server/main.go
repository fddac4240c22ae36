package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arturoeanton/blueprint-intel/internal/adapter/ai"
	"github.com/arturoeanton/blueprint-intel/internal/adapter/store"
	"github.com/arturoeanton/blueprint-intel/internal/handler"
	"github.com/arturoeanton/blueprint-intel/internal/mcp"
	"github.com/arturoeanton/blueprint-intel/internal/middleware"
	"github.com/arturoeanton/blueprint-intel/internal/retrieval"
	"github.com/arturoeanton/blueprint-intel/internal/service"
	"github.com/arturoeanton/blueprint-intel/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Blueprint Intelligence",
		"port", cfg.Port,
		"database", cfg.DSN(),
		"ollama_embed", cfg.OllamaEmbedURL,
		"ollama_chat", cfg.OllamaChatURL,
		"mcp_enabled", cfg.MCPEnabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.Migrate(ctx, cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── Adapters ─────────────────────────────────────────────────────────
	ollamaAI, err := ai.NewOllamaProvider(
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		},
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		},
		ai.Pricing{
			InputPerMTok:  cfg.ChatInputPricePerMTok,
			OutputPerMTok: cfg.ChatOutputPricePerMTok,
		},
		cfg.ChatTimeout,
	)
	if err != nil {
		slog.Error("failed to configure ollama", "error", err)
		os.Exit(1)
	}

	// ── Services ─────────────────────────────────────────────────────────
	retrievalOpts := retrieval.Options{
		MatchThreshold: cfg.MatchThreshold,
		MatchCount:     cfg.MatchCount,
	}
	retriever := retrieval.NewRetriever(ollamaAI, vectorStore, retrieval.WithEmbeddingPrice(cfg.EmbeddingPricePerMTok))
	indexService := service.NewIndexService(pgStore, ollamaAI, vectorStore, slog.Default())
	chatService := service.NewChatService(ollamaAI, retriever, pgStore, indexService, retrievalOpts)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 10*time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	jobTracker := handler.NewJobTracker()

	handler.NewChatHandler(chatService, cfg.ChatTimeout).Register(api)
	handler.NewSearchHandler(retriever, retrievalOpts).Register(api)
	handler.NewIndexHandler(indexService, jobTracker).Register(api)
	handler.NewJobsHandler(jobTracker).Register(api)
	handler.NewAuditHandler(pgStore).Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer, err := mcp.NewServer(retriever, chatService, retrievalOpts)
		if err != nil {
			slog.Error("failed to create MCP server", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := mcpServer.RunHTTP(ctx, ":"+cfg.MCPPort); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
