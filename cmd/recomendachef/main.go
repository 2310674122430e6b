package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joeshaw/envdecode"

	"recomendachef"
	"recomendachef/agent"
	"recomendachef/bot"
	"recomendachef/inventory"
	"recomendachef/recipes"
	"recomendachef/telegram"
	"recomendachef/tools"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var modelConfig recomendachef.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var agentConfig recomendachef.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var botConfig recomendachef.BotConfig
	if err := envdecode.Decode(&botConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var storageConfig recomendachef.StorageConfig
	if err := envdecode.Decode(&storageConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	pool, err := pgxpool.New(ctx, storageConfig.DatabaseURL)
	if err != nil {
		slog.Error("SETUP: Failed to connect to Postgres", "error", err)
		return
	}
	defer pool.Close()

	store := inventory.NewPGStore(pool)
	snapshot := inventory.NewSnapshot(store)
	gateway := inventory.NewGateway(store)

	catalog, err := newCatalogState(ctx, agentConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create recipe catalog source", "error", err)
		return
	}
	scorer := recipes.NewScorer(catalog, snapshot)

	registry, err := tools.NewRegistry(scorer, snapshot, gateway)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}

	text, err := bot.LoadText(botConfig.TextPath)
	if err != nil {
		slog.Error("SETUP: Failed to load bot texts", "error", err)
		return
	}

	logger, cleanup, err := newConversationLogger(modelConfig.ModelID)
	if err != nil {
		slog.Error("SETUP: Failed to create conversation logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush conversation log", "error", err)
		}
	}()

	llm, err := newLLMClient(ctx, modelConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create LLM client", "error", err)
		return
	}

	tracerProvider, meterProvider, otelShutdown, err := recomendachef.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	_ = meterProvider
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	orchestrator := agent.NewOrchestrator(
		llm,
		registry,
		agentConfig.MaxIterations,
		logger,
		tracerProvider.Tracer(recomendachef.TracerNameAgent),
	)
	orchestrator.FailureReply = text.Replies.AgentFailure

	machine := bot.NewMachine(snapshot, gateway, text)
	tg := telegram.NewClient(botConfig.Token, http.DefaultClient)

	b := bot.New(tg, machine, orchestrator, snapshot, text, botConfig.PollTimeoutSec)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("FAILURE: Bot stopped", "error", err)
	}
}

func newCatalogState(ctx context.Context, cfg recomendachef.AgentConfig) (recipes.CatalogState, error) {
	if cfg.CatalogS3Bucket == "" {
		return recipes.NewFileCatalogState(cfg.CatalogPath), nil
	}
	if cfg.CatalogS3Key == "" {
		return nil, fmt.Errorf("CATALOG_S3_KEY must be set when CATALOG_S3_BUCKET is")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return recipes.NewS3CatalogState(s3.NewFromConfig(awsCfg), cfg.CatalogS3Bucket, cfg.CatalogS3Key), nil
}

func newLLMClient(ctx context.Context, cfg recomendachef.ModelConfig) (agent.LLMClient, error) {
	switch cfg.Provider {
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return agent.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), agent.BedrockOptions{
			ModelID:     cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		}), nil

	case "groq":
		return agent.NewGroqClient(agent.GroqOpts{
			BaseEndpoint: cfg.GroqEndpoint,
			APIKey:       cfg.GroqAPIKey,
			ModelID:      cfg.ModelID,
			HTTPClient:   http.DefaultClient,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temperature,
			TopP:         cfg.TopP,
		})

	default:
		return nil, fmt.Errorf("unknown agent provider %q", cfg.Provider)
	}
}

func newConversationLogger(modelID string) (recomendachef.ConversationLogger, func() error, error) {
	logFilePath := recomendachef.NewConversationLogFilePath(modelID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := recomendachef.NewFileConversationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
