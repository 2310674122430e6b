// Webhook entrypoint: Telegram delivers each update as an HTTP POST through
// API Gateway; one Lambda invocation handles one update.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
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
	fn := func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		var modelConfig recomendachef.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var agentConfig recomendachef.AgentConfig
		if err := envdecode.Decode(&agentConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var botConfig recomendachef.BotConfig
		if err := envdecode.Decode(&botConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var storageConfig recomendachef.StorageConfig
		if err := envdecode.Decode(&storageConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var update telegram.Update
		if err := json.Unmarshal([]byte(req.Body), &update); err != nil {
			slog.Warn("WEBHOOK: Ignoring unparseable update", "error", err)
			// Telegram retries non-200 responses; a bad payload should not loop.
			return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
		}

		pool, err := pgxpool.New(ctx, storageConfig.DatabaseURL)
		if err != nil {
			return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		defer pool.Close()

		store := inventory.NewPGStore(pool)
		snapshot := inventory.NewSnapshot(store)
		gateway := inventory.NewGateway(store)

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMaxAttempts(5))
		if err != nil {
			return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to load AWS config: %w", err)
		}

		var catalog recipes.CatalogState
		if agentConfig.CatalogS3Bucket != "" {
			catalog = recipes.NewS3CatalogState(s3.NewFromConfig(awsCfg), agentConfig.CatalogS3Bucket, agentConfig.CatalogS3Key)
		} else {
			catalog = recipes.NewFileCatalogState(agentConfig.CatalogPath)
		}
		scorer := recipes.NewScorer(catalog, snapshot)

		registry, err := tools.NewRegistry(scorer, snapshot, gateway)
		if err != nil {
			return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to create tool registry: %w", err)
		}

		text, err := bot.LoadText(botConfig.TextPath)
		if err != nil {
			return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to load bot texts: %w", err)
		}

		llm := agent.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), agent.BedrockOptions{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		})

		orchestrator := agent.NewOrchestrator(
			llm,
			registry,
			agentConfig.MaxIterations,
			recomendachef.NewStdoutConversationLogger(),
			nil,
		)
		orchestrator.FailureReply = text.Replies.AgentFailure

		machine := bot.NewMachine(snapshot, gateway, text)
		tg := telegram.NewClient(botConfig.Token, http.DefaultClient)

		b := bot.New(tg, machine, orchestrator, snapshot, text, botConfig.PollTimeoutSec)
		b.HandleUpdate(ctx, update)

		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}

	lambda.Start(fn)
}
