package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/logging"
	"github.com/spacesedan/moodflow/internal/sinks"
	"github.com/spacesedan/moodflow/internal/streams"
)

// timeline is built once per cold start and reused across invocations.
var timeline sinks.Sink

func init() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("[StreamHandler] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	valkey, err := clients.NewValkeyClient(clients.ValkeyOptions{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		UseTLS:   cfg.ValkeyTLS,
	})
	if err != nil {
		slog.Error("[StreamHandler] Failed to connect to Valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	timeline = sinks.NewTimelineSink(valkey)

	slog.Info("[StreamHandler] Initialization complete", slog.String("environment", env))
}

// HandleRequest projects new rows of the emotion results table onto the
// per-session timelines.
func HandleRequest(ctx context.Context, event events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	slog.Info("[StreamHandler] Received DynamoDB event", slog.Int("record_count", len(event.Records)))
	return streams.ProcessResultEvent(ctx, event, timeline)
}

func main() {
	lambda.Start(HandleRequest)
}
