package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/consumers"
	"github.com/spacesedan/moodflow/internal/db"
	"github.com/spacesedan/moodflow/internal/emotion"
	"github.com/spacesedan/moodflow/internal/logging"
	"github.com/spacesedan/moodflow/internal/monitoring"
	"github.com/spacesedan/moodflow/internal/sinks"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := clients.LoadModels(ctx, cfg)
	defer registry.Close()
	engine := emotion.NewFusionEngine(registry.Models, emotion.EngineConfig{
		LLMTimeout: cfg.LLMTimeout,
		SampleRate: cfg.SampleRate,
	})

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(
			kafka_client.NewKafkaConfig(cfg, cfg.ResultsTopic), "moodflow-consumer-"+hostname())
		if err == nil {
			break
		}
		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	resultSinks := sinks.Fanout{sinks.NewKafkaSink(producer, cfg.ResultsTopic)}
	utteranceOpts := []consumers.UtteranceOption{}

	valkey, err := clients.NewValkeyClient(clients.ValkeyOptions{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		UseTLS:   cfg.ValkeyTLS,
	})
	if err != nil {
		slog.Warn("[Main] Valkey unavailable, running without dedupe or timelines",
			slog.String("error", err.Error()))
	} else {
		defer valkey.Close()
		resultSinks = append(resultSinks, sinks.NewTimelineSink(valkey))
		utteranceOpts = append(utteranceOpts, consumers.WithDeduper(valkey))
	}

	textHealthy := &atomic.Bool{}
	llmHealthy := &atomic.Bool{}
	textHealthy.Store(true)
	llmHealthy.Store(true)

	if cfg.HFHealthEndpoint != "" {
		go monitoring.MonitorHealth(ctx, "text-classifier", cfg.HealthCheckEvery, func(ctx context.Context) bool {
			return registry.HF.HealthCheck(ctx, cfg.HFHealthEndpoint)
		}, textHealthy)
	}
	if registry.Models.LLM != nil {
		go monitoring.MonitorHealth(ctx, "llm", cfg.HealthCheckEvery, registry.LLMHealthy, llmHealthy)
		utteranceOpts = append(utteranceOpts, consumers.WithLLMHealth(llmHealthy))
	}

	utterances := consumers.NewUtteranceConsumer(engine, resultSinks, utteranceOpts...)
	kafka_client.RegisterConsumer(cfg.UtteranceTopic,
		consumers.WrapConsumer("utterances", utterances.Start).WithHealthCheck(textHealthy).Handler())

	dynamo, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		slog.Warn("[Main] DynamoDB unavailable, results will not be persisted",
			slog.String("error", err.Error()))
	} else {
		results := consumers.NewResultsConsumer(db.NewEmotionStore(dynamo, cfg.DynamoTable), cfg.DynamoBatchSize)
		kafka_client.RegisterConsumer(cfg.ResultsTopic, results.Start)
	}

	var wg sync.WaitGroup
	for _, topic := range []string{cfg.UtteranceTopic, cfg.ResultsTopic} {
		kafkaCfg := kafka_client.NewKafkaConfig(cfg, topic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := kafka_client.StartConsumer(ctx, kafkaCfg); err != nil {
				slog.Error("[Main] Failed to start consumer",
					slog.String("topic", kafkaCfg.Topic),
					slog.String("error", err.Error()))
			}
		}()
	}
	wg.Wait()
	slog.Info("[Main] Consumers stopped")
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "local"
	}
	return name
}
