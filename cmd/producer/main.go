package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/logging"
	"github.com/spacesedan/moodflow/internal/producer"
)

func main() {
	path := flag.String("transcript", "", "JSON Lines transcript of {session_id,text,timestamp}")
	session := flag.String("session", "", "session id applied to every utterance")
	useLLM := flag.Bool("llm", false, "request LLM enrichment for each utterance")
	flag.Parse()

	if err := run(*path, *session, *useLLM); err != nil {
		slog.Error("[Producer] Failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(path, session string, useLLM bool) error {
	if path == "" {
		flag.Usage()
		return errors.New("-transcript is required")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	requests, err := producer.ReadTranscript(f, session, useLLM)
	if err != nil {
		return err
	}

	kafkaProducer, err := kafka_client.NewProducer(
		kafka_client.NewKafkaConfig(cfg, cfg.UtteranceTopic), "moodflow-producer")
	if err != nil {
		return err
	}
	defer kafkaProducer.Close()

	n, err := producer.NewTranscriptProducer(kafkaProducer, cfg.UtteranceTopic).Publish(ctx, requests)
	slog.Info("[Producer] Done", slog.Int("published", n), slog.Int("total", len(requests)))
	return err
}
