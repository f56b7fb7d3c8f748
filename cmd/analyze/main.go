package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/emotion"
	"github.com/spacesedan/moodflow/internal/logging"
	"github.com/spacesedan/moodflow/internal/models"
)

func main() {
	text := flag.String("text", "", "utterance text to analyze")
	audioPath := flag.String("audio", "", "path to a WAV file to analyze")
	timestamp := flag.Float64("timestamp", 0, "offset of the utterance in the interview, seconds")
	useLLM := flag.Bool("llm", false, "enrich the text result with the configured LLM")
	timeline := flag.String("timeline", "", "print the stored timeline of this session instead of analyzing")
	flag.Parse()

	if err := run(*text, *audioPath, *timestamp, *useLLM, *timeline); err != nil {
		slog.Error("[Analyze] Failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(text, audioPath string, timestamp float64, useLLM bool, timeline string) error {
	if text == "" && audioPath == "" && timeline == "" {
		flag.Usage()
		return errors.New("one of -text, -audio or -timeline is required")
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

	if timeline != "" {
		return printTimeline(ctx, cfg, timeline)
	}

	registry := clients.LoadModels(ctx, cfg)
	defer registry.Close()

	engine := emotion.NewFusionEngine(registry.Models, emotion.EngineConfig{
		LLMTimeout: cfg.LLMTimeout,
		SampleRate: cfg.SampleRate,
	})

	_, hasAudio, hasLLM := engine.Capabilities()
	if audioPath != "" && !hasAudio {
		slog.Warn("[Analyze] No audio classifier configured, result will be the default")
	}
	if audioPath == "" && useLLM && !hasLLM {
		slog.Warn("[Analyze] No LLM configured, using the classifier result only")
	}

	var result models.EmotionResult
	if audioPath != "" {
		result = engine.FuseAudioFile(ctx, audioPath, timestamp)
	} else {
		result = engine.FuseText(ctx, text, timestamp, useLLM)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func printTimeline(ctx context.Context, cfg config.Config, sessionID string) error {
	valkey, err := clients.NewValkeyClient(clients.ValkeyOptions{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		UseTLS:   cfg.ValkeyTLS,
	})
	if err != nil {
		return err
	}
	defer valkey.Close()

	entries, err := valkey.Timeline(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Println(entry)
	}
	return nil
}
