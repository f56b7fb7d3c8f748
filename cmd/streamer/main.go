package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/moodflow/config"
	"github.com/spacesedan/moodflow/internal/clients"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/db"
	"github.com/spacesedan/moodflow/internal/logging"
	"github.com/spacesedan/moodflow/internal/sinks"
	"github.com/spacesedan/moodflow/internal/streaming"
)

type streamerFlags struct {
	source   string
	callback string
	session  string
	kafka    bool
	timeline bool
	persist  bool
}

func main() {
	var f streamerFlags
	flag.StringVar(&f.source, "source", "", "audio stream URL to read")
	flag.StringVar(&f.callback, "callback", "", "URL that receives each result as JSON")
	flag.StringVar(&f.session, "session", "", "session id (generated when empty)")
	flag.BoolVar(&f.kafka, "kafka", false, "also publish results to the results topic")
	flag.BoolVar(&f.timeline, "timeline", false, "also append results to the session timeline in Valkey")
	flag.BoolVar(&f.persist, "persist", false, "also store results in DynamoDB")
	flag.Parse()

	if err := run(f); err != nil {
		slog.Error("[Streamer] Stream ended with an error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(f streamerFlags) error {
	if f.source == "" || f.callback == "" {
		flag.Usage()
		return errors.New("-source and -callback are required")
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

	fanout := sinks.Fanout{sinks.NewCallbackSink(nil, f.callback, cfg.CallbackTimeout)}

	if f.kafka {
		producer, err := kafka_client.NewProducer(
			kafka_client.NewKafkaConfig(cfg, cfg.ResultsTopic), "moodflow-streamer-"+hostname())
		if err != nil {
			return err
		}
		defer producer.Close()
		fanout = append(fanout, sinks.NewKafkaSink(producer, cfg.ResultsTopic))
	}

	if f.timeline {
		valkey, err := clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			UseTLS:   cfg.ValkeyTLS,
		})
		if err != nil {
			return err
		}
		defer valkey.Close()
		fanout = append(fanout, sinks.NewTimelineSink(valkey))
	}

	if f.persist {
		dynamo, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return err
		}
		store := sinks.NewDynamoSink(db.NewEmotionStore(dynamo, cfg.DynamoTable), cfg.DynamoBatchSize)
		defer func() {
			if err := store.Flush(context.WithoutCancel(ctx)); err != nil {
				slog.Error("[Streamer] Failed to flush stored results", slog.String("error", err.Error()))
			}
		}()
		fanout = append(fanout, store)
	}

	pipeline := streaming.NewPipeline(streaming.NopChunkHandler{}, fanout,
		streaming.WithChunkSize(cfg.StreamChunkSize),
		streaming.WithSessionID(f.session))

	return pipeline.Run(ctx, f.source)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "local"
	}
	return name
}
