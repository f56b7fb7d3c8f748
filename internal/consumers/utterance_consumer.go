//go:generate go run go.uber.org/mock/mockgen -source=utterance_consumer.go -destination=../mocks/mock_consumers.go -package=mocks
package consumers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sinks"
	"github.com/spacesedan/moodflow/internal/utils"
)

// TextFuser is the part of the fusion engine the consumer needs.
type TextFuser interface {
	FuseText(ctx context.Context, text string, timestamp float64, useLLM bool) models.EmotionResult
}

// Deduper remembers which utterances were already analyzed.
type Deduper interface {
	IsProcessed(ctx context.Context, utteranceID string) bool
	MarkProcessed(ctx context.Context, utteranceID string) error
}

type MessageSource interface {
	Next() (*kafka.Message, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

type UtteranceConsumer struct {
	engine     TextFuser
	sink       sinks.Sink
	dedupe     Deduper
	llmHealthy *atomic.Bool
}

type UtteranceOption func(*UtteranceConsumer)

func WithDeduper(d Deduper) UtteranceOption {
	return func(c *UtteranceConsumer) { c.dedupe = d }
}

// WithLLMHealth makes the consumer skip enrichment while healthy is false.
func WithLLMHealth(healthy *atomic.Bool) UtteranceOption {
	return func(c *UtteranceConsumer) { c.llmHealthy = healthy }
}

func NewUtteranceConsumer(engine TextFuser, sink sinks.Sink, opts ...UtteranceOption) *UtteranceConsumer {
	c := &UtteranceConsumer{engine: engine, sink: sink}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start is a kafka_client.ConsumerFunc for the utterance request topic.
func (c *UtteranceConsumer) Start(ctx context.Context, consumer *kafka.Consumer) {
	c.Consume(ctx,
		kafka_client.NewKafkaMessageIterator(ctx, consumer),
		kafka_client.NewCommitHandler(ctx, consumer))
}

func (c *UtteranceConsumer) Consume(ctx context.Context, source MessageSource, committer Committer) {
	for {
		select {
		case <-ctx.Done():
			slog.Warn("[UtteranceConsumer] Consumer shutting down...")
			return
		default:
		}

		msg, err := source.Next()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			utils.HandleConsumerError(err)
			continue
		}

		c.HandleMessage(ctx, msg)

		if err := committer.Commit(msg); err != nil {
			slog.Warn("[UtteranceConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}

// HandleMessage analyzes one utterance request. Undecodable messages and
// utterances seen before are skipped; sink failures are logged and do not
// stop the utterance from being marked processed.
func (c *UtteranceConsumer) HandleMessage(ctx context.Context, msg *kafka.Message) {
	var request models.UtteranceRequest
	if err := utils.DeserializeFromJSON(msg.Value, &request); err != nil {
		utils.HandleConsumerError(err)
		return
	}

	if request.UtteranceID == "" {
		request.UtteranceID = uuid.NewString()
	} else if c.dedupe != nil && c.dedupe.IsProcessed(ctx, request.UtteranceID) {
		slog.Debug("[UtteranceConsumer] Skipping already processed utterance",
			slog.String("utterance_id", request.UtteranceID))
		return
	}

	useLLM := request.UseLLM
	if useLLM && c.llmHealthy != nil && !c.llmHealthy.Load() {
		slog.Debug("[UtteranceConsumer] LLM unhealthy, skipping enrichment",
			slog.String("utterance_id", request.UtteranceID))
		useLLM = false
	}

	result := models.SessionEmotionResult{
		EmotionResult: c.engine.FuseText(ctx, request.Text, request.Timestamp, useLLM),
		UtteranceID:   request.UtteranceID,
		SessionID:     request.SessionID,
		Source:        models.SourceText,
	}

	if err := c.sink.Send(ctx, result); err != nil {
		slog.Error("[UtteranceConsumer] Failed to deliver result",
			slog.String("utterance_id", request.UtteranceID),
			slog.String("session_id", request.SessionID),
			slog.String("error", err.Error()))
	}

	if c.dedupe != nil {
		if err := c.dedupe.MarkProcessed(ctx, request.UtteranceID); err != nil {
			slog.Warn("[UtteranceConsumer] Failed to mark utterance processed",
				slog.String("utterance_id", request.UtteranceID),
				slog.String("error", err.Error()))
		}
	}

	slog.Info("[UtteranceConsumer] Utterance analyzed",
		slog.String("utterance_id", request.UtteranceID),
		slog.String("emotion", string(result.Emotion)),
		slog.Float64("confidence", result.Confidence),
		slog.Bool("llm", useLLM))
}
