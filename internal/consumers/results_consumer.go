package consumers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sinks"
	"github.com/spacesedan/moodflow/internal/utils"
)

const WRITE_ATTEMPTS = 3

// ResultsConsumer persists published results in batches. An offset is only
// committed once the result it carried has been written. A batch that cannot
// be written goes back to the front of the buffer, so no later offset is
// committed ahead of it.
type ResultsConsumer struct {
	flushLock     sync.Mutex
	writer        sinks.ResultWriter
	buffer        *utils.BatchBuffer[models.SessionEmotionResult]
	tracker       *utils.MessageTracker
	flushInterval time.Duration
}

func NewResultsConsumer(writer sinks.ResultWriter, batchSize int) *ResultsConsumer {
	return &ResultsConsumer{
		writer:        writer,
		buffer:        utils.NewBatchBuffer[models.SessionEmotionResult](batchSize),
		tracker:       utils.NewMessageTracker(),
		flushInterval: utils.BATCH_TIMEOUT,
	}
}

func (rc *ResultsConsumer) Start(ctx context.Context, consumer *kafka.Consumer) {
	rc.Consume(ctx,
		kafka_client.NewKafkaMessageIterator(ctx, consumer),
		kafka_client.NewCommitHandler(ctx, consumer))
}

func (rc *ResultsConsumer) Consume(ctx context.Context, source MessageSource, committer Committer) {
	// Next blocks until a message arrives, so the timed flush runs on its own.
	go rc.flushEvery(ctx, committer)

	for {
		select {
		case <-ctx.Done():
			// Persist what is buffered; offsets stay uncommitted so a restart
			// replays anything that did not make it.
			rc.flush(context.WithoutCancel(ctx), nil)
			slog.Warn("[ResultsConsumer] Consumer shutting down...")
			return
		default:
		}

		msg, err := source.Next()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				utils.HandleConsumerError(err)
			}
			continue
		}

		var result models.SessionEmotionResult
		if err := utils.DeserializeFromJSON(msg.Value, &result); err != nil {
			utils.HandleConsumerError(err)
			continue
		}

		rc.tracker.Track(result.UtteranceID, msg)
		if rc.buffer.Add(result) {
			rc.flush(ctx, committer)
		}
	}
}

func (rc *ResultsConsumer) flushEvery(ctx context.Context, committer Committer) {
	ticker := time.NewTicker(rc.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rc.flush(ctx, committer)
		}
	}
}

func (rc *ResultsConsumer) flush(ctx context.Context, committer Committer) {
	rc.flushLock.Lock()
	defer rc.flushLock.Unlock()

	if rc.buffer.Size() == 0 {
		return
	}
	rc.buffer.LogBatchProcessing("emotion_results")
	batch := rc.buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}

	var insertErr error
	for i := 0; i < WRITE_ATTEMPTS; i++ {
		insertErr = rc.writer.BatchInsertEmotionResults(ctx, batch)
		if insertErr == nil {
			break
		}
		slog.Error("[ResultsConsumer] Failed to write results to DB",
			slog.String("error", insertErr.Error()),
			slog.Int("attempt", i+1))
	}
	if insertErr != nil {
		rc.buffer.Requeue(batch)
		slog.Warn("[ResultsConsumer] Batch kept for the next flush",
			slog.Int("pending", rc.buffer.Size()))
		return
	}

	for _, result := range batch {
		msg, found := rc.tracker.Release(result.UtteranceID)
		if !found || committer == nil {
			continue
		}
		if err := committer.Commit(msg); err != nil {
			slog.Warn("[ResultsConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}
