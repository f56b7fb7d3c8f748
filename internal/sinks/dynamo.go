package sinks

import (
	"context"
	"log/slog"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/utils"
)

// DynamoSink buffers results and writes them in batches. Call Flush before
// shutdown to persist a partial batch.
type DynamoSink struct {
	writer ResultWriter
	buffer *utils.BatchBuffer[models.SessionEmotionResult]
}

func NewDynamoSink(writer ResultWriter, batchSize int) *DynamoSink {
	return &DynamoSink{
		writer: writer,
		buffer: utils.NewBatchBuffer[models.SessionEmotionResult](batchSize),
	}
}

func (d *DynamoSink) Send(ctx context.Context, result models.SessionEmotionResult) error {
	if d.buffer.Add(result) {
		return d.Flush(ctx)
	}
	return nil
}

func (d *DynamoSink) Flush(ctx context.Context) error {
	batch := d.buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	if err := d.writer.BatchInsertEmotionResults(ctx, batch); err != nil {
		slog.Error("[DynamoSink] Failed to write results batch",
			slog.Int("batch_size", len(batch)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
