package streams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sinks"
)

// ProcessResultRecord projects one inserted emotion result from the table's
// stream onto sink. Other event types are ignored.
func ProcessResultRecord(ctx context.Context, record events.DynamoDBEventRecord, sink sinks.Sink) error {
	if record.EventName != string(events.DynamoDBOperationTypeInsert) {
		slog.Debug("[ResultStream] Skipping non-INSERT record",
			slog.String("event_id", record.EventID),
			slog.String("event_name", record.EventName))
		return nil
	}

	var result models.SessionEmotionResult
	if err := decodeImage(record.Change.NewImage, &result); err != nil {
		slog.Error("[ResultStream] Failed to decode result image",
			slog.String("event_id", record.EventID),
			slog.String("error", err.Error()))
		return err
	}

	if err := sink.Send(ctx, result); err != nil {
		return fmt.Errorf("failed to project result %s: %w", result.UtteranceID, err)
	}

	slog.Debug("[ResultStream] Result projected",
		slog.String("session_id", result.SessionID),
		slog.String("utterance_id", result.UtteranceID))
	return nil
}

// ProcessResultEvent handles a batch and reports every record that failed, so
// the Lambda runtime retries only those.
func ProcessResultEvent(ctx context.Context, event events.DynamoDBEvent, sink sinks.Sink) (events.DynamoDBEventResponse, error) {
	var (
		resp events.DynamoDBEventResponse
		errs []error
	)
	for _, record := range event.Records {
		if err := ProcessResultRecord(ctx, record, sink); err != nil {
			errs = append(errs, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.DynamoDBBatchItemFailure{
				ItemIdentifier: record.Change.SequenceNumber,
			})
		}
	}
	if len(errs) > 0 {
		slog.Warn("[ResultStream] Some records failed",
			slog.Int("failed", len(errs)),
			slog.Int("total", len(event.Records)),
			slog.String("error", errors.Join(errs...).Error()))
	}
	return resp, nil
}
