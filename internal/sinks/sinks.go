//go:generate go run go.uber.org/mock/mockgen -source=sinks.go -destination=../mocks/mock_sinks.go -package=mocks
package sinks

import (
	"context"
	"errors"

	"github.com/spacesedan/moodflow/internal/models"
)

// Sink receives fused results for delivery or storage.
type Sink interface {
	Send(ctx context.Context, result models.SessionEmotionResult) error
}

// Publisher is the Kafka producer surface used by KafkaSink.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// TimelineStore keeps a capped list of recent results per session.
// ClaimTimelineEntry reports false when the utterance was already claimed for
// the session's timeline.
type TimelineStore interface {
	ClaimTimelineEntry(ctx context.Context, sessionID string, utteranceID string) (bool, error)
	AppendTimeline(ctx context.Context, sessionID string, entry string) error
}

// ResultWriter persists batches of results.
type ResultWriter interface {
	BatchInsertEmotionResults(ctx context.Context, results []models.SessionEmotionResult) error
}

// Fanout sends every result to each sink and joins their errors. A failing
// sink does not stop delivery to the others.
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, result models.SessionEmotionResult) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
