package sinks

import (
	"context"
	"fmt"

	"github.com/spacesedan/moodflow/internal/models"
)

// KafkaSink publishes results keyed by session id so a session's results
// stay ordered within one partition.
type KafkaSink struct {
	publisher Publisher
	topic     string
}

func NewKafkaSink(publisher Publisher, topic string) *KafkaSink {
	return &KafkaSink{publisher: publisher, topic: topic}
}

func (k *KafkaSink) Send(ctx context.Context, result models.SessionEmotionResult) error {
	if err := k.publisher.Publish(ctx, k.topic, result.SessionID, result); err != nil {
		return fmt.Errorf("failed to publish result to %s: %w", k.topic, err)
	}
	return nil
}
