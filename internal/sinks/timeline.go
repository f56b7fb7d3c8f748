package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spacesedan/moodflow/internal/models"
)

// TimelineSink appends each utterance to its session timeline at most once,
// however many delivery paths carry the result to it.
type TimelineSink struct {
	store TimelineStore
}

func NewTimelineSink(store TimelineStore) *TimelineSink {
	return &TimelineSink{store: store}
}

func (t *TimelineSink) Send(ctx context.Context, result models.SessionEmotionResult) error {
	if result.SessionID == "" {
		return nil
	}

	if result.UtteranceID != "" {
		claimed, err := t.store.ClaimTimelineEntry(ctx, result.SessionID, result.UtteranceID)
		if err != nil {
			return fmt.Errorf("failed to claim timeline entry: %w", err)
		}
		if !claimed {
			return nil
		}
	}

	entry, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline entry: %w", err)
	}
	if err := t.store.AppendTimeline(ctx, result.SessionID, string(entry)); err != nil {
		return fmt.Errorf("failed to append to session timeline: %w", err)
	}
	return nil
}
