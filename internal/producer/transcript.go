package producer

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sinks"
)

const (
	PUBLISH_ATTEMPTS = 3
	PUBLISH_BACKOFF  = time.Second
)

// TranscriptLine is one utterance of a JSON Lines interview transcript.
type TranscriptLine struct {
	SessionID string  `json:"session_id"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// ReadTranscript parses a JSON Lines transcript. Blank lines are skipped and
// lines without text are dropped. A session given here overrides the one on
// each line.
func ReadTranscript(r io.Reader, session string, useLLM bool) ([]models.UtteranceRequest, error) {
	var requests []models.UtteranceRequest

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var line TranscriptLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("transcript line %d: %w", lineNo, err)
		}
		if strings.TrimSpace(line.Text) == "" {
			slog.Debug("[TranscriptProducer] Skipping empty utterance", slog.Int("line", lineNo))
			continue
		}
		if session != "" {
			line.SessionID = session
		}

		requests = append(requests, models.UtteranceRequest{
			UtteranceID: UtteranceID(line.SessionID, line.Timestamp, line.Text),
			SessionID:   line.SessionID,
			Text:        line.Text,
			Timestamp:   line.Timestamp,
			UseLLM:      useLLM,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return requests, nil
}

// UtteranceID is stable for the same utterance, so republishing a transcript
// is caught by the consumer's dedupe.
func UtteranceID(sessionID string, timestamp float64, text string) string {
	raw := sessionID + ":" + strconv.FormatFloat(timestamp, 'f', -1, 64) + ":" + text
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}

type TranscriptProducer struct {
	publisher sinks.Publisher
	topic     string
	backoff   time.Duration
}

func NewTranscriptProducer(publisher sinks.Publisher, topic string) *TranscriptProducer {
	return &TranscriptProducer{publisher: publisher, topic: topic, backoff: PUBLISH_BACKOFF}
}

// Publish sends each request keyed by session and returns how many were
// published. It stops at the first utterance that cannot be published so
// transcript order is kept.
func (p *TranscriptProducer) Publish(ctx context.Context, requests []models.UtteranceRequest) (int, error) {
	for i, request := range requests {
		if err := p.publishWithRetries(ctx, request); err != nil {
			return i, err
		}
	}
	slog.Info("[TranscriptProducer] Transcript published",
		slog.String("topic", p.topic),
		slog.Int("utterances", len(requests)))
	return len(requests), nil
}

func (p *TranscriptProducer) publishWithRetries(ctx context.Context, request models.UtteranceRequest) error {
	var err error
	for attempt := 1; attempt <= PUBLISH_ATTEMPTS; attempt++ {
		err = p.publisher.Publish(ctx, p.topic, request.SessionID, request)
		if err == nil {
			return nil
		}
		slog.Warn("[TranscriptProducer] Publish failed, retrying...",
			slog.Int("attempt", attempt),
			slog.String("utterance_id", request.UtteranceID),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("failed to publish utterance %s: %w", request.UtteranceID, err)
}
