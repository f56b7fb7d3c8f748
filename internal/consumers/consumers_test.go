package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/moodflow/internal/mocks"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// scriptedSource hands out msgs in order, then cancels the consumer.
type scriptedSource struct {
	msgs   []*kafka.Message
	cancel context.CancelFunc
	next   int
}

func (s *scriptedSource) Next() (*kafka.Message, error) {
	if s.next < len(s.msgs) {
		msg := s.msgs[s.next]
		s.next++
		return msg, nil
	}
	s.cancel()
	return nil, context.Canceled
}

func jsonMessage(t *testing.T, offset int, v any) *kafka.Message {
	t.Helper()
	value, err := json.Marshal(v)
	require.NoError(t, err)
	return &kafka.Message{
		Value:          value,
		TopicPartition: kafka.TopicPartition{Offset: kafka.Offset(offset)},
	}
}

var fused = models.EmotionResult{
	Emotion:           models.EmotionNervous,
	Confidence:        0.62,
	Timestamp:         3.5,
	Intensity:         models.IntensityMedium,
	AdditionalMetrics: map[string]float64{"word_count": 3},
}

func TestUtteranceConsumer_HandleMessage(t *testing.T) {
	request := models.UtteranceRequest{
		UtteranceID: "utt-7",
		SessionID:   "sess-1",
		Text:        "um I think so",
		Timestamp:   3.5,
		UseLLM:      true,
	}

	t.Run("fuses, delivers and marks processed", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		engine := mocks.NewMockTextFuser(ctrl)
		sink := mocks.NewMockSink(ctrl)
		dedupe := mocks.NewMockDeduper(ctrl)
		healthy := &atomic.Bool{}
		healthy.Store(true)

		gomock.InOrder(
			dedupe.EXPECT().IsProcessed(gomock.Any(), "utt-7").Return(false),
			engine.EXPECT().FuseText(gomock.Any(), "um I think so", 3.5, true).Return(fused),
			sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, r models.SessionEmotionResult) error {
					req.Equal(fused, r.EmotionResult)
					req.Equal("utt-7", r.UtteranceID)
					req.Equal("sess-1", r.SessionID)
					req.Equal(models.SourceText, r.Source)
					return nil
				}),
			dedupe.EXPECT().MarkProcessed(gomock.Any(), "utt-7").Return(nil),
		)

		c := NewUtteranceConsumer(engine, sink, WithDeduper(dedupe), WithLLMHealth(healthy))
		c.HandleMessage(context.Background(), jsonMessage(t, 1, request))
	})

	t.Run("skips processed utterances", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		dedupe := mocks.NewMockDeduper(ctrl)
		dedupe.EXPECT().IsProcessed(gomock.Any(), "utt-7").Return(true)

		c := NewUtteranceConsumer(mocks.NewMockTextFuser(ctrl), mocks.NewMockSink(ctrl), WithDeduper(dedupe))
		c.HandleMessage(context.Background(), jsonMessage(t, 1, request))
	})

	t.Run("unhealthy llm disables enrichment", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		engine := mocks.NewMockTextFuser(ctrl)
		sink := mocks.NewMockSink(ctrl)
		engine.EXPECT().FuseText(gomock.Any(), gomock.Any(), gomock.Any(), false).Return(fused)
		sink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

		c := NewUtteranceConsumer(engine, sink, WithLLMHealth(&atomic.Bool{}))
		c.HandleMessage(context.Background(), jsonMessage(t, 1, request))
	})

	t.Run("sink failure still marks processed", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		engine := mocks.NewMockTextFuser(ctrl)
		sink := mocks.NewMockSink(ctrl)
		dedupe := mocks.NewMockDeduper(ctrl)
		dedupe.EXPECT().IsProcessed(gomock.Any(), gomock.Any()).Return(false)
		engine.EXPECT().FuseText(gomock.Any(), gomock.Any(), gomock.Any(), true).Return(fused)
		sink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("kafka unavailable"))
		dedupe.EXPECT().MarkProcessed(gomock.Any(), "utt-7").Return(nil)

		c := NewUtteranceConsumer(engine, sink, WithDeduper(dedupe))
		c.HandleMessage(context.Background(), jsonMessage(t, 1, request))
	})

	t.Run("missing utterance id is generated", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)

		engine := mocks.NewMockTextFuser(ctrl)
		sink := mocks.NewMockSink(ctrl)
		dedupe := mocks.NewMockDeduper(ctrl)
		engine.EXPECT().FuseText(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fused)
		sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r models.SessionEmotionResult) error {
				req.NotEmpty(r.UtteranceID)
				return nil
			})
		dedupe.EXPECT().MarkProcessed(gomock.Any(), gomock.Not("")).Return(nil)

		anonymous := request
		anonymous.UtteranceID = ""
		c := NewUtteranceConsumer(engine, sink, WithDeduper(dedupe))
		c.HandleMessage(context.Background(), jsonMessage(t, 1, anonymous))
	})

	t.Run("undecodable message is dropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		c := NewUtteranceConsumer(mocks.NewMockTextFuser(ctrl), mocks.NewMockSink(ctrl))
		c.HandleMessage(context.Background(), &kafka.Message{Value: []byte("not json")})
	})
}

func TestUtteranceConsumer_ConsumeCommitsEachMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := jsonMessage(t, 1, models.UtteranceRequest{UtteranceID: "a", Text: "hello"})
	second := jsonMessage(t, 2, models.UtteranceRequest{UtteranceID: "b", Text: "bye"})

	engine := mocks.NewMockTextFuser(ctrl)
	sink := mocks.NewMockSink(ctrl)
	committer := mocks.NewMockCommitter(ctrl)
	engine.EXPECT().FuseText(gomock.Any(), gomock.Any(), gomock.Any(), false).Return(fused).Times(2)
	sink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		committer.EXPECT().Commit(first).Return(nil),
		committer.EXPECT().Commit(second).Return(errors.New("rebalance in progress")),
	)

	source := &scriptedSource{msgs: []*kafka.Message{first, second}, cancel: cancel}
	NewUtteranceConsumer(engine, sink).Consume(ctx, source, committer)
}

func TestResultsConsumer_CommitsAfterWrite(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := []models.SessionEmotionResult{
		{EmotionResult: fused, UtteranceID: "r1", SessionID: "s"},
		{EmotionResult: fused, UtteranceID: "r2", SessionID: "s"},
		{EmotionResult: fused, UtteranceID: "r3", SessionID: "s"},
	}
	msgs := make([]*kafka.Message, len(results))
	for i, r := range results {
		msgs[i] = jsonMessage(t, i, r)
	}

	writer := mocks.NewMockResultWriter(ctrl)
	committer := mocks.NewMockCommitter(ctrl)
	gomock.InOrder(
		writer.EXPECT().BatchInsertEmotionResults(gomock.Any(), gomock.Len(2)).DoAndReturn(
			func(_ context.Context, batch []models.SessionEmotionResult) error {
				req.Equal("r1", batch[0].UtteranceID)
				req.Equal("r2", batch[1].UtteranceID)
				return nil
			}),
		committer.EXPECT().Commit(msgs[0]).Return(nil),
		committer.EXPECT().Commit(msgs[1]).Return(nil),
		// shutdown flush writes the tail but leaves its offset uncommitted
		writer.EXPECT().BatchInsertEmotionResults(gomock.Any(), gomock.Len(1)).Return(nil),
	)

	rc := NewResultsConsumer(writer, 2)
	rc.flushInterval = time.Hour
	rc.Consume(ctx, &scriptedSource{msgs: msgs, cancel: cancel}, committer)
}

func TestResultsConsumer_FailedWriteHoldsLaterCommits(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	first := models.SessionEmotionResult{EmotionResult: fused, UtteranceID: "r1"}
	second := models.SessionEmotionResult{EmotionResult: fused, UtteranceID: "r2"}
	m1 := jsonMessage(t, 1, first)
	m2 := jsonMessage(t, 2, second)

	writer := mocks.NewMockResultWriter(ctrl)
	committer := mocks.NewMockCommitter(ctrl)
	gomock.InOrder(
		writer.EXPECT().BatchInsertEmotionResults(gomock.Any(), gomock.Len(1)).
			Return(errors.New("throttled")).Times(WRITE_ATTEMPTS),
		writer.EXPECT().BatchInsertEmotionResults(gomock.Any(), gomock.Len(2)).DoAndReturn(
			func(_ context.Context, batch []models.SessionEmotionResult) error {
				req.Equal("r1", batch[0].UtteranceID)
				req.Equal("r2", batch[1].UtteranceID)
				return nil
			}),
		committer.EXPECT().Commit(m1).Return(nil),
		committer.EXPECT().Commit(m2).Return(nil),
	)

	rc := NewResultsConsumer(writer, 1)

	rc.tracker.Track("r1", m1)
	rc.buffer.Add(first)
	rc.flush(context.Background(), committer)
	req.Equal(1, rc.buffer.Size())

	rc.tracker.Track("r2", m2)
	rc.buffer.Add(second)
	rc.flush(context.Background(), committer)
	req.Equal(0, rc.buffer.Size())
}

func TestConsumerWrapper_WaitsForHealth(t *testing.T) {
	req := require.New(t)

	healthy := &atomic.Bool{}
	var started atomic.Bool
	w := WrapConsumer("utterances", func(context.Context, *kafka.Consumer) { started.Store(true) }, healthy)
	w.wait = 5 * time.Millisecond

	done := make(chan struct{})
	go func() {
		w.Handler()(context.Background(), nil)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	req.False(started.Load())

	healthy.Store(true)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer never started")
	}
	req.True(started.Load())
}

func TestConsumerWrapper_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := WrapConsumer("utterances", func(context.Context, *kafka.Consumer) {
		t.Fatal("consumer must not start")
	}).WithHealthCheck(&atomic.Bool{})

	w.Handler()(ctx, nil)
}
