package kafka_client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	results []readResult
	calls   int
}

type readResult struct {
	msg *kafka.Message
	err error
}

func (r *scriptedReader) ReadMessage(time.Duration) (*kafka.Message, error) {
	res := r.results[r.calls]
	r.calls++
	return res.msg, res.err
}

type scriptedCommitter struct {
	errs  []error
	calls int
}

func (c *scriptedCommitter) CommitMessage(*kafka.Message) ([]kafka.TopicPartition, error) {
	err := c.errs[c.calls]
	c.calls++
	return nil, err
}

func testMessage(value string) *kafka.Message {
	topic := KAFKA_TOPIC_UTTERANCE_REQUESTS
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: 7},
		Value:          []byte(value),
	}
}

func TestKafkaMessageIterator_Next(t *testing.T) {
	ctx := context.Background()
	timedOut := kafka.NewError(kafka.ErrTimedOut, "poll timeout", false)

	t.Run("poll timeouts are skipped", func(t *testing.T) {
		req := require.New(t)
		reader := &scriptedReader{results: []readResult{
			{err: timedOut}, {err: timedOut}, {err: timedOut},
			{err: timedOut}, {err: timedOut}, {err: timedOut},
			{msg: testMessage("hello")},
		}}
		it := NewKafkaMessageIterator(ctx, reader)
		it.delay = 0

		msg, err := it.Next()
		req.NoError(err)
		req.Equal("hello", string(msg.Value))
		req.Equal(7, reader.calls)
	})

	t.Run("brokers down aborts", func(t *testing.T) {
		reader := &scriptedReader{results: []readResult{
			{err: kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)},
		}}
		it := NewKafkaMessageIterator(ctx, reader)

		_, err := it.Next()
		require.Error(t, err)
		require.Equal(t, 1, reader.calls)
	})

	t.Run("gives up after retries", func(t *testing.T) {
		results := make([]readResult, MAX_RETRIES)
		for i := range results {
			results[i] = readResult{err: errors.New("broker transport failure")}
		}
		it := NewKafkaMessageIterator(ctx, &scriptedReader{results: results})
		it.delay = 0

		_, err := it.Next()
		require.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		it := NewKafkaMessageIterator(cancelled, &scriptedReader{})

		_, err := it.Next()
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestKafkaCommitHandler_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("retries transient failures", func(t *testing.T) {
		committer := &scriptedCommitter{errs: []error{errors.New("coordinator loading"), nil}}
		ch := NewCommitHandler(ctx, committer)
		ch.delay = 0

		require.NoError(t, ch.Commit(testMessage("x")))
		require.Equal(t, 2, committer.calls)
	})

	t.Run("exhausts retries", func(t *testing.T) {
		errs := make([]error, MAX_RETRIES)
		for i := range errs {
			errs[i] = errors.New("coordinator loading")
		}
		ch := NewCommitHandler(ctx, &scriptedCommitter{errs: errs})
		ch.delay = 0

		require.Error(t, ch.Commit(testMessage("x")))
	})
}
