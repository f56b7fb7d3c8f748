package kafka_client

import (
	"context"
	"testing"

	"github.com/spacesedan/moodflow/config"
	"github.com/stretchr/testify/require"
)

func TestStartConsumer_UnknownTopic(t *testing.T) {
	err := StartConsumer(context.Background(), KafkaConfig{Broker: "localhost:9092", GroupID: "test", Topic: "no-such-topic"})
	require.ErrorContains(t, err, "no-such-topic")
}

func TestNewKafkaConfig_GroupPerTopic(t *testing.T) {
	cfg := config.Config{KafkaBroker: "kafka:9092", KafkaGroupID: "moodflow"}

	got := NewKafkaConfig(cfg, KAFKA_TOPIC_EMOTION_RESULTS)
	require.Equal(t, KafkaConfig{
		Broker:  "kafka:9092",
		GroupID: "moodflow.emotion-results",
		Topic:   "emotion-results",
	}, got)
}
