package kafka_client

import "github.com/spacesedan/moodflow/config"

type KafkaConfig struct {
	Broker  string
	GroupID string
	Topic   string
}

// NewKafkaConfig selects topic from the application config's Kafka settings.
// Each topic gets its own consumer group so consumers in one process do not
// rebalance each other.
func NewKafkaConfig(cfg config.Config, topic string) KafkaConfig {
	return KafkaConfig{
		Broker:  cfg.KafkaBroker,
		GroupID: cfg.KafkaGroupID + "." + topic,
		Topic:   topic,
	}
}
