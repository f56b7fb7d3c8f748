package kafka_client

import "time"

const (
	KAFKA_TOPIC_UTTERANCE_REQUESTS = "utterance-requests" // transcribed answers awaiting emotion analysis
	KAFKA_TOPIC_EMOTION_RESULTS    = "emotion-results"    // fused results keyed by session id
)

const (
	MAX_RETRIES  = 5
	RETRY_DELAY  = 2 * time.Second
	POLL_TIMEOUT = 100 * time.Millisecond
)
