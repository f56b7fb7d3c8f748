package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageTracker remembers which Kafka message carried each buffered item so
// its offset is committed only after the item is persisted.
type MessageTracker struct {
	messages sync.Map
}

func NewMessageTracker() *MessageTracker {
	return &MessageTracker{}
}

func (t *MessageTracker) Track(id string, msg *kafka.Message) {
	t.messages.Store(id, msg)
}

// Release returns and forgets the message tracked for id.
func (t *MessageTracker) Release(id string) (*kafka.Message, bool) {
	msg, ok := t.messages.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	return msg.(*kafka.Message), true
}
