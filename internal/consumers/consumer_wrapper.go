package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/moodflow/internal/clients/kafka_client"
)

const HEALTH_WAIT_INTERVAL = time.Second

// ConsumerWrapper holds a consumer back until every dependency it needs
// reports healthy.
type ConsumerWrapper struct {
	name   string
	fn     kafka_client.ConsumerFunc
	health []*atomic.Bool
	wait   time.Duration
}

func WrapConsumer(name string, fn kafka_client.ConsumerFunc, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		name:   name,
		fn:     fn,
		health: health,
		wait:   HEALTH_WAIT_INTERVAL,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		if !cw.waitHealthy(ctx) {
			return
		}
		cw.fn(ctx, consumer)
	}
}

func (cw ConsumerWrapper) healthy() bool {
	for _, h := range cw.health {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}

// waitHealthy blocks until all flags are set. It returns false if ctx ends first.
func (cw ConsumerWrapper) waitHealthy(ctx context.Context) bool {
	if cw.healthy() {
		return true
	}
	slog.Warn("[ConsumerWrapper] Dependencies unhealthy, holding consumer",
		slog.String("consumer", cw.name))

	ticker := time.NewTicker(cw.wait)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if cw.healthy() {
				slog.Info("[ConsumerWrapper] Dependencies healthy, starting consumer",
					slog.String("consumer", cw.name))
				return true
			}
		}
	}
}
