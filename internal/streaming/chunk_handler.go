package streaming

import (
	"context"

	"github.com/spacesedan/moodflow/internal/models"
)

// ChunkHandler turns one chunk of the audio stream into an optional result.
// A nil result with a nil error means the chunk produced nothing to report.
// A non-nil error is treated as a decode failure and ends the stream.
type ChunkHandler interface {
	HandleChunk(ctx context.Context, index int, data []byte) (*models.EmotionResult, error)
}

type ChunkHandlerFunc func(ctx context.Context, index int, data []byte) (*models.EmotionResult, error)

func (f ChunkHandlerFunc) HandleChunk(ctx context.Context, index int, data []byte) (*models.EmotionResult, error) {
	return f(ctx, index, data)
}

// NopChunkHandler accepts every chunk and never yields a result. Chunk level
// decoding is not implemented yet; plug a real handler in through NewPipeline.
type NopChunkHandler struct{}

func (NopChunkHandler) HandleChunk(context.Context, int, []byte) (*models.EmotionResult, error) {
	return nil, nil
}
