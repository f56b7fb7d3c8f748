package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sinks"
)

const DEFAULT_CHUNK_SIZE = 8192

type State string

const (
	StateIdle      State = "IDLE"
	StateStreaming State = "STREAMING"
	StateClosed    State = "CLOSED"
	StateFailed    State = "FAILED"
)

var ErrAlreadyStarted = errors.New("stream pipeline already started")

// Pipeline reads an audio byte stream in fixed-size chunks, hands each chunk
// to a ChunkHandler and dispatches any result to a sink before reading the
// next chunk. A pipeline runs once; reconnecting is up to the caller.
type Pipeline struct {
	client    *http.Client
	handler   ChunkHandler
	sink      sinks.Sink
	chunkSize int
	sessionID string

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	closed bool
}

type Option func(*Pipeline)

func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.client = client
		}
	}
}

func WithChunkSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

func WithSessionID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.sessionID = id
		}
	}
}

func NewPipeline(handler ChunkHandler, sink sinks.Sink, opts ...Option) *Pipeline {
	if handler == nil {
		handler = NopChunkHandler{}
	}
	p := &Pipeline{
		client:    &http.Client{},
		handler:   handler,
		sink:      sink,
		chunkSize: DEFAULT_CHUNK_SIZE,
		sessionID: uuid.NewString(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) SessionID() string {
	return p.sessionID
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close aborts an in-flight read. The pipeline ends in CLOSED.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	if p.state == StateIdle {
		p.state = StateClosed
	}
}

// Run streams sourceURL until end of stream, failure or cancellation. The
// returned error is informational: the pipeline has already moved to its
// terminal state and logged the cause.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.state = StateStreaming
	p.cancel = cancel
	p.mu.Unlock()

	slog.Info("[StreamingPipeline] Opening stream",
		slog.String("session_id", p.sessionID),
		slog.String("source", sourceURL))

	start := time.Now()
	chunks, err := p.consume(ctx, sourceURL)
	if err != nil && (ctx.Err() != nil || p.isClosed()) {
		// Caller-initiated shutdown is a graceful end, not a failure.
		err = nil
	}

	if err != nil {
		p.finish(StateFailed)
		slog.Error("[StreamingPipeline] Stream failed",
			slog.String("session_id", p.sessionID),
			slog.Int("chunks", chunks),
			slog.String("error", err.Error()))
		return err
	}

	p.finish(StateClosed)
	slog.Info("[StreamingPipeline] Stream closed",
		slog.String("session_id", p.sessionID),
		slog.Int("chunks", chunks),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (p *Pipeline) consume(ctx context.Context, sourceURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build stream request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("stream source returned status code %d", resp.StatusCode)
	}

	index := 0
	for {
		buf := make([]byte, p.chunkSize)
		n, readErr := io.ReadFull(resp.Body, buf)
		if n > 0 {
			if err := p.process(ctx, index, buf[:n]); err != nil {
				return index, err
			}
			index++
		}

		switch {
		case readErr == nil:
			continue
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			return index, nil
		default:
			return index, fmt.Errorf("failed to read chunk %d: %w", index, readErr)
		}
	}
}

func (p *Pipeline) process(ctx context.Context, index int, data []byte) error {
	result, err := p.handler.HandleChunk(ctx, index, data)
	if err != nil {
		return fmt.Errorf("failed to decode chunk %d: %w", index, err)
	}
	if result == nil || p.sink == nil {
		return nil
	}

	out := models.SessionEmotionResult{
		EmotionResult: *result,
		UtteranceID:   fmt.Sprintf("%s-%d", p.sessionID, index),
		SessionID:     p.sessionID,
		Source:        models.SourceStream,
	}
	if err := p.sink.Send(ctx, out); err != nil {
		slog.Warn("[StreamingPipeline] Callback dispatch failed",
			slog.String("session_id", p.sessionID),
			slog.Int("chunk", index),
			slog.String("error", err.Error()))
	}
	return nil
}

func (p *Pipeline) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pipeline) finish(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.cancel = nil
}
