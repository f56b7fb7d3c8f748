package streaming_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spacesedan/moodflow/internal/mocks"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/streaming"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

// streamClient answers every request with status and body.
func streamClient(status int, body io.Reader) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(body),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})}
}

type recordingHandler struct {
	mu      sync.Mutex
	lengths []int
	yield   map[int]*models.EmotionResult
	fail    map[int]error
}

func (h *recordingHandler) HandleChunk(_ context.Context, index int, data []byte) (*models.EmotionResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lengths = append(h.lengths, len(data))
	if err := h.fail[index]; err != nil {
		return nil, err
	}
	return h.yield[index], nil
}

func TestPipeline_MidStreamErrorFailsWithoutCallbacks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	// no expectations: any Send fails the test
	sink := mocks.NewMockSink(ctrl)
	handler := &recordingHandler{}

	body := io.MultiReader(bytes.NewReader(make([]byte, 2*streaming.DEFAULT_CHUNK_SIZE)), failingReader{})
	p := streaming.NewPipeline(handler, sink, streaming.WithHTTPClient(streamClient(http.StatusOK, body)))

	req.Equal(streaming.StateIdle, p.State())
	err := p.Run(context.Background(), "http://stream.local/audio")

	req.ErrorContains(err, "connection reset by peer")
	req.Equal(streaming.StateFailed, p.State())
	req.Equal([]int{streaming.DEFAULT_CHUNK_SIZE, streaming.DEFAULT_CHUNK_SIZE}, handler.lengths)
}

func TestPipeline_ChunksAndGracefulClose(t *testing.T) {
	req := require.New(t)

	payload := bytes.Repeat([]byte{0x7f}, 20000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	handler := &recordingHandler{}
	p := streaming.NewPipeline(handler, nil)

	req.NoError(p.Run(context.Background(), srv.URL))
	req.Equal(streaming.StateClosed, p.State())
	req.Equal([]int{8192, 8192, 3616}, handler.lengths)
}

func TestPipeline_DispatchesResultsInOrder(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	handler := &recordingHandler{yield: map[int]*models.EmotionResult{
		0: {Emotion: models.EmotionCalm, Confidence: 0.7, Intensity: models.IntensityMedium, Timestamp: 0},
		2: {Emotion: models.EmotionStressed, Confidence: 0.9, Intensity: models.IntensityHigh, Timestamp: 1},
	}}

	sink := mocks.NewMockSink(ctrl)
	gomock.InOrder(
		sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r models.SessionEmotionResult) error {
				req.Equal(models.EmotionCalm, r.Emotion)
				req.Equal("sess-1", r.SessionID)
				req.Equal("sess-1-0", r.UtteranceID)
				req.Equal(models.SourceStream, r.Source)
				return nil
			}),
		// a failing callback is logged and the stream carries on
		sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r models.SessionEmotionResult) error {
				req.Equal(models.EmotionStressed, r.Emotion)
				return errors.New("callback down")
			}),
	)

	body := bytes.NewReader(make([]byte, 3*100))
	p := streaming.NewPipeline(handler, sink,
		streaming.WithChunkSize(100),
		streaming.WithSessionID("sess-1"),
		streaming.WithHTTPClient(streamClient(http.StatusOK, body)))

	req.NoError(p.Run(context.Background(), "http://stream.local/audio"))
	req.Equal(streaming.StateClosed, p.State())
	req.Len(handler.lengths, 3)
}

func TestPipeline_DecodeErrorFails(t *testing.T) {
	req := require.New(t)

	handler := &recordingHandler{fail: map[int]error{1: errors.New("bad frame")}}
	body := bytes.NewReader(make([]byte, 500))
	p := streaming.NewPipeline(handler, nil,
		streaming.WithChunkSize(100),
		streaming.WithHTTPClient(streamClient(http.StatusOK, body)))

	err := p.Run(context.Background(), "http://stream.local/audio")
	req.ErrorContains(err, "bad frame")
	req.Equal(streaming.StateFailed, p.State())
	req.Len(handler.lengths, 2)
}

func TestPipeline_Non2xxFails(t *testing.T) {
	req := require.New(t)

	p := streaming.NewPipeline(nil, nil,
		streaming.WithHTTPClient(streamClient(http.StatusNotFound, bytes.NewReader(nil))))

	err := p.Run(context.Background(), "http://stream.local/missing")
	req.ErrorContains(err, "404")
	req.Equal(streaming.StateFailed, p.State())
}

func TestPipeline_UnreachableSourceFails(t *testing.T) {
	req := require.New(t)

	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}
	p := streaming.NewPipeline(nil, nil, streaming.WithHTTPClient(client))

	req.Error(p.Run(context.Background(), "http://stream.local/audio"))
	req.Equal(streaming.StateFailed, p.State())
}

func TestPipeline_CloseAbortsInFlightRead(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	var p *streaming.Pipeline
	handler := streaming.ChunkHandlerFunc(func(context.Context, int, []byte) (*models.EmotionResult, error) {
		p.Close()
		return nil, nil
	})
	p = streaming.NewPipeline(handler, nil, streaming.WithChunkSize(64))

	req.NoError(p.Run(context.Background(), srv.URL))
	req.Equal(streaming.StateClosed, p.State())
}

func TestPipeline_ContextCancelCloses(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := streaming.NewPipeline(nil, nil)
	req.NoError(p.Run(ctx, srv.URL))
	req.Equal(streaming.StateClosed, p.State())
}

func TestPipeline_RunsOnce(t *testing.T) {
	req := require.New(t)

	p := streaming.NewPipeline(nil, nil,
		streaming.WithHTTPClient(streamClient(http.StatusOK, bytes.NewReader(nil))))

	req.NoError(p.Run(context.Background(), "http://stream.local/audio"))
	req.ErrorIs(p.Run(context.Background(), "http://stream.local/audio"), streaming.ErrAlreadyStarted)

	idle := streaming.NewPipeline(nil, nil)
	idle.Close()
	req.Equal(streaming.StateClosed, idle.State())
}
