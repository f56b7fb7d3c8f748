package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/spacesedan/moodflow/internal/models"
	"golang.org/x/oauth2"
)

// HuggingFaceClient talks to Hugging Face style inference endpoints. Calls
// are made once; a failed classification degrades the signal upstream
// instead of being retried.
type HuggingFaceClient struct {
	Client *http.Client
}

// NewHuggingFaceClient authenticates requests with token as a bearer token
// when it is set.
func NewHuggingFaceClient(ctx context.Context, token string, timeout time.Duration) *HuggingFaceClient {
	httpClient := &http.Client{}
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	httpClient.Timeout = timeout

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", timeout),
		slog.Bool("authenticated", token != ""))

	return &HuggingFaceClient{Client: httpClient}
}

// TextClassifier returns a classifier backed by a text-classification
// endpoint.
func (h *HuggingFaceClient) TextClassifier(endpoint string) *RemoteTextClassifier {
	return &RemoteTextClassifier{hf: h, endpoint: endpoint}
}

// AudioClassifier returns a classifier backed by an audio-classification
// endpoint that accepts raw audio bytes.
func (h *HuggingFaceClient) AudioClassifier(endpoint string) *RemoteAudioClassifier {
	return &RemoteAudioClassifier{hf: h, endpoint: endpoint}
}

type RemoteTextClassifier struct {
	hf       *HuggingFaceClient
	endpoint string
}

func (c *RemoteTextClassifier) Classify(ctx context.Context, text string) ([]models.Prediction, error) {
	body, err := json.Marshal(models.HFInferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	start := time.Now()
	raw, err := c.hf.post(ctx, c.endpoint, "application/json", body)
	if err != nil {
		return nil, err
	}

	preds, err := decodePredictions(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("[HuggingFaceClient] Text classification successful",
		slog.String("endpoint", c.endpoint),
		slog.Duration("elapsed", time.Since(start)))
	return preds, nil
}

type RemoteAudioClassifier struct {
	hf       *HuggingFaceClient
	endpoint string
}

func (c *RemoteAudioClassifier) ClassifyFile(ctx context.Context, path string) ([]models.Prediction, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	start := time.Now()
	raw, err := c.hf.post(ctx, c.endpoint, "audio/wav", body)
	if err != nil {
		return nil, err
	}

	preds, err := decodePredictions(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("[HuggingFaceClient] Audio classification successful",
		slog.String("endpoint", c.endpoint),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))
	return preds, nil
}

// HealthCheck reports whether endpoint answers a GET with a 2xx status.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context, endpoint string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		slog.Warn("[HuggingFaceClient] Health check failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (h *HuggingFaceClient) post(ctx context.Context, endpoint, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to build request",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("[HuggingFaceClient] Endpoint returned an error",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return nil, fmt.Errorf("inference endpoint returned %s", errMsg(nil, resp))
	}

	return respBody, nil
}

// decodePredictions accepts both [[{label,score}]] and [{label,score}]
// responses and returns the predictions ranked by descending score.
func decodePredictions(raw []byte) ([]models.Prediction, error) {
	var nested models.HFInferenceResponse
	var preds []models.Prediction

	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) > 0 {
			preds = nested[0]
		}
	} else if err := json.Unmarshal(raw, &preds); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(raw),
			slog.Int("raw_response_length", len(raw)))
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(preds) == 0 {
		return nil, errors.New("inference endpoint returned no predictions")
	}

	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Score > preds[j].Score
	})
	return preds, nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
