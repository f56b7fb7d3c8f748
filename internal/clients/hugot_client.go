package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/moodflow/internal/models"
)

// HugotSession owns the local inference session shared by every local
// classifier. Destroy it once the process is done with them.
type HugotSession struct {
	session  *hugot.Session
	modelDir string
}

func NewHugotSession(modelDir string) (*HugotSession, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}
	return &HugotSession{session: session, modelDir: modelDir}, nil
}

func (s *HugotSession) Destroy() {
	if err := s.session.Destroy(); err != nil {
		slog.Warn("[HugotClient] Failed to destroy session",
			slog.String("error", err.Error()))
	}
}

// Classifier loads the text-classification model repo, downloading it into
// the model directory on first use.
func (s *HugotSession) Classifier(repo string) (*HugotClassifier, error) {
	modelPath, err := s.ensureModel(repo)
	if err != nil {
		return nil, err
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      repo,
	}
	pipeline, err := hugot.NewPipeline(s.session, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s pipeline: %w", repo, err)
	}

	slog.Info("[HugotClient] Pipeline ready",
		slog.String("model", repo),
		slog.String("path", modelPath))
	return &HugotClassifier{pipeline: pipeline, name: repo}, nil
}

func (s *HugotSession) ensureModel(repo string) (string, error) {
	modelPath := filepath.Join(s.modelDir, strings.ReplaceAll(repo, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[HugotClient] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat model path: %w", err)
	}

	slog.Info("[HugotClient] Model not found, downloading...", slog.String("model", repo))
	downloaded, err := hugot.DownloadModel(repo, s.modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", repo, err)
	}
	slog.Info("[HugotClient] Model downloaded successfully", slog.String("path", downloaded))
	return downloaded, nil
}

type HugotClassifier struct {
	pipeline *pipelines.TextClassificationPipeline
	name     string
}

func (h *HugotClassifier) Classify(ctx context.Context, text string) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("%s inference failed: %w", h.name, err)
	}
	if len(output.ClassificationOutputs) == 0 {
		return nil, fmt.Errorf("%s returned no outputs", h.name)
	}

	preds := make([]models.Prediction, 0, len(output.ClassificationOutputs[0]))
	for _, o := range output.ClassificationOutputs[0] {
		preds = append(preds, models.Prediction{Label: o.Label, Score: float64(o.Score)})
	}
	return preds, nil
}
