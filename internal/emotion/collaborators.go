//go:generate go run go.uber.org/mock/mockgen -source=collaborators.go -destination=../mocks/mock_collaborators.go -package=mocks
package emotion

import (
	"context"

	"github.com/spacesedan/moodflow/internal/models"
)

// Classifier is a text classifier returning ranked predictions, top first.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]models.Prediction, error)
}

// AudioClassifier classifies the audio file at path.
type AudioClassifier interface {
	ClassifyFile(ctx context.Context, path string) ([]models.Prediction, error)
}

// Generator is an LLM text endpoint.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Models is the process-lifetime set of model handles. A nil field means the
// model is unavailable; handles are never mutated after construction.
type Models struct {
	Text      Classifier
	Sentiment Classifier
	Audio     AudioClassifier
	LLM       Generator
}
