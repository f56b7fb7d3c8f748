package emotion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spacesedan/moodflow/internal/models"
)

const sentimentOverrideThreshold = 0.7

// textLabelMap folds primary classifier labels into the closed vocabulary.
var textLabelMap = map[string]models.Emotion{
	"joy":      models.EmotionHappy,
	"optimism": models.EmotionConfident,
	"sadness":  models.EmotionDisappointed,
	"fear":     models.EmotionNervous,
	"anger":    models.EmotionFrustrated,
	"surprise": models.EmotionExcited,
	"disgust":  models.EmotionDisappointed,
}

// TextSignalAnalyzer combines the primary text-emotion classifier with the
// auxiliary sentiment classifier.
type TextSignalAnalyzer struct {
	text      Classifier
	sentiment Classifier
}

func NewTextSignalAnalyzer(text, sentiment Classifier) *TextSignalAnalyzer {
	return &TextSignalAnalyzer{text: text, sentiment: sentiment}
}

// Analyze never fails: an unavailable or failing primary classifier yields the
// default signal, and a failing sentiment classifier only skips the override.
func (a *TextSignalAnalyzer) Analyze(ctx context.Context, text string) Signal[TextSignal] {
	sig := DefaultTextSignal()
	if a.text == nil {
		return Default(sig)
	}
	if strings.TrimSpace(text) == "" {
		return Default(sig)
	}

	top, err := topPrediction(ctx, a.text, text)
	if err != nil {
		slog.Warn("[TextSignalAnalyzer] Emotion classification failed, using defaults",
			slog.String("error", err.Error()))
		return Default(sig)
	}
	sig.Emotion = strings.ToLower(top.Label)
	sig.Confidence = clamp(top.Score, 0, 1)

	if a.sentiment != nil {
		sentiment, err := topPrediction(ctx, a.sentiment, text)
		if err != nil {
			slog.Warn("[TextSignalAnalyzer] Sentiment classification failed, skipping override",
				slog.String("error", err.Error()))
		} else if ApplySentimentOverride(&sig, sentiment) {
			slog.Debug("[TextSignalAnalyzer] Sentiment override applied",
				slog.String("sentiment", sentiment.Label),
				slog.Float64("sentiment_score", sentiment.Score),
				slog.String("emotion", sig.Emotion))
		}
	}

	sig.Intensity = IntensityFromConfidence(sig.Confidence)
	return Computed(sig)
}

// ApplySentimentOverride rewrites the label when a sentiment scoring above
// 0.7 contradicts it. Only the label changes; confidence is left alone.
func ApplySentimentOverride(sig *TextSignal, sentiment models.Prediction) bool {
	if sentiment.Score <= sentimentOverrideThreshold {
		return false
	}

	switch strings.ToLower(sentiment.Label) {
	case "negative":
		if sig.Emotion == "joy" || sig.Emotion == "optimism" {
			sig.Emotion = string(models.EmotionDisappointed)
			return true
		}
	case "positive":
		if sig.Emotion == "sadness" || sig.Emotion == "fear" {
			sig.Emotion = string(models.EmotionConfident)
			return true
		}
	}
	return false
}

// NormalizeTextLabel maps a text signal label onto the closed vocabulary.
// Unknown labels become neutral.
func NormalizeTextLabel(label string) models.Emotion {
	if e, ok := models.ParseEmotion(label); ok {
		return e
	}
	if e, ok := textLabelMap[strings.ToLower(strings.TrimSpace(label))]; ok {
		return e
	}
	return models.EmotionNeutral
}

func topPrediction(ctx context.Context, c Classifier, text string) (models.Prediction, error) {
	preds, err := c.Classify(ctx, text)
	if err != nil {
		return models.Prediction{}, err
	}
	if len(preds) == 0 {
		return models.Prediction{}, ErrEmptyPrediction
	}
	return preds[0], nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
