package emotion

import (
	"strings"

	"github.com/spacesedan/moodflow/internal/models"
)

var audioLabelMap = map[string]models.Emotion{
	"angry":     models.EmotionFrustrated,
	"calm":      models.EmotionCalm,
	"disgust":   models.EmotionDisappointed,
	"fearful":   models.EmotionNervous,
	"happy":     models.EmotionHappy,
	"neutral":   models.EmotionNeutral,
	"sad":       models.EmotionDisappointed,
	"surprised": models.EmotionExcited,
}

// MapAudioLabel translates an audio classifier label into the closed
// vocabulary. Unknown labels map to neutral.
func MapAudioLabel(label string) models.Emotion {
	if e, ok := audioLabelMap[strings.ToLower(strings.TrimSpace(label))]; ok {
		return e
	}
	return models.EmotionNeutral
}
