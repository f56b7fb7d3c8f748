package models

import "strings"

type Emotion string

const (
	EmotionHappy        Emotion = "happy"
	EmotionNeutral      Emotion = "neutral"
	EmotionNervous      Emotion = "nervous"
	EmotionConfident    Emotion = "confident"
	EmotionStressed     Emotion = "stressed"
	EmotionExcited      Emotion = "excited"
	EmotionDisappointed Emotion = "disappointed"
	EmotionFrustrated   Emotion = "frustrated"
	EmotionCalm         Emotion = "calm"
	EmotionUncertain    Emotion = "uncertain"
)

// Emotions is the closed output vocabulary, in prompt order.
var Emotions = []Emotion{
	EmotionHappy,
	EmotionNeutral,
	EmotionNervous,
	EmotionConfident,
	EmotionStressed,
	EmotionExcited,
	EmotionDisappointed,
	EmotionFrustrated,
	EmotionCalm,
	EmotionUncertain,
}

func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEmotion lowercases and trims s and reports whether it names a vocabulary member.
func ParseEmotion(s string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	return e, e.Valid()
}

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

func ParseIntensity(s string) (Intensity, bool) {
	switch i := Intensity(strings.ToLower(strings.TrimSpace(s))); i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return i, true
	default:
		return "", false
	}
}

const (
	DefaultEmotion    = EmotionNeutral
	DefaultConfidence = 0.5
	DefaultIntensity  = IntensityMedium
)

// EmotionResult is the fused per-utterance output. Its JSON form is also the
// callback body, so field names must not change.
type EmotionResult struct {
	Emotion           Emotion            `json:"emotion"`
	Confidence        float64            `json:"confidence"`
	Timestamp         float64            `json:"timestamp"`
	Intensity         Intensity          `json:"intensity"`
	AdditionalMetrics map[string]float64 `json:"additional_metrics"`
}

// DefaultEmotionResult is the contractual fallback when no model input is available.
func DefaultEmotionResult(timestamp float64) EmotionResult {
	return EmotionResult{
		Emotion:           DefaultEmotion,
		Confidence:        DefaultConfidence,
		Timestamp:         timestamp,
		Intensity:         DefaultIntensity,
		AdditionalMetrics: map[string]float64{},
	}
}
