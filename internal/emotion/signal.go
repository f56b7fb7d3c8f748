package emotion

import "github.com/spacesedan/moodflow/internal/models"

// Signal is one model's or heuristic's typed output before fusion. A signal
// is either computed from model input or the documented default.
type Signal[T any] struct {
	value    T
	computed bool
}

func Computed[T any](v T) Signal[T] {
	return Signal[T]{value: v, computed: true}
}

func Default[T any](v T) Signal[T] {
	return Signal[T]{value: v}
}

func (s Signal[T]) Value() T {
	return s.value
}

func (s Signal[T]) IsComputed() bool {
	return s.computed
}

// TextSignal is the text path's intermediate record. It is built fresh for
// every call and updated in place by successive analyzers.
type TextSignal struct {
	Emotion    string
	Confidence float64
	Intensity  models.Intensity
}

func DefaultTextSignal() TextSignal {
	return TextSignal{
		Emotion:    string(models.DefaultEmotion),
		Confidence: models.DefaultConfidence,
		Intensity:  models.DefaultIntensity,
	}
}
