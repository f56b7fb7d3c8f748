package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/moodflow/internal/audio"
	"github.com/spacesedan/moodflow/internal/models"
)

type EngineConfig struct {
	LLMTimeout time.Duration
	SampleRate int
}

// FusionEngine combines text, sentiment, LLM and acoustic signals into one
// EmotionResult. Its entry points never fail: every degraded path returns a
// complete result built from defaults.
type FusionEngine struct {
	analyzer  *TextSignalAnalyzer
	enricher  *LLMEnricher
	audio     AudioClassifier
	extractor *FeatureExtractor

	hasText  bool
	hasAudio bool
	hasLLM   bool
}

func NewFusionEngine(m Models, cfg EngineConfig) *FusionEngine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.DefaultSampleRate
	}

	e := &FusionEngine{
		analyzer:  NewTextSignalAnalyzer(m.Text, m.Sentiment),
		enricher:  NewLLMEnricher(m.LLM, cfg.LLMTimeout),
		audio:     m.Audio,
		extractor: NewFeatureExtractor(cfg.SampleRate),
		hasText:   m.Text != nil,
		hasAudio:  m.Audio != nil,
		hasLLM:    m.LLM != nil,
	}

	slog.Info("[FusionEngine] Initialized",
		slog.Bool("text_classifier", e.hasText),
		slog.Bool("sentiment_classifier", m.Sentiment != nil),
		slog.Bool("audio_classifier", e.hasAudio),
		slog.Bool("llm", e.hasLLM))
	return e
}

// Capabilities reports which model handles were available at construction.
func (e *FusionEngine) Capabilities() (text, audio, llm bool) {
	return e.hasText, e.hasAudio, e.hasLLM
}

// FuseText analyzes a transcript. With useLLM set and an LLM available, the
// LLM judgment overrides the classifier baseline field by field.
func (e *FusionEngine) FuseText(ctx context.Context, text string, timestamp float64, useLLM bool) (result models.EmotionResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[FusionEngine] Text analysis panicked, returning defaults",
				slog.Any("panic", r))
			result = models.DefaultEmotionResult(timestamp)
		}
	}()

	sig := e.analyzer.Analyze(ctx, text).Value()

	metrics := map[string]float64{}
	if useLLM && e.hasLLM {
		if enrichment, ok := e.enricher.Enrich(ctx, text); ok {
			enrichment.ApplyTo(&sig)
			for k, v := range enrichment.Metrics {
				metrics[k] = v
			}
		}
	}

	for k, v := range CalculateTextMetrics(text) {
		metrics[k] = v
	}

	return models.EmotionResult{
		Emotion:           NormalizeTextLabel(sig.Emotion),
		Confidence:        sig.Confidence,
		Timestamp:         timestamp,
		Intensity:         sig.Intensity,
		AdditionalMetrics: metrics,
	}
}

// FuseAudioFile decodes the WAV file at path and analyzes it. A file that
// cannot be decoded still goes to the audio classifier, with an empty
// feature vector.
func (e *FusionEngine) FuseAudioFile(ctx context.Context, path string, timestamp float64) models.EmotionResult {
	if !e.hasAudio {
		return models.DefaultEmotionResult(timestamp)
	}

	var sig audio.Signal
	decoded, err := audio.LoadWAV(path)
	if err != nil {
		slog.Warn("[FusionEngine] Could not decode audio file",
			slog.String("path", path),
			slog.String("error", err.Error()))
	} else {
		sig = decoded
	}
	return e.FuseAudio(ctx, sig, path, timestamp)
}

// FuseAudio analyzes an already decoded signal. path names the same audio for
// the classifier, which only accepts files.
func (e *FusionEngine) FuseAudio(ctx context.Context, sig audio.Signal, path string, timestamp float64) (result models.EmotionResult) {
	if !e.hasAudio {
		return models.DefaultEmotionResult(timestamp)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[FusionEngine] Audio analysis panicked, returning defaults",
				slog.Any("panic", r))
			result = models.DefaultEmotionResult(timestamp)
		}
	}()

	features := models.AcousticFeatures{}
	if len(sig.Samples) > 0 {
		if sig.SampleRate != e.extractor.SampleRate() {
			resampled, err := sig.Resample(e.extractor.SampleRate())
			if err != nil {
				slog.Warn("[FusionEngine] Could not resample audio",
					slog.String("error", err.Error()))
			} else {
				features = e.extractor.Extract(resampled.Samples)
			}
		} else {
			features = e.extractor.Extract(sig.Samples)
		}
		if features.Empty() {
			slog.Warn("[FusionEngine] No acoustic features extracted",
				slog.Duration("duration", sig.Duration()))
		}
	}

	label := e.classifyAudio(ctx, path)

	return models.EmotionResult{
		Emotion:           label.Value().emotion,
		Confidence:        label.Value().confidence,
		Timestamp:         timestamp,
		Intensity:         AudioIntensity(features),
		AdditionalMetrics: features.Metrics(),
	}
}

type audioLabel struct {
	emotion    models.Emotion
	confidence float64
}

func (e *FusionEngine) classifyAudio(ctx context.Context, path string) Signal[audioLabel] {
	fallback := audioLabel{emotion: models.DefaultEmotion, confidence: models.DefaultConfidence}

	if path == "" {
		slog.Warn("[FusionEngine] No audio file to classify, using default label")
		return Default(fallback)
	}

	preds, err := e.audio.ClassifyFile(ctx, path)
	if err == nil && len(preds) == 0 {
		err = ErrEmptyPrediction
	}
	if err != nil {
		slog.Warn("[FusionEngine] Audio classification failed, using default label",
			slog.String("error", fmt.Errorf("failed to classify %s: %w", path, err).Error()))
		return Default(fallback)
	}

	return Computed(audioLabel{
		emotion:    MapAudioLabel(preds[0].Label),
		confidence: clamp(preds[0].Score, 0, 1),
	})
}
