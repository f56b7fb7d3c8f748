package emotion_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/moodflow/internal/emotion"
	"github.com/spacesedan/moodflow/internal/mocks"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestParseEnrichment(t *testing.T) {
	t.Run("known and novel keys", func(t *testing.T) {
		req := require.New(t)
		reply := "Sure! Here is the analysis:\n" + `{
			"emotion": "Confident",
			"confidence": 1.4,
			"intensity": "extreme",
			"stress_indicators": ["um", "long pause"],
			"confidence_markers": [],
			"energy_level": 0.7,
			"professional_tone": 0.8,
			"note": "steady delivery",
			"flag": true
		}`

		e, err := emotion.ParseEnrichment(reply)
		req.NoError(err)

		req.NotNil(e.Emotion)
		req.Equal(models.EmotionConfident, *e.Emotion)
		req.NotNil(e.Confidence)
		req.Equal(1.0, *e.Confidence)
		req.Nil(e.Intensity)
		req.Equal(map[string]float64{
			"stress_indicators_count":  2,
			"confidence_markers_count": 0,
			"energy_level":             0.7,
			"professional_tone":        0.8,
		}, e.Metrics)
	})

	t.Run("emotion outside the vocabulary is ignored", func(t *testing.T) {
		req := require.New(t)
		e, err := emotion.ParseEnrichment(`{"emotion":"ecstatic","intensity":"LOW"}`)
		req.NoError(err)

		req.Nil(e.Emotion)
		req.NotNil(e.Intensity)
		req.Equal(models.IntensityLow, *e.Intensity)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := emotion.ParseEnrichment("I'd rather not say.")
		require.ErrorIs(t, err, emotion.ErrNoJSONObject)
	})

	t.Run("balanced but invalid JSON", func(t *testing.T) {
		_, err := emotion.ParseEnrichment(`{emotion: calm}`)
		require.Error(t, err)
	})
}

func TestEnrichment_ApplyTo(t *testing.T) {
	req := require.New(t)
	sig := emotion.TextSignal{Emotion: "joy", Confidence: 0.9, Intensity: models.IntensityHigh}
	conf := 0.4

	emotion.Enrichment{Confidence: &conf}.ApplyTo(&sig)

	req.Equal("joy", sig.Emotion)
	req.Equal(0.4, sig.Confidence)
	req.Equal(models.IntensityHigh, sig.Intensity)
}

func TestLLMEnricher_Enrich(t *testing.T) {
	ctx := context.Background()

	t.Run("nil generator disables enrichment", func(t *testing.T) {
		req := require.New(t)
		enricher := emotion.NewLLMEnricher(nil, time.Second)
		req.Nil(enricher)

		_, ok := enricher.Enrich(ctx, "anything")
		req.False(ok)
	})

	t.Run("prompt carries the text and vocabulary", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		llm := mocks.NewMockGenerator(ctrl)
		llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, prompt string) (string, error) {
				req.Contains(prompt, `"I led the migration"`)
				req.Contains(prompt, "happy|neutral|nervous")
				return `{"emotion":"calm","confidence":0.66}`, nil
			})

		e, ok := emotion.NewLLMEnricher(llm, time.Second).Enrich(ctx, "I led the migration")
		req.True(ok)
		req.Equal(models.EmotionCalm, *e.Emotion)
		req.Equal(0.66, *e.Confidence)
	})

	t.Run("generator error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		llm := mocks.NewMockGenerator(ctrl)
		llm.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))

		_, ok := emotion.NewLLMEnricher(llm, time.Second).Enrich(ctx, "text")
		require.False(t, ok)
	})

	t.Run("non-JSON reply", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		llm := mocks.NewMockGenerator(ctrl)
		llm.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("The speaker sounds calm.", nil)

		_, ok := emotion.NewLLMEnricher(llm, time.Second).Enrich(ctx, "text")
		require.False(t, ok)
	})

	t.Run("slow generator times out", func(t *testing.T) {
		req := require.New(t)
		llm := generatorFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

		start := time.Now()
		_, ok := emotion.NewLLMEnricher(llm, 20*time.Millisecond).Enrich(ctx, "text")
		req.False(ok)
		req.Less(time.Since(start), time.Second)
	})

	t.Run("caller cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		llm := generatorFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

		_, ok := emotion.NewLLMEnricher(llm, time.Minute).Enrich(cancelled, "text")
		require.False(t, ok)
	})

	t.Run("panicking generator", func(t *testing.T) {
		llm := generatorFunc(func(context.Context, string) (string, error) {
			panic("sdk bug")
		})

		_, ok := emotion.NewLLMEnricher(llm, time.Second).Enrich(ctx, "text")
		require.False(t, ok)
	})

	t.Run("long replies are accepted", func(t *testing.T) {
		llm := generatorFunc(func(context.Context, string) (string, error) {
			return strings.Repeat("thinking... ", 100) + `{"intensity":"high"}`, nil
		})

		e, ok := emotion.NewLLMEnricher(llm, time.Second).Enrich(ctx, "text")
		require.True(t, ok)
		require.Equal(t, models.IntensityHigh, *e.Intensity)
	})
}
