package emotion_test

import (
	"math"
	"testing"

	"github.com/spacesedan/moodflow/internal/emotion"
	"github.com/spacesedan/moodflow/internal/models"
	"github.com/stretchr/testify/require"
)

const testRate = 22050

func sine(freq, amplitude float64, seconds float64) []float64 {
	n := int(seconds * testRate)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return out
}

func requireFullVector(t *testing.T, f models.AcousticFeatures) {
	t.Helper()
	require.Len(t, f, len(models.AcousticFeatureKeys))
	for _, key := range models.AcousticFeatureKeys {
		require.Contains(t, f, key)
	}
}

func TestFeatureExtractor_Extract(t *testing.T) {
	x := emotion.NewFeatureExtractor(testRate)

	t.Run("steady tone", func(t *testing.T) {
		req := require.New(t)
		f := x.Extract(sine(220, 0.5, 1))

		requireFullVector(t, f)
		req.InDelta(220, f[models.FeaturePitchMean], 5)
		req.InDelta(0, f[models.FeaturePitchStd], 1)
		req.InDelta(0.5/math.Sqrt2, f[models.FeatureEnergyMean], 0.01)
		req.InDelta(0, f[models.FeatureEnergyStd], 0.01)
		req.InDelta(220, f[models.FeatureSpectralCentroid], 60)
		req.InDelta(2*220.0/testRate, f[models.FeatureZCRMean], 0.002)

		tempo := f[models.FeatureTempo]
		req.True(tempo == 0 || (tempo >= 60 && tempo <= 200), "tempo %v", tempo)
	})

	t.Run("click track tempo", func(t *testing.T) {
		req := require.New(t)
		// one click every 20 hops
		signal := make([]float64, 5*testRate)
		for i := 0; i < len(signal); i += 20 * 512 {
			signal[i] = 1
		}

		f := x.Extract(signal)

		requireFullVector(t, f)
		req.InDelta(60*float64(testRate)/512/20, f[models.FeatureTempo], 1)
		req.Equal(0.0, f[models.FeaturePitchMean])
	})

	t.Run("silence", func(t *testing.T) {
		req := require.New(t)
		f := x.Extract(make([]float64, testRate))

		requireFullVector(t, f)
		for _, key := range models.AcousticFeatureKeys {
			req.Equal(0.0, f[key], key)
		}
	})

	t.Run("constant offset yields zero pitch", func(t *testing.T) {
		for _, level := range []float64{0.2, 0.01} {
			req := require.New(t)
			signal := make([]float64, testRate)
			for i := range signal {
				signal[i] = level
			}

			f := x.Extract(signal)

			requireFullVector(t, f)
			req.Equal(0.0, f[models.FeaturePitchMean], "level %v", level)
			req.Equal(0.0, f[models.FeaturePitchStd], "level %v", level)
			req.InDelta(level, f[models.FeatureEnergyMean], 1e-9)
		}
	})

	t.Run("tone over a dc offset", func(t *testing.T) {
		signal := sine(220, 0.3, 1)
		for i := range signal {
			signal[i] += 0.2
		}

		f := x.Extract(signal)

		require.InDelta(t, 220, f[models.FeaturePitchMean], 5)
	})

	t.Run("shorter than one frame", func(t *testing.T) {
		f := x.Extract(sine(440, 0.3, 0.01))
		requireFullVector(t, f)
	})

	t.Run("empty signal", func(t *testing.T) {
		require.True(t, x.Extract(nil).Empty())
	})

	t.Run("non-finite samples", func(t *testing.T) {
		req := require.New(t)
		bad := sine(220, 0.5, 0.2)
		bad[10] = math.NaN()
		req.True(x.Extract(bad).Empty())

		bad[10] = math.Inf(1)
		req.True(x.Extract(bad).Empty())
	})

	t.Run("invalid sample rate", func(t *testing.T) {
		require.True(t, emotion.NewFeatureExtractor(0).Extract(sine(220, 0.5, 0.2)).Empty())
	})
}
