package emotion

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"

	"github.com/spacesedan/moodflow/internal/models"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultFrameSize = 2048
	defaultHopSize   = 512

	minPitchHz = 50.0
	maxPitchHz = 500.0
	// voicingThreshold is the minimum normalized autocorrelation peak for a
	// frame to count as voiced.
	voicingThreshold = 0.3
	silenceRMS       = 1e-3

	minTempoBPM = 60.0
	maxTempoBPM = 200.0
)

var errEmptySignal = errors.New("empty audio signal")

// FeatureExtractor computes the acoustic feature vector of a mono signal. It
// holds no per-call state and is safe for concurrent use.
type FeatureExtractor struct {
	sampleRate int
	frameSize  int
	hopSize    int
}

func NewFeatureExtractor(sampleRate int) *FeatureExtractor {
	return &FeatureExtractor{
		sampleRate: sampleRate,
		frameSize:  defaultFrameSize,
		hopSize:    defaultHopSize,
	}
}

func (x *FeatureExtractor) SampleRate() int {
	return x.sampleRate
}

// Extract returns every feature or, on any failure, an empty vector.
func (x *FeatureExtractor) Extract(signal []float64) (features models.AcousticFeatures) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[FeatureExtractor] Feature extraction panicked",
				slog.Any("panic", r))
			features = models.AcousticFeatures{}
		}
	}()

	features, err := x.extract(signal)
	if err != nil {
		slog.Warn("[FeatureExtractor] Error extracting audio features",
			slog.String("error", err.Error()))
		return models.AcousticFeatures{}
	}
	return features
}

func (x *FeatureExtractor) extract(signal []float64) (models.AcousticFeatures, error) {
	if x.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", x.sampleRate)
	}
	if len(signal) == 0 {
		return nil, errEmptySignal
	}
	if floats.HasNaN(signal) {
		return nil, errors.New("signal contains NaN samples")
	}
	for _, v := range signal {
		if math.IsInf(v, 0) {
			return nil, errors.New("signal contains infinite samples")
		}
	}

	frames := x.frames(signal)
	window := hannWindow(x.frameSize)
	spectrumFFT := fourier.NewFFT(x.frameSize)
	autocorrFFT := fourier.NewFFT(2 * x.frameSize)

	var (
		energy    = make([]float64, len(frames))
		zcr       = make([]float64, len(frames))
		centroids = make([]float64, len(frames))
		flux      = make([]float64, len(frames))
		voiced    []float64
		prevMags  []float64
		windowed  = make([]float64, x.frameSize)
		padded    = make([]float64, 2*x.frameSize)
	)

	for i, frame := range frames {
		energy[i] = rms(frame)
		zcr[i] = zeroCrossingRate(frame)

		for j, v := range frame {
			windowed[j] = v * window[j]
		}
		mags := magnitudes(spectrumFFT.Coefficients(nil, windowed))
		centroids[i] = x.spectralCentroid(mags)
		if prevMags != nil {
			flux[i] = spectralFlux(prevMags, mags)
		}
		prevMags = mags

		if energy[i] > silenceRMS {
			// DC offset has no pitch; only the varying part is correlated.
			offset := stat.Mean(frame, nil)
			for j, v := range frame {
				padded[j] = v - offset
			}
			clear(padded[len(frame):])
			if rms(padded[:len(frame)]) > silenceRMS {
				if pitch := x.framePitch(autocorrFFT, padded); pitch > 0 {
					voiced = append(voiced, pitch)
				}
			}
		}
	}

	features := models.AcousticFeatures{}
	if len(voiced) > 0 {
		mean, std := stat.PopMeanStdDev(voiced, nil)
		features[models.FeaturePitchMean] = mean
		features[models.FeaturePitchStd] = std
	} else {
		features[models.FeaturePitchMean] = 0
		features[models.FeaturePitchStd] = 0
	}

	energyMean, energyStd := stat.PopMeanStdDev(energy, nil)
	features[models.FeatureEnergyMean] = energyMean
	features[models.FeatureEnergyStd] = energyStd
	features[models.FeatureSpectralCentroid] = stat.Mean(centroids, nil)
	features[models.FeatureZCRMean] = stat.Mean(zcr, nil)
	features[models.FeatureTempo] = x.tempo(flux)

	return features, nil
}

// frames slices signal into overlapping frames, zero-padding a signal shorter
// than one frame.
func (x *FeatureExtractor) frames(signal []float64) [][]float64 {
	if len(signal) < x.frameSize {
		padded := make([]float64, x.frameSize)
		copy(padded, signal)
		return [][]float64{padded}
	}

	var out [][]float64
	for start := 0; start+x.frameSize <= len(signal); start += x.hopSize {
		out = append(out, signal[start:start+x.frameSize])
	}
	return out
}

func (x *FeatureExtractor) spectralCentroid(mags []float64) float64 {
	var weighted, total float64
	binHz := float64(x.sampleRate) / float64(x.frameSize)
	for k, m := range mags {
		weighted += float64(k) * binHz * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// framePitch estimates F0 from the autocorrelation peak, computed as the
// inverse FFT of the power spectrum of the zero-padded, mean-removed frame.
// It returns 0 for unvoiced frames.
func (x *FeatureExtractor) framePitch(fft *fourier.FFT, padded []float64) float64 {
	coeffs := fft.Coefficients(nil, padded)
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		coeffs[i] = complex(re*re+im*im, 0)
	}
	ac := fft.Sequence(nil, coeffs)
	if ac[0] <= 0 {
		return 0
	}

	minLag := int(float64(x.sampleRate) / maxPitchHz)
	maxLag := int(float64(x.sampleRate) / minPitchHz)
	if maxLag >= x.frameSize {
		maxLag = x.frameSize - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0
	}

	// Only interior local maxima count, so a correlation that just decays
	// from lag 0 never reads as a period at the minLag edge.
	bestLag, best := 0, 0.0
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if ac[lag] <= ac[lag-1] || ac[lag] < ac[lag+1] {
			continue
		}
		if r := ac[lag] / ac[0]; r > best {
			best, bestLag = r, lag
		}
	}
	if bestLag == 0 || best < voicingThreshold {
		return 0
	}
	return float64(x.sampleRate) / float64(bestLag)
}

// tempo picks the dominant periodicity of the onset envelope within
// [60, 200] BPM. A flat envelope has no tempo.
func (x *FeatureExtractor) tempo(onsets []float64) float64 {
	if floats.Sum(onsets) == 0 {
		return 0
	}

	frameRate := float64(x.sampleRate) / float64(x.hopSize)
	minLag := int(math.Floor(60 * frameRate / maxTempoBPM))
	maxLag := int(math.Ceil(60 * frameRate / minTempoBPM))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onsets) {
		maxLag = len(onsets) - 1
	}
	if minLag > maxLag {
		return 0
	}

	mean := stat.Mean(onsets, nil)
	bestLag, best := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var r float64
		for i := 0; i+lag < len(onsets); i++ {
			r += (onsets[i] - mean) * (onsets[i+lag] - mean)
		}
		if r > best {
			best, bestLag = r, lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return 60 * frameRate / float64(bestLag)
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func magnitudes(coeffs []complex128) []float64 {
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

func spectralFlux(prev, cur []float64) float64 {
	var flux float64
	for i := range cur {
		if d := cur[i] - prev[i]; d > 0 {
			flux += d
		}
	}
	return flux
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
}

func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	var crossings int
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}
