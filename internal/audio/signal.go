package audio

import (
	"fmt"
	"math"
	"time"
)

// DefaultSampleRate is the rate acoustic features are computed at.
const DefaultSampleRate = 22050

// Signal is a mono signal normalized to [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

func (s Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Samples)) / float64(s.SampleRate) * float64(time.Second))
}

// Resample converts s to rate with linear interpolation:
//
//	position = outIndex * inRate / outRate
//	out[outIndex] = in[i]*(1-frac) + in[i+1]*frac
func (s Signal) Resample(rate int) (Signal, error) {
	if s.SampleRate <= 0 || rate <= 0 {
		return Signal{}, fmt.Errorf("invalid sample rate: input=%d, output=%d", s.SampleRate, rate)
	}
	if s.SampleRate == rate || len(s.Samples) == 0 {
		out := make([]float64, len(s.Samples))
		copy(out, s.Samples)
		return Signal{Samples: out, SampleRate: rate}, nil
	}

	ratio := float64(s.SampleRate) / float64(rate)
	n := len(s.Samples)
	outLen := int(math.Ceil(float64(n) / ratio))
	out := make([]float64, outLen)

	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= n-1 {
			out[i] = s.Samples[n-1]
			continue
		}
		out[i] = s.Samples[idx]*(1-frac) + s.Samples[idx+1]*frac
	}
	return Signal{Samples: out, SampleRate: rate}, nil
}
