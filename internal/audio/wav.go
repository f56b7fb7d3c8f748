package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("audio file is not a valid WAV file")

// LoadWAV decodes the PCM WAV file at path into a mono signal at
// DefaultSampleRate.
func LoadWAV(path string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	sig, err := DecodeWAV(f)
	if err != nil {
		return Signal{}, err
	}
	return sig.Resample(DefaultSampleRate)
}

// DecodeWAV reads a PCM WAV stream, downmixing all channels to mono. The
// signal keeps the source sample rate.
func DecodeWAV(r io.ReadSeeker) (Signal, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Signal{}, ErrInvalidWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return Signal{}, ErrInvalidWAV
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return Signal{}, fmt.Errorf("invalid channel count: %d", channels)
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth < 8 || bitDepth > 32 {
		return Signal{}, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	scale := float64(int64(1) << (bitDepth - 1))

	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			v := float64(buf.Data[i*channels+c])
			// 8-bit PCM is unsigned
			if bitDepth == 8 {
				v -= 128
			}
			sum += v / scale
		}
		samples[i] = sum / float64(channels)
	}

	return Signal{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}
