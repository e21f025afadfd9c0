// Package pcm connects the equalizer to go-audio PCM buffers and converts
// between integer and normalized float samples.
package pcm

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

// ErrUnsupportedBitDepth is returned for bit depths other than 16, 24 and 32.
var ErrUnsupportedBitDepth = errors.New("pcm: unsupported bit depth")

// Process equalizes buf in place. Buffers without data or format are
// ignored.
func Process(e *eq.Equalizer, buf *audio.Float32Buffer) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return
	}

	e.ProcessBuffer(buf.Data, buf.NumFrames(), buf.Format.NumChannels)
}

// FullScale returns the largest positive sample value at bitDepth.
func FullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16, 24, 32:
		return float64(int64(1)<<(bitDepth-1) - 1), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

// ToFloat32 scales integer samples to [-1, 1]. dst is grown as needed and
// returned.
func ToFloat32(dst []float32, src []int, bitDepth int) ([]float32, error) {
	maxVal, err := FullScale(bitDepth)
	if err != nil {
		return dst, err
	}

	dst = grow(dst, len(src))
	inv := 1 / maxVal

	for i, v := range src {
		dst[i] = float32(float64(v) * inv)
	}

	return dst, nil
}

// ToInt scales normalized samples to integers at bitDepth, rounding to the
// nearest value and clamping to the representable range.
func ToInt(dst []int, src []float32, bitDepth int) ([]int, error) {
	maxVal, err := FullScale(bitDepth)
	if err != nil {
		return dst, err
	}

	dst = grow(dst, len(src))

	for i, v := range src {
		s := math.Round(float64(v) * maxVal)

		switch {
		case s > maxVal:
			s = maxVal
		case s < -maxVal-1:
			s = -maxVal - 1
		case math.IsNaN(s):
			s = 0
		}

		dst[i] = int(s)
	}

	return dst, nil
}

// IntToFloat converts src into dst, copying the format.
func IntToFloat(dst *audio.Float32Buffer, src *audio.IntBuffer, bitDepth int) error {
	data, err := ToFloat32(dst.Data, src.Data, bitDepth)
	if err != nil {
		return err
	}

	dst.Data = data
	dst.Format = src.Format
	dst.SourceBitDepth = bitDepth

	return nil
}

// FloatToInt converts src into dst, copying the format.
func FloatToInt(dst *audio.IntBuffer, src *audio.Float32Buffer, bitDepth int) error {
	data, err := ToInt(dst.Data, src.Data, bitDepth)
	if err != nil {
		return err
	}

	dst.Data = data
	dst.Format = src.Format
	dst.SourceBitDepth = bitDepth

	return nil
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}

	return s[:n]
}
