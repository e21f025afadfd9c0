// Package testutil holds signal generators and assertions shared by the
// equalizer tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates an impulse of the given amplitude at pos.
func Impulse(length, pos int, amplitude float64) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Interleave packs equally long channel signals into one float32 buffer,
// frame by frame.
func Interleave(channels ...[]float64) []float32 {
	if len(channels) == 0 {
		return nil
	}

	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for ch, sig := range channels {
		for i := 0; i < frames && i < len(sig); i++ {
			out[i*len(channels)+ch] = float32(sig[i])
		}
	}
	return out
}

// Channel extracts channel ch from an interleaved buffer.
func Channel(buf []float32, channels, ch int) []float64 {
	out := make([]float64, len(buf)/channels)
	for i := range out {
		out[i] = float64(buf[i*channels+ch])
	}
	return out
}

// Frames converts two channel signals into stereo frames.
func Frames(left, right []float64) [][2]float64 {
	out := make([][2]float64, min(len(left), len(right)))
	for i := range out {
		out[i] = [2]float64{left[i], right[i]}
	}
	return out
}
