// Package stream runs an equalizer inside a beep streamer pipeline.
package stream

import (
	"github.com/gopxl/beep"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

// Streamer filters the samples of a source streamer through an equalizer.
// Its Stream method is the audio context of the equalizer: it must not be
// called concurrently with other processing on the same equalizer.
type Streamer struct {
	eq  *eq.Equalizer
	src beep.Streamer
}

// New wraps src so that every chunk it produces is equalized by e.
func New(e *eq.Equalizer, src beep.Streamer) *Streamer {
	return &Streamer{eq: e, src: src}
}

// Stream fills samples from the source and filters the part it filled.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.src.Stream(samples)
	if n > 0 {
		s.eq.ProcessFrames(samples[:n])
	}

	return n, ok
}

// Err returns the source's error.
func (s *Streamer) Err() error {
	return s.src.Err()
}
