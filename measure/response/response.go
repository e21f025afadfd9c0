// Package response measures the frequency response of the equalizer by
// running an impulse through the real processing path and taking its FFT.
package response

import (
	"errors"
	"fmt"
	"io"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

const (
	defaultFFTSize      = 16384
	defaultImpulseLevel = 0.25
	minFFTSize          = 16

	// floorDB bounds the magnitude of empty bins.
	floorDB = -240.0
)

var (
	ErrInvalidSampleRate = errors.New("response: sample rate must be positive and finite")
	ErrInvalidFFTSize    = errors.New("response: FFT size must be a power of two >= 16")
	ErrInvalidLevel      = errors.New("response: impulse level must be in (0, 1]")
)

type config struct {
	fftSize      int
	impulseLevel float64
}

// Option configures Measure.
type Option func(*config)

// WithFFTSize sets the impulse length and FFT size. Defaults to 16384.
func WithFFTSize(n int) Option {
	return func(cfg *config) {
		cfg.fftSize = n
	}
}

// WithImpulseLevel sets the impulse amplitude. The output is clipped at
// full scale, so large boosts need a smaller impulse. Defaults to 0.25.
func WithImpulseLevel(level float64) Option {
	return func(cfg *config) {
		cfg.impulseLevel = level
	}
}

// Curve is a measured magnitude response from DC to Nyquist.
type Curve struct {
	SampleRate  float64
	Freqs       []float64 // bin center frequencies in Hz
	MagnitudeDB []float64 // magnitude relative to the input impulse
}

// At returns the magnitude of the bin nearest to freq. Frequencies outside
// [0, Nyquist] map to the first or last bin.
func (c *Curve) At(freq float64) float64 {
	if len(c.MagnitudeDB) == 0 {
		return 0
	}

	binHz := c.SampleRate / float64(2*(len(c.MagnitudeDB)-1))
	k := int(math.Round(freq / binHz))
	k = max(0, min(k, len(c.MagnitudeDB)-1))

	return c.MagnitudeDB[k]
}

// Measure builds a private equalizer with gains at sampleRate, runs an
// impulse through ProcessBuffer and returns the left channel's spectrum.
func Measure(gains eq.Gains, sampleRate float64, opts ...Option) (*Curve, error) {
	cfg := config{fftSize: defaultFFTSize, impulseLevel: defaultImpulseLevel}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	n := cfg.fftSize
	if n < minFFTSize || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, n)
	}

	if !(cfg.impulseLevel > 0 && cfg.impulseLevel <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, cfg.impulseLevel)
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	e := eq.New(
		eq.WithLogger(quiet),
		eq.WithSampleRate(sampleRate),
		eq.WithGains(gains),
		eq.WithEnabled(true),
	)

	level := float32(cfg.impulseLevel)
	buf := make([]float32, 2*n)
	buf[0], buf[1] = level, level
	e.ProcessBuffer(buf, n, 2)

	in := make([]complex128, n)
	scale := 1 / float64(level)

	for i := range in {
		in[i] = complex(float64(buf[2*i])*scale, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	curve := &Curve{
		SampleRate:  sampleRate,
		Freqs:       make([]float64, bins),
		MagnitudeDB: mag,
	}

	for k := range bins {
		curve.Freqs[k] = float64(k) * sampleRate / float64(n)

		db := floorDB
		if mag[k] > 0 {
			db = max(20*math.Log10(mag[k]), floorDB)
		}

		curve.MagnitudeDB[k] = db
	}

	return curve, nil
}
