package eq

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

// blockSize is the number of frames filtered per band pass.
const blockSize = 256

// Gains holds one gain in dB per band.
type Gains [NumBands]float64

// params is an immutable snapshot of the control state. Writers publish a
// modified copy; the audio context never sees a partial update.
type params struct {
	enabled     bool
	initialized bool
	sampleRate  float64
	gains       Gains
	coeffs      [NumBands]biquad.Coefficients

	// resetGen is bumped by Reset. The audio context clears filter history
	// when it observes a new value.
	resetGen uint64
}

func (p *params) clone() *params {
	c := *p
	return &c
}

// retune recomputes every band from the stored gains.
func (p *params) retune() {
	for b := range NumBands {
		p.retuneBand(b)
	}
}

func (p *params) retuneBand(band int) {
	if !p.initialized {
		p.coeffs[band] = biquad.Passthrough()
		return
	}

	p.coeffs[band] = design(band, p.sampleRate, p.gains[band])
}

// Equalizer is a nine-band stereo equalizer. Create one with New.
type Equalizer struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[params]
	log  logrus.FieldLogger

	// Audio context state. Touched only by ProcessBuffer and ProcessFrames.
	applied   *params
	resetSeen uint64
	filters   [NumBands * MaxChannels]biquad.Section // [band*MaxChannels+channel]
	scratch   [MaxChannels][blockSize]float64
}

type config struct {
	logger     logrus.FieldLogger
	sampleRate float64
	gains      *Gains
	enabled    bool
}

// Option configures an Equalizer at construction.
type Option func(*config)

// WithLogger sets the logger for control-path events. Defaults to the
// logrus standard logger with component=eq.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithSampleRate initializes the equalizer at construction.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) {
		cfg.sampleRate = sampleRate
	}
}

// WithGains sets the initial band gains.
func WithGains(g Gains) Option {
	return func(cfg *config) {
		cfg.gains = &g
	}
}

// WithEnabled sets the initial enabled flag. Equalizers start disabled.
func WithEnabled(enabled bool) Option {
	return func(cfg *config) {
		cfg.enabled = enabled
	}
}

// New returns a disabled, uninitialized equalizer with flat gains unless
// options say otherwise.
func New(opts ...Option) *Equalizer {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger().WithField("component", "eq")
	}

	e := &Equalizer{log: cfg.logger}
	for i := range e.filters {
		e.filters[i].Coefficients = biquad.Passthrough()
	}

	p := &params{sampleRate: DefaultSampleRate, enabled: cfg.enabled}
	if cfg.gains != nil {
		for b, g := range cfg.gains {
			p.gains[b] = ClampGain(g)
		}
	}

	p.retune()
	e.snap.Store(p)

	if cfg.sampleRate > 0 {
		e.Initialize(cfg.sampleRate)
	}

	return e
}

// update publishes fn's modification of a copy of the current snapshot.
func (e *Equalizer) update(fn func(p *params)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.snap.Load().clone()
	fn(p)
	e.snap.Store(p)
}

// Initialize sets the sample rate and derives all coefficients from the
// stored gains. Calling it again re-tunes for the new rate; gains are kept.
// Non-positive or non-finite rates are ignored.
func (e *Equalizer) Initialize(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		e.log.WithField("sample_rate", sampleRate).Warn("Equalizer initialize ignored: invalid sample rate")
		return
	}

	e.update(func(p *params) {
		p.sampleRate = sampleRate
		p.initialized = true
		p.retune()
	})

	e.log.WithField("sample_rate", sampleRate).Info("Equalizer initialized")
}

// SetBandGain sets the gain of band in dB, clamped to [MinGainDB,
// MaxGainDB]. Out-of-range bands are ignored.
func (e *Equalizer) SetBandGain(band int, gainDB float64) {
	if band < 0 || band >= NumBands {
		return
	}

	gainDB = ClampGain(gainDB)

	e.update(func(p *params) {
		p.gains[band] = gainDB
		p.retuneBand(band)
	})

	e.log.WithFields(logrus.Fields{
		"band":     band,
		"freq":     frequencies[band],
		"topology": TopologyFor(band).String(),
		"gain_db":  gainDB,
	}).Debug("EQ band set")
}

// SetGains sets all band gains in one update.
func (e *Equalizer) SetGains(g Gains) {
	for b := range g {
		g[b] = ClampGain(g[b])
	}

	e.update(func(p *params) {
		p.gains = g
		p.retune()
	})

	e.log.WithField("gains", g).Debug("EQ gains set")
}

// BandGain returns the gain of band in dB, or 0 for an out-of-range band.
func (e *Equalizer) BandGain(band int) float64 {
	if band < 0 || band >= NumBands {
		return 0
	}

	return e.snap.Load().gains[band]
}

// Gains returns all band gains.
func (e *Equalizer) Gains() Gains {
	return e.snap.Load().gains
}

// SetEnabled turns processing on or off. Filter history is not touched.
func (e *Equalizer) SetEnabled(enabled bool) {
	e.update(func(p *params) {
		p.enabled = enabled
	})

	if enabled {
		e.log.Info("Equalizer enabled")
	} else {
		e.log.Info("Equalizer disabled")
	}
}

// Enabled reports whether processing is on.
func (e *Equalizer) Enabled() bool {
	return e.snap.Load().enabled
}

// Reset sets every gain to 0 dB and clears all filter history. The history
// is cleared by the audio context before it processes its next buffer.
func (e *Equalizer) Reset() {
	e.update(func(p *params) {
		p.gains = Gains{}
		p.retune()
		p.resetGen++
	})

	e.log.Info("Equalizer reset")
}

// SampleRate returns the rate passed to Initialize, or DefaultSampleRate.
func (e *Equalizer) SampleRate() float64 {
	return e.snap.Load().sampleRate
}

// Initialized reports whether Initialize has been called.
func (e *Equalizer) Initialized() bool {
	return e.snap.Load().initialized
}

// ResponseDB returns the magnitude in dB of the whole band cascade at each
// frequency in freqs, regardless of the enabled flag. Before Initialize
// the response is flat.
func (e *Equalizer) ResponseDB(freqs []float64) []float64 {
	p := e.snap.Load()
	out := make([]float64, len(freqs))

	if !p.initialized {
		return out
	}

	for i, f := range freqs {
		var db float64
		for b := range p.coeffs {
			db += p.coeffs[b].MagnitudeDB(f, p.sampleRate)
		}

		out[i] = db
	}

	return out
}

// sync brings the audio-side filters up to date with p.
func (e *Equalizer) sync(p *params) {
	if p == e.applied {
		return
	}

	if p.resetGen != e.resetSeen {
		for i := range e.filters {
			e.filters[i].Reset()
		}

		e.resetSeen = p.resetGen
	}

	for b := range NumBands {
		for ch := range MaxChannels {
			e.filters[b*MaxChannels+ch].Coefficients = p.coeffs[b]
		}
	}

	e.applied = p
}

// active loads the snapshot and prepares the filters. It returns false when
// processing must leave the buffer untouched.
func (e *Equalizer) active() bool {
	p := e.snap.Load()
	if !p.enabled || !p.initialized {
		return false
	}

	e.sync(p)

	return true
}

// ProcessBuffer filters an interleaved buffer of frames*channels samples in
// place. Only the first MaxChannels channels are filtered; every filtered
// sample runs through bands 0..8 in order and is clipped to [-1, 1].
// If buf holds fewer than frames*channels samples, only the whole frames
// that fit are processed. It is a no-op while disabled or uninitialized.
func (e *Equalizer) ProcessBuffer(buf []float32, frames, channels int) {
	if frames <= 0 || channels <= 0 {
		return
	}

	frames = min(frames, len(buf)/channels)
	if frames == 0 || !e.active() {
		return
	}

	chans := min(channels, MaxChannels)

	for start := 0; start < frames; start += blockSize {
		n := min(blockSize, frames-start)

		for ch := range chans {
			block := e.scratch[ch][:n]

			idx := start*channels + ch
			for i := range block {
				block[i] = float64(buf[idx])
				idx += channels
			}

			e.cascade(ch, block)

			idx = start*channels + ch
			for _, y := range block {
				buf[idx] = float32(clip(y))
				idx += channels
			}
		}
	}
}

// ProcessFrames filters stereo frames in place with the same semantics as
// ProcessBuffer.
func (e *Equalizer) ProcessFrames(samples [][2]float64) {
	if len(samples) == 0 || !e.active() {
		return
	}

	for start := 0; start < len(samples); start += blockSize {
		chunk := samples[start:min(start+blockSize, len(samples))]

		for ch := range MaxChannels {
			block := e.scratch[ch][:len(chunk)]
			for i := range chunk {
				block[i] = chunk[i][ch]
			}

			e.cascade(ch, block)

			for i, y := range block {
				chunk[i][ch] = clip(y)
			}
		}
	}
}

// cascade runs block through every band of channel ch, lowest band first.
func (e *Equalizer) cascade(ch int, block []float64) {
	for b := range NumBands {
		e.filters[b*MaxChannels+ch].ProcessBlock(block)
	}
}

func clip(x float64) float64 {
	if x > 1 {
		return 1
	}

	if x < -1 {
		return -1
	}

	return x
}
