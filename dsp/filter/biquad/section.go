package biquad

import (
	"sync"

	archregistry "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-eq/internal/cpu"
)

// Coefficients holds the normalized transfer function of one section
// (a0 divided out and not stored):
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (1 + A1*z^-1 + A2*z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Passthrough returns the identity coefficient set (B0 = 1, rest 0).
func Passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// Section is a single biquad with coefficients and Direct Form I history.
type Section struct {
	Coefficients

	x1, x2 float64 // previous inputs
	y1, y2 float64 // previous outputs
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockName     string
	processBlockInitOnce sync.Once
)

// NewSection returns a Section with the given coefficients and zero history.
// Use NewSection(Passthrough()) for an identity filter.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one sample and shifts the history.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.B1*s.x1 + s.B2*s.x2 - s.A1*s.y1 - s.A2*s.y2

	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = y

	return y
}

// ProcessBlock filters buf in place. The result equals calling
// ProcessSample on every element in order. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	processBlockInitOnce.Do(initProcessBlockKernel)

	coeffs := archregistry.Coefficients{
		B0: s.B0,
		B1: s.B1,
		B2: s.B2,
		A1: s.A1,
		A2: s.A2,
	}

	st := processBlockImpl(coeffs, archregistry.State{X1: s.x1, X2: s.x2, Y1: s.y1, Y2: s.y2}, buf)
	s.x1, s.x2, s.y1, s.y2 = st.X1, st.X2, st.Y1, st.Y2
}

// ProcessBlockTo filters src into dst. dst must be at least as long as src.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = s.ProcessSample(x)
	}
}

// Reset zeroes the history. Coefficients are left untouched.
func (s *Section) Reset() {
	s.x1, s.x2 = 0, 0
	s.y1, s.y2 = 0, 0
}

// State returns the history as [x1, x2, y1, y2].
func (s *Section) State() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}

// SetState restores a history previously returned by State.
func (s *Section) SetState(state [4]float64) {
	s.x1, s.x2 = state[0], state[1]
	s.y1, s.y2 = state[2], state[3]
}

// Kernel returns the name of the block kernel selected for this CPU.
// Calling it once outside the audio path also performs the selection, so the
// first ProcessBlock in a callback does not pay for it.
func Kernel() string {
	processBlockInitOnce.Do(initProcessBlockKernel)
	return processBlockName
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
	processBlockName = entry.Name
}
