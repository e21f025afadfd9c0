// Package biquad provides a second-order IIR filter section and the RBJ
// "Audio EQ Cookbook" recipes used to tune it.
//
// A [Section] evaluates the Direct Form I difference equation
//
//	y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2]
//
// keeping the two previous inputs and outputs as its history. Coefficients
// are replaced with [Section.SetPeakingEQ], [Section.SetLowShelf] and
// [Section.SetHighShelf] (or assigned directly from [PeakingEQ], [LowShelf]
// and [HighShelf]); history is cleared only by [Section.Reset].
//
// The recipes deliberately skip any validation: a frequency at or above
// Nyquist, a non-positive frequency or Q yields numerically defined but
// useless coefficients. Callers own parameter sanity.
//
// ProcessSample and ProcessBlock are allocation-free and take no locks, so
// they can run inside an audio device callback.
package biquad
