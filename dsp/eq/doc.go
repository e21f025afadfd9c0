// Package eq implements a nine-band stereo parametric equalizer for
// real-time PCM streams.
//
// Each band is one biquad section per channel, tuned to a fixed center
// frequency (see [Bands]). Band 0 is a low shelf, band 8 a high shelf and
// the bands in between are peaking filters. Gains are clamped to
// [MinGainDB, MaxGainDB].
//
// An [Equalizer] is used from two contexts at once: a control context that
// changes gains and flags, and an audio context that calls
// [Equalizer.ProcessBuffer] or [Equalizer.ProcessFrames] from a device
// callback. Control methods publish an immutable parameter snapshot; the
// audio context reads it once per call, so it never blocks, never
// allocates and never observes a half-updated coefficient set. Only one
// goroutine may act as the audio context at a time.
//
// No method returns an error. Out-of-range bands are ignored, gains are
// clamped and processing before [Equalizer.Initialize] leaves the buffer
// untouched.
package eq
