// Package cpu detects the SIMD extensions used to pick biquad block kernels.
//
// Detection runs once, lazily, on the first call to DetectFeatures. Tests can
// pin a feature set with SetForcedFeatures and undo it with ResetDetection.
package cpu

import "sync"

// SIMDLevel names the instruction set a kernel was written for.
type SIMDLevel int

const (
	// SIMDNone is the portable Go fallback.
	SIMDNone SIMDLevel = iota

	// SIMDSSE2 is the x86-64 baseline.
	SIMDSSE2

	// SIMDAVX2 is x86-64 AVX2.
	SIMDAVX2

	// SIMDNEON is ARM Advanced SIMD.
	SIMDNEON
)

// String returns a human-readable name for the level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX2:
		return "AVX2"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Features describes the CPU capabilities relevant to kernel selection.
type Features struct {
	HasSSE2 bool
	HasAVX2 bool
	HasNEON bool

	// ForceGeneric restricts selection to SIMDNone kernels.
	ForceGeneric bool

	// Architecture is runtime.GOARCH.
	Architecture string
}

var (
	detected   Features
	detectOnce sync.Once
	detectMu   sync.Mutex

	forced   *Features
	forcedMu sync.RWMutex
)

// DetectFeatures returns the features of the running CPU, or the forced set
// installed by SetForcedFeatures. Safe for concurrent use.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()

	if f != nil {
		return *f
	}

	detectMu.Lock()
	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
	})
	features := detected
	detectMu.Unlock()

	return features
}

// SetForcedFeatures overrides hardware detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()

	pinned := f
	forced = &pinned
}

// ResetDetection drops any forced features and the detection cache.
func ResetDetection() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()

	detectMu.Lock()
	detectOnce = sync.Once{}
	detected = Features{}
	detectMu.Unlock()
}

// Supports reports whether features can run a kernel written for level.
func Supports(features Features, level SIMDLevel) bool {
	if features.ForceGeneric {
		return level == SIMDNone
	}

	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return features.HasSSE2
	case SIMDAVX2:
		return features.HasAVX2
	case SIMDNEON:
		return features.HasNEON
	default:
		return false
	}
}
