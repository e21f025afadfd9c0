package cpu

import "testing"

func TestSupports(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		level    SIMDLevel
		want     bool
	}{
		{name: "none always", features: Features{}, level: SIMDNone, want: true},
		{name: "avx2 present", features: Features{HasSSE2: true, HasAVX2: true}, level: SIMDAVX2, want: true},
		{name: "avx2 missing", features: Features{HasSSE2: true}, level: SIMDAVX2, want: false},
		{name: "neon", features: Features{HasNEON: true}, level: SIMDNEON, want: true},
		{name: "force generic", features: Features{HasAVX2: true, ForceGeneric: true}, level: SIMDAVX2, want: false},
		{name: "force generic none", features: Features{ForceGeneric: true}, level: SIMDNone, want: true},
		{name: "unknown level", features: Features{HasAVX2: true}, level: SIMDLevel(99), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Supports(tt.features, tt.level); got != tt.want {
				t.Fatalf("Supports(%+v, %v) = %v, want %v", tt.features, tt.level, got, tt.want)
			}
		})
	}
}

func TestForcedFeatures(t *testing.T) {
	defer ResetDetection()

	SetForcedFeatures(Features{Architecture: "test", HasAVX2: true})

	got := DetectFeatures()
	if got.Architecture != "test" || !got.HasAVX2 {
		t.Fatalf("forced features not returned: %+v", got)
	}

	ResetDetection()

	if DetectFeatures().Architecture == "test" {
		t.Fatal("ResetDetection did not clear forced features")
	}
}

func TestSIMDLevelString(t *testing.T) {
	if SIMDAVX2.String() != "AVX2" {
		t.Fatalf("SIMDAVX2.String() = %q", SIMDAVX2.String())
	}

	if SIMDLevel(42).String() != "Unknown" {
		t.Fatalf("unexpected name for unknown level: %q", SIMDLevel(42).String())
	}
}
