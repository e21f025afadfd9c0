//go:build amd64 && !purego

package biquad

import (
	"sync"
	"testing"

	archregistry "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-eq/internal/cpu"
)

func resetProcessBlockDispatchForTest() {
	processBlockImpl = nil
	processBlockName = ""
	processBlockInitOnce = sync.Once{}
}

func TestProcessBlockDispatch_AMD64Modes(t *testing.T) {
	tests := []struct {
		name     string
		features cpu.Features
		wantImpl string
	}{
		{
			name:     "generic-forced",
			features: cpu.Features{ForceGeneric: true, Architecture: "amd64"},
			wantImpl: "generic",
		},
		{
			name:     "sse2-only",
			features: cpu.Features{HasSSE2: true, Architecture: "amd64"},
			wantImpl: "generic",
		},
		{
			name:     "avx2",
			features: cpu.Features{HasSSE2: true, HasAVX2: true, Architecture: "amd64"},
			wantImpl: "avx2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu.SetForcedFeatures(tt.features)

			defer cpu.ResetDetection()
			defer resetProcessBlockDispatchForTest()

			resetProcessBlockDispatchForTest()

			entry := archregistry.Global.Lookup(cpu.DetectFeatures())
			if entry == nil {
				t.Fatal("Lookup returned nil")
			}

			if entry.Name != tt.wantImpl {
				t.Fatalf("expected %q, got %q", tt.wantImpl, entry.Name)
			}

			if got := Kernel(); got != tt.wantImpl {
				t.Fatalf("Kernel() = %q, want %q", got, tt.wantImpl)
			}

			coeff := HighShelf(7000, 44100, 12, DefaultShelfQ)
			sRef := NewSection(coeff)
			sGot := NewSection(coeff)
			input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8, -0.1}

			ref := make([]float64, len(input))
			for i, x := range input {
				ref[i] = sRef.ProcessSample(x)
			}

			got := append([]float64(nil), input...)
			sGot.ProcessBlock(got)

			for i := range got {
				if got[i] != ref[i] {
					t.Fatalf("sample %d mismatch: got %.17g, want %.17g", i, got[i], ref[i])
				}
			}
		})
	}
}
