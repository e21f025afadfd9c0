package biquad

import "math"

const (
	// DefaultPeakingQ is the Q used by peaking bands.
	DefaultPeakingQ = 1.0

	// DefaultShelfQ is the Q used by shelving bands.
	DefaultShelfQ = 0.707
)

// PeakingEQ designs a symmetric boost/cut around freq (Hz).
//
//	A = 10^(gainDB/40), w = 2*pi*freq/sampleRate, alpha = sin(w)/(2Q)
func PeakingEQ(freq, sampleRate, gainDB, q float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / sampleRate
	sinW := math.Sin(w)
	cosW := math.Cos(w)
	alpha := sinW / (2 * q)

	a0 := 1 + alpha/a

	return Coefficients{
		B0: (1 + alpha*a) / a0,
		B1: (-2 * cosW) / a0,
		B2: (1 - alpha*a) / a0,
		A1: (-2 * cosW) / a0,
		A2: (1 - alpha/a) / a0,
	}
}

// LowShelf designs a shelf boosting or cutting everything below freq (Hz).
// The shelf slope is fixed at its maximum (S = 1), so beta = sqrt(A)/Q.
func LowShelf(freq, sampleRate, gainDB, q float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / sampleRate
	sinW := math.Sin(w)
	cosW := math.Cos(w)
	beta := math.Sqrt(a) / q

	a0 := (a + 1) + (a-1)*cosW + beta*sinW

	return Coefficients{
		B0: (a * ((a + 1) - (a-1)*cosW + beta*sinW)) / a0,
		B1: (2 * a * ((a - 1) - (a+1)*cosW)) / a0,
		B2: (a * ((a + 1) - (a-1)*cosW - beta*sinW)) / a0,
		A1: (-2 * ((a - 1) + (a+1)*cosW)) / a0,
		A2: ((a + 1) + (a-1)*cosW - beta*sinW) / a0,
	}
}

// HighShelf mirrors LowShelf for everything above freq (Hz).
func HighShelf(freq, sampleRate, gainDB, q float64) Coefficients {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / sampleRate
	sinW := math.Sin(w)
	cosW := math.Cos(w)
	beta := math.Sqrt(a) / q

	a0 := (a + 1) - (a-1)*cosW + beta*sinW

	return Coefficients{
		B0: (a * ((a + 1) + (a-1)*cosW + beta*sinW)) / a0,
		B1: (-2 * a * ((a - 1) + (a+1)*cosW)) / a0,
		B2: (a * ((a + 1) + (a-1)*cosW - beta*sinW)) / a0,
		A1: (2 * ((a - 1) - (a+1)*cosW)) / a0,
		A2: ((a + 1) - (a-1)*cosW - beta*sinW) / a0,
	}
}

// SetPeakingEQ retunes s as a peaking filter. History is kept.
func (s *Section) SetPeakingEQ(freq, sampleRate, gainDB, q float64) {
	s.Coefficients = PeakingEQ(freq, sampleRate, gainDB, q)
}

// SetLowShelf retunes s as a low shelf. History is kept.
func (s *Section) SetLowShelf(freq, sampleRate, gainDB, q float64) {
	s.Coefficients = LowShelf(freq, sampleRate, gainDB, q)
}

// SetHighShelf retunes s as a high shelf. History is kept.
func (s *Section) SetHighShelf(freq, sampleRate, gainDB, q float64) {
	s.Coefficients = HighShelf(freq, sampleRate, gainDB, q)
}
