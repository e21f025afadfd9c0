package eq

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

const (
	// NumBands is the number of equalizer bands.
	NumBands = 9

	// MaxChannels is the number of interleaved channels that are filtered.
	// Further channels pass through untouched.
	MaxChannels = 2

	// MinGainDB and MaxGainDB bound every band gain.
	MinGainDB = -30.0
	MaxGainDB = 30.0

	// DefaultSampleRate is reported by SampleRate before Initialize.
	DefaultSampleRate = 44100.0
)

var frequencies = [NumBands]float64{30, 150, 350, 600, 1000, 3500, 7000, 11000, 16000}

var labels = [NumBands]string{"30Hz", "150Hz", "350Hz", "600Hz", "1KHz", "3.5KHz", "7KHz", "11KHz", "16KHz"}

// Topology is the filter shape used by a band.
type Topology int

const (
	LowShelf Topology = iota
	Peaking
	HighShelf
)

func (t Topology) String() string {
	switch t {
	case LowShelf:
		return "LowShelf"
	case Peaking:
		return "Peaking"
	case HighShelf:
		return "HighShelf"
	default:
		return "Unknown"
	}
}

// Q returns the quality factor used for this topology.
func (t Topology) Q() float64 {
	if t == Peaking {
		return biquad.DefaultPeakingQ
	}

	return biquad.DefaultShelfQ
}

// TopologyFor returns the topology of band: the first band is a low shelf,
// the last a high shelf, everything else peaking.
func TopologyFor(band int) Topology {
	switch band {
	case 0:
		return LowShelf
	case NumBands - 1:
		return HighShelf
	default:
		return Peaking
	}
}

// Band describes one equalizer band.
type Band struct {
	Index     int
	Frequency float64 // center or corner frequency in Hz
	Topology  Topology
	Q         float64
	Label     string
}

// Bands returns the descriptors of all bands in ascending frequency order.
func Bands() []Band {
	out := make([]Band, NumBands)
	for i := range out {
		t := TopologyFor(i)
		out[i] = Band{
			Index:     i,
			Frequency: frequencies[i],
			Topology:  t,
			Q:         t.Q(),
			Label:     labels[i],
		}
	}

	return out
}

// Frequencies returns a copy of the band frequency table.
func Frequencies() [NumBands]float64 {
	return frequencies
}

// Frequency returns the frequency of band, or 0 when band is out of range.
func Frequency(band int) float64 {
	if band < 0 || band >= NumBands {
		return 0
	}

	return frequencies[band]
}

// ClampGain limits gainDB to [MinGainDB, MaxGainDB]. NaN maps to 0 dB.
func ClampGain(gainDB float64) float64 {
	switch {
	case math.IsNaN(gainDB):
		return 0
	case gainDB < MinGainDB:
		return MinGainDB
	case gainDB > MaxGainDB:
		return MaxGainDB
	default:
		return gainDB
	}
}

// design computes the coefficients of band at sampleRate.
func design(band int, sampleRate, gainDB float64) biquad.Coefficients {
	t := TopologyFor(band)
	freq := frequencies[band]

	switch t {
	case LowShelf:
		return biquad.LowShelf(freq, sampleRate, gainDB, t.Q())
	case HighShelf:
		return biquad.HighShelf(freq, sampleRate, gainDB, t.Q())
	default:
		return biquad.PeakingEQ(freq, sampleRate, gainDB, t.Q())
	}
}
