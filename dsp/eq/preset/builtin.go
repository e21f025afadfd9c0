package preset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

// Built-in gain presets.
var (
	Flat      = eq.Gains{}
	BoostBass = eq.Gains{5, 3, 2, 1, 1, 0, 0, 0, 0}
	BoostHigh = eq.Gains{0, 0, 0, 0, 1, 1, 2, 5, 6}
)

var builtins = map[string]*eq.Gains{
	"flat":       &Flat,
	"boost-bass": &BoostBass,
	"boost-high": &BoostHigh,
}

// Lookup returns the built-in preset called name. Matching ignores case.
func Lookup(name string) (eq.Gains, bool) {
	g, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return eq.Gains{}, false
	}

	return *g, true
}

// Names returns the built-in preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ParseGains parses a comma separated gain list such as "5,3,2". Missing
// trailing bands are 0 dB. Values are not clamped here.
func ParseGains(s string) (eq.Gains, error) {
	var g eq.Gains

	parts := strings.Split(s, ",")
	if len(parts) > eq.NumBands {
		return g, fmt.Errorf("preset: %d gains given, at most %d bands", len(parts), eq.NumBands)
	}

	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return eq.Gains{}, fmt.Errorf("preset: gain %d: %w", i, err)
		}

		g[i] = v
	}

	return g, nil
}
