// Command eqinfo prints the equalizer band table together with the analytic
// and the measured response of a gain setting.
//
// Usage:
//
//	eqinfo [flags]
//
// Examples:
//
//	eqinfo
//	eqinfo -preset boost-bass
//	eqinfo -gains 6,0,0,-3,0,0,0,0,4 -rate 48000
//	eqinfo -record ~/.config/algo-eq/eq.cfg
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/preset"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/internal/appconfig"
	"github.com/cwbudde/algo-eq/measure/response"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("eqinfo", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	rate := fs.Float64("rate", 0, "sample rate in Hz (default from config)")
	presetName := fs.String("preset", "", "built-in preset: "+strings.Join(preset.Names(), ", "))
	gains := fs.String("gains", "", "comma separated band gains in dB")
	record := fs.String("record", "", "equalizer record to read (default from config when no preset or gains)")
	fftSize := fs.Int("fft", 16384, "FFT size for the measured response")
	list := fs.Bool("list", false, "list built-in presets")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: eqinfo [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Prints the band table with analytic and measured gains.\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		for _, name := range preset.Names() {
			g, _ := preset.Lookup(name)
			fmt.Fprintf(out, "%-12s %v\n", name, g)
		}

		return nil
	}

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		return err
	}

	if *rate > 0 {
		cfg.SampleRate = *rate
	}

	path := *record
	if path == "" && *presetName == "" && *gains == "" {
		path = cfg.PresetPath
	}

	settings, err := preset.Resolve(*presetName, *gains, path)
	if err != nil {
		return err
	}

	e := eq.New(eq.WithLogger(cfg.Logger()), eq.WithSampleRate(cfg.SampleRate))
	preset.Apply(e, settings)

	curve, err := response.Measure(e.Gains(), cfg.SampleRate, response.WithFFTSize(*fftSize))
	if err != nil {
		return err
	}

	printTable(out, e, curve)

	return nil
}

func printTable(out io.Writer, e *eq.Equalizer, curve *response.Curve) {
	state := "disabled"
	if e.Enabled() {
		state = "enabled"
	}

	fmt.Fprintf(out, "sample rate: %g Hz   kernel: %s   record: %s\n\n", e.SampleRate(), biquad.Kernel(), state)

	freqs := eq.Frequencies()
	analytic := e.ResponseDB(freqs[:])

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Band\tLabel\tType\tQ\tGain (dB)\tAnalytic (dB)\tMeasured (dB)\t")
	fmt.Fprintln(tw, "----\t-----\t----\t-\t---------\t-------------\t-------------\t")

	for i, b := range eq.Bands() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%+.2f\t%+.2f\t%+.2f\t\n",
			b.Index, b.Label, b.Topology, b.Q, e.BandGain(i), analytic[i], curve.At(b.Frequency))
	}

	tw.Flush()
}
