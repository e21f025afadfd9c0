// Command eqplay plays an audio file through the equalizer and lets you
// adjust it from the terminal while it plays.
//
// Usage:
//
//	eqplay [flags] file
//
// Commands read from stdin:
//
//	band <0-8> <dB>   set a band gain
//	on | off          enable or bypass the equalizer
//	reset             flatten all bands and clear filter state
//	preset <name>     load a built-in preset
//	show              print the current settings
//	save              write the record now
//	quit              stop playback
//
// Every change is written to the record file (preset_path in the config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/preset"
	"github.com/cwbudde/algo-eq/dsp/eq/stream"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/internal/appconfig"
	"github.com/cwbudde/algo-eq/internal/control"
	"github.com/cwbudde/algo-eq/internal/decode"
)

const defaultResampleQuality = 4

// output is the audio device. The speaker package drives the streamer from
// its own goroutine, which becomes the equalizer's audio context.
type output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (speakerOutput) Close() { speaker.Close() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, speakerOutput{}); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, out output) error {
	fs := flag.NewFlagSet("eqplay", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	presetName := fs.String("preset", "", "start with a built-in preset: "+strings.Join(preset.Names(), ", "))
	quality := fs.Int("quality", defaultResampleQuality, "resampling quality 1-6")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: eqplay [flags] file\n\n")
		fmt.Fprintf(fs.Output(), "Supported inputs: %s\n\n", strings.Join(decode.Extensions, " "))
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one input file")
	}

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		return err
	}

	logger := cfg.Logger()

	settings, err := preset.Resolve(*presetName, "", cfg.PresetPath)
	if err != nil {
		return err
	}

	e := eq.New(eq.WithLogger(logger.WithField("component", "eq")), eq.WithSampleRate(cfg.SampleRate))
	preset.Apply(e, settings)

	src, format, err := decode.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	sr := beep.SampleRate(int(cfg.SampleRate))
	if err := out.Init(sr, cfg.BufferFrames); err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	defer out.Close()

	// Select the block kernel before the first callback.
	logger.WithField("kernel", biquad.Kernel()).Debug("biquad kernel selected")

	finished := make(chan struct{})
	s := stream.New(e, decode.Resampled(src, format.SampleRate, sr, *quality))
	out.Play(beep.Seq(s, beep.Callback(func() { close(finished) })))

	logger.WithFields(logrus.Fields{"file": fs.Arg(0), "rate": int(sr)}).Info("playing")

	save := func(st preset.Settings) error { return preset.Save(cfg.PresetPath, st) }
	ctrl := control.New(e, save, stdout, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrlDone := make(chan error, 1)

	go func() { ctrlDone <- ctrl.Run(ctx, stdin) }()

	// End of input keeps the track playing; only quit, an interrupt or the
	// end of the track stop it.
	for {
		select {
		case <-finished:
			if err := s.Err(); err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			logger.Info("playback finished")

			return nil
		case <-ctrl.Done():
			logger.Info("playback stopped")
			return nil
		case <-ctx.Done():
			logger.Info("playback interrupted")
			return nil
		case err := <-ctrlDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			ctrlDone = nil
		}
	}
}
