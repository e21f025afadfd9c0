// Command eqrender applies the equalizer to an audio file and writes the
// result as a PCM WAV file.
//
// Usage:
//
//	eqrender [flags] input output.wav
//
// WAV input that already has the target sample rate is processed at its
// native channel count. Other inputs (flac, mp3, ogg, or WAV at another
// rate) are decoded to stereo and resampled first.
//
// Examples:
//
//	eqrender -preset boost-bass song.flac song-eq.wav
//	eqrender -gains 0,0,0,0,-6 -bits 24 take.wav take-eq.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/pcm"
	"github.com/cwbudde/algo-eq/dsp/eq/preset"
	"github.com/cwbudde/algo-eq/dsp/eq/stream"
	"github.com/cwbudde/algo-eq/internal/appconfig"
	"github.com/cwbudde/algo-eq/internal/decode"
)

const (
	defaultBitDepth        = 16
	defaultResampleQuality = 4
	minRequiredArgs        = 2
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	cfg      appconfig.Config
	settings preset.Settings
	bitDepth int
	quality  int
}

func run(args []string) error {
	fs := flag.NewFlagSet("eqrender", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	rate := fs.Float64("rate", 0, "output sample rate in Hz (default from config)")
	presetName := fs.String("preset", "", "built-in preset: "+strings.Join(preset.Names(), ", "))
	gains := fs.String("gains", "", "comma separated band gains in dB")
	record := fs.String("record", "", "equalizer record to read (default from config when no preset or gains)")
	bitDepth := fs.Int("bits", defaultBitDepth, "output bit depth: 16, 24 or 32")
	quality := fs.Int("quality", defaultResampleQuality, "resampling quality 1-6")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: eqrender [flags] input output.wav\n\n")
		fmt.Fprintf(fs.Output(), "Supported inputs: %s\n\n", strings.Join(decode.Extensions, " "))
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < minRequiredArgs {
		fs.Usage()
		return errors.New("insufficient arguments")
	}

	if _, err := pcm.FullScale(*bitDepth); err != nil {
		return err
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

	opts := options{cfg: cfg, settings: settings, bitDepth: *bitDepth, quality: *quality}

	return render(fs.Arg(0), fs.Arg(1), opts)
}

func render(in, out string, opts options) error {
	logger := opts.cfg.Logger()

	e := eq.New(eq.WithLogger(logger.WithField("component", "eq")), eq.WithSampleRate(opts.cfg.SampleRate))
	preset.Apply(e, opts.settings)

	if !e.Enabled() {
		logger.Warn("equalizer record is disabled, output will be unfiltered")
	}

	if strings.EqualFold(filepath.Ext(in), ".wav") {
		done, err := renderNative(e, in, out, opts, logger)
		if done || err != nil {
			return err
		}
	}

	return renderStream(e, in, out, opts, logger)
}

// renderNative filters a WAV file with go-audio at its own channel count.
// It reports false without writing anything if the file needs resampling.
func renderNative(e *eq.Equalizer, in, out string, opts options, logger logrus.FieldLogger) (bool, error) {
	f, err := os.Open(in)
	if err != nil {
		return false, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return false, fmt.Errorf("invalid WAV file: %s", in)
	}

	format := dec.Format()
	if float64(format.SampleRate) != opts.cfg.SampleRate {
		return false, nil
	}

	srcDepth := int(dec.BitDepth)
	if _, err := pcm.FullScale(srcDepth); err != nil {
		// Leave odd bit depths to the stream decoder.
		return false, nil
	}

	enc, closeOut, err := createOutput(out, format.SampleRate, opts.bitDepth, format.NumChannels)
	if err != nil {
		return true, err
	}

	frames := opts.cfg.BufferFrames
	inBuf := &audio.IntBuffer{Format: format, Data: make([]int, frames*format.NumChannels)}
	fb := &audio.Float32Buffer{}
	ob := &audio.IntBuffer{}
	total := 0

	for {
		n, err := dec.PCMBuffer(inBuf)
		if err != nil {
			closeOut()
			return true, fmt.Errorf("decode: %w", err)
		}

		if n == 0 {
			break
		}

		chunk := &audio.IntBuffer{Format: format, Data: inBuf.Data[:n]}
		if err := pcm.IntToFloat(fb, chunk, srcDepth); err != nil {
			closeOut()
			return true, err
		}

		pcm.Process(e, fb)

		if err := pcm.FloatToInt(ob, fb, opts.bitDepth); err != nil {
			closeOut()
			return true, err
		}

		if err := enc.Write(ob); err != nil {
			closeOut()
			return true, fmt.Errorf("encode: %w", err)
		}

		total += fb.NumFrames()
	}

	logger.WithFields(logrus.Fields{"frames": total, "channels": format.NumChannels, "output": out}).Info("rendered")

	return true, closeOut()
}

// renderStream decodes any supported file to stereo, resamples it to the
// target rate and filters it through the stream adapter.
func renderStream(e *eq.Equalizer, in, out string, opts options, logger logrus.FieldLogger) error {
	src, format, err := decode.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	target := beep.SampleRate(int(opts.cfg.SampleRate))
	s := stream.New(e, decode.Resampled(src, format.SampleRate, target, opts.quality))

	enc, closeOut, err := createOutput(out, int(target), opts.bitDepth, 2)
	if err != nil {
		return err
	}

	frames := make([][2]float64, opts.cfg.BufferFrames)
	interleaved := make([]float32, 0, 2*len(frames))
	ob := &audio.IntBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: int(target)}, SourceBitDepth: opts.bitDepth}
	total := 0

	for {
		n, ok := s.Stream(frames)

		if n > 0 {
			interleaved = interleaved[:0]
			for _, fr := range frames[:n] {
				interleaved = append(interleaved, float32(fr[0]), float32(fr[1]))
			}

			if ob.Data, err = pcm.ToInt(ob.Data, interleaved, opts.bitDepth); err != nil {
				closeOut()
				return err
			}

			if err := enc.Write(ob); err != nil {
				closeOut()
				return fmt.Errorf("encode: %w", err)
			}

			total += n
		}

		if !ok {
			break
		}
	}

	if err := s.Err(); err != nil {
		closeOut()
		return fmt.Errorf("decode: %w", err)
	}

	logger.WithFields(logrus.Fields{"frames": total, "rate": int(target), "output": out}).Info("rendered")

	return closeOut()
}

func createOutput(path string, sampleRate, bitDepth, channels int) (*wav.Encoder, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)

	closeOut := func() error {
		if err := enc.Close(); err != nil {
			_ = f.Close()
			return fmt.Errorf("finalize WAV: %w", err)
		}

		return f.Close()
	}

	return enc, closeOut, nil
}
