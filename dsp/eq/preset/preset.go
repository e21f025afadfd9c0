// Package preset reads and writes the persisted equalizer record and holds
// the built-in gain presets.
//
// The record is plain text: an enabled flag (0 or 1) on the first line and
// the band gains in dB, space separated, on the second:
//
//	1
//	5 3 2 1 1 0 0 0 0
package preset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

// ErrNoSettings is returned by Read when the input holds no record at all.
var ErrNoSettings = errors.New("preset: no settings in input")

// Settings is one persisted equalizer record.
type Settings struct {
	Enabled bool
	// Gains holds the band gains that were present, band 0 first. It may be
	// shorter than eq.NumBands.
	Gains []float64
}

// Read parses a record from r.
//
// A missing or malformed enabled flag yields Enabled = true and no gains.
// Gains are read until the first token that is not a number; the ones read
// so far are kept. Tokens beyond eq.NumBands gains are ignored.
func Read(r io.Reader) (Settings, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Settings{}, fmt.Errorf("preset: read: %w", err)
		}

		return Settings{}, ErrNoSettings
	}

	var s Settings

	switch sc.Text() {
	case "0":
		s.Enabled = false
	case "1":
		s.Enabled = true
	default:
		return Settings{Enabled: true}, nil
	}

	for len(s.Gains) < eq.NumBands && sc.Scan() {
		g, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			break
		}

		s.Gains = append(s.Gains, g)
	}

	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("preset: read: %w", err)
	}

	return s, nil
}

// Write serializes s to w.
func Write(w io.Writer, s Settings) error {
	bw := bufio.NewWriter(w)

	flag := "0"
	if s.Enabled {
		flag = "1"
	}

	bw.WriteString(flag)
	bw.WriteByte('\n')

	for _, g := range s.Gains {
		bw.WriteString(strconv.FormatFloat(g, 'g', -1, 64))
		bw.WriteByte(' ')
	}

	bw.WriteByte('\n')

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("preset: write: %w", err)
	}

	return nil
}

// Load reads the record stored at path.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("preset: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Save writes s to path, creating parent directories as needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("preset: create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preset: create %s: %w", path, err)
	}

	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("preset: close %s: %w", path, err)
	}

	return nil
}

// Apply pushes s into e. Bands missing from s keep their current gain.
func Apply(e *eq.Equalizer, s Settings) {
	e.SetEnabled(s.Enabled)

	g := e.Gains()
	copy(g[:], s.Gains)
	e.SetGains(g)
}

// Capture returns the current state of e as a record.
func Capture(e *eq.Equalizer) Settings {
	g := e.Gains()

	return Settings{
		Enabled: e.Enabled(),
		Gains:   append([]float64(nil), g[:]...),
	}
}

// Resolve picks the settings for a command line: a named built-in preset
// wins over a gain list, which wins over the record at path. A missing
// record yields flat gains. Named presets and gain lists are enabled.
func Resolve(name, gains, path string) (Settings, error) {
	switch {
	case name != "":
		g, ok := Lookup(name)
		if !ok {
			return Settings{}, fmt.Errorf("preset: unknown preset %q", name)
		}

		return Settings{Enabled: true, Gains: g[:]}, nil
	case gains != "":
		g, err := ParseGains(gains)
		if err != nil {
			return Settings{}, err
		}

		return Settings{Enabled: true, Gains: g[:]}, nil
	case path != "":
		s, err := Load(path)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNoSettings) {
			return Settings{Enabled: true}, nil
		}

		return s, err
	default:
		return Settings{Enabled: true}, nil
	}
}
