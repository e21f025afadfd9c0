package control

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/preset"
)

func newEqualizer() *eq.Equalizer {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return eq.New(eq.WithLogger(l), eq.WithSampleRate(44100))
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"band 3 -4.5", Command{Kind: Band, Band: 3, Gain: -4.5}},
		{"  B 0 12 ", Command{Kind: Band, Band: 0, Gain: 12}},
		{"on", Command{Kind: On}},
		{"OFF", Command{Kind: Off}},
		{"reset", Command{Kind: Reset}},
		{"preset boost-bass", Command{Kind: Preset, Name: "boost-bass"}},
		{"p flat", Command{Kind: Preset, Name: "flat"}},
		{"save", Command{Kind: Save}},
		{"status", Command{Kind: Show}},
		{"quit", Command{Kind: Quit}},
		{"q", Command{Kind: Quit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]error{
		"":              ErrUsage,
		"band":          ErrUsage,
		"band x 3":      ErrUsage,
		"band 1 loud":   ErrUsage,
		"band 1 2 3":    ErrUsage,
		"on please":     ErrUsage,
		"preset":        ErrUsage,
		"louder":        ErrUnknownCommand,
		"rewind 10 sec": ErrUnknownCommand,
	}

	for line, want := range tests {
		_, err := Parse(line)
		assert.ErrorIs(t, err, want, "line %q", line)
	}
}

func TestExecute(t *testing.T) {
	e := newEqualizer()

	var saved []preset.Settings

	c := New(e, func(s preset.Settings) error {
		saved = append(saved, s)
		return nil
	}, nil, nil)

	steps := []Command{
		{Kind: On},
		{Kind: Band, Band: 2, Gain: 40},
		{Kind: Preset, Name: "boost-high"},
		{Kind: Off},
		{Kind: Reset},
		{Kind: Save},
	}

	for _, cmd := range steps {
		quit, err := c.Execute(cmd)
		require.NoError(t, err)
		require.False(t, quit)
	}

	require.Len(t, saved, len(steps))

	assert.True(t, saved[0].Enabled)
	assert.Equal(t, 30.0, saved[1].Gains[2])
	assert.Equal(t, preset.BoostHigh[:], saved[2].Gains)
	assert.False(t, saved[3].Enabled)
	assert.Equal(t, make([]float64, eq.NumBands), saved[4].Gains)
	assert.Equal(t, saved[4], saved[5])

	select {
	case <-c.Done():
		t.Fatal("Done closed before quit")
	default:
	}

	quit, err := c.Execute(Command{Kind: Quit})
	require.NoError(t, err)
	assert.True(t, quit)

	_, err = c.Execute(Command{Kind: Quit})
	require.NoError(t, err, "quitting twice is harmless")

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed after quit")
	}
}

func TestExecuteErrors(t *testing.T) {
	e := newEqualizer()
	c := New(e, nil, nil, nil)

	_, err := c.Execute(Command{Kind: Band, Band: 9, Gain: 3})
	assert.ErrorIs(t, err, ErrUsage)

	_, err = c.Execute(Command{Kind: Preset, Name: "metal"})
	assert.ErrorIs(t, err, ErrUsage)

	_, err = c.Execute(Command{Kind: Kind(99)})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	boom := errors.New("read-only fs")
	c = New(e, func(preset.Settings) error { return boom }, nil, nil)

	_, err = c.Execute(Command{Kind: On})
	assert.ErrorIs(t, err, boom)
	assert.True(t, e.Enabled(), "change applies even if saving fails")
}

func TestShow(t *testing.T) {
	e := newEqualizer()
	e.SetEnabled(true)
	e.SetBandGain(4, -6)

	var out bytes.Buffer

	c := New(e, nil, &out, nil)
	_, err := c.Execute(Command{Kind: Show})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "equalizer on")
	assert.Contains(t, text, "1KHz")
	assert.Contains(t, text, "-6.0 dB")
	assert.Contains(t, text, "HighShelf")
}

func TestRun(t *testing.T) {
	e := newEqualizer()
	logger, hook := logtest.NewNullLogger()

	var out bytes.Buffer

	saves := 0
	c := New(e, func(preset.Settings) error {
		saves++
		return nil
	}, &out, logger)

	input := strings.Join([]string{
		"on",
		"",
		"band 1 5",
		"bogus",
		"band 42 1",
		"quit",
		"band 1 -5",
	}, "\n")

	require.NoError(t, c.Run(context.Background(), strings.NewReader(input)))

	assert.True(t, e.Enabled())
	assert.Equal(t, 5.0, e.BandGain(1), "commands after quit are not executed")
	assert.Equal(t, 2, saves)
	assert.Contains(t, out.String(), "unknown command")
	assert.Len(t, hook.AllEntries(), 1, "failed execution is logged once")
}

func TestRunEOF(t *testing.T) {
	c := New(newEqualizer(), nil, nil, nil)
	assert.NoError(t, c.Run(context.Background(), strings.NewReader("on\n")))
}

func TestRunContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- New(newEqualizer(), nil, nil, nil).Run(ctx, pr)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
