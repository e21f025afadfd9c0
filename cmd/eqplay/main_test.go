package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eq/dsp/eq/preset"
)

// fakeOutput drains the streamer on its own goroutine like a sound card.
type fakeOutput struct {
	mu     sync.Mutex
	sr     beep.SampleRate
	buffer int
	frames int
	pace   time.Duration
	closed bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func (f *fakeOutput) Init(sr beep.SampleRate, bufferSize int) error {
	f.sr, f.buffer = sr, bufferSize
	f.stop = make(chan struct{})

	return nil
}

func (f *fakeOutput) Play(s beep.Streamer) {
	f.wg.Add(1)

	go func() {
		defer f.wg.Done()

		buf := make([][2]float64, f.buffer)

		for {
			select {
			case <-f.stop:
				return
			default:
			}

			n, ok := s.Stream(buf)

			f.mu.Lock()
			f.frames += n
			f.mu.Unlock()

			if !ok {
				return
			}

			time.Sleep(f.pace)
		}
	}()
}

func (f *fakeOutput) Close() {
	close(f.stop)
	f.wg.Wait()

	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func setup(t *testing.T, frames int) (input, record string) {
	t.Helper()

	dir := t.TempDir()
	record = filepath.Join(dir, "cfg", "eq.cfg")

	t.Setenv("ALGOEQ_CONFIG", "")
	t.Setenv("ALGOEQ_LOG_LEVEL", "error")
	t.Setenv("ALGOEQ_SAMPLE_RATE", "44100")
	t.Setenv("ALGOEQ_BUFFER_FRAMES", "256")
	t.Setenv("ALGOEQ_PRESET_PATH", record)

	input = filepath.Join(dir, "in.wav")
	f, err := os.Create(input)
	require.NoError(t, err)

	defer f.Close()

	require.NoError(t, wav.Encode(f, beep.Take(frames, beep.Silence(-1)), beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}))

	return input, record
}

func TestPlayUntilEnd(t *testing.T) {
	input, _ := setup(t, 4000)
	out := &fakeOutput{}

	err := run(context.Background(), []string{input}, strings.NewReader(""), io.Discard, out)
	require.NoError(t, err)

	out.mu.Lock()
	defer out.mu.Unlock()

	assert.Equal(t, beep.SampleRate(44100), out.sr)
	assert.Equal(t, 256, out.buffer)
	assert.Equal(t, 4000, out.frames)
	assert.True(t, out.closed)
}

func TestControlWhilePlaying(t *testing.T) {
	input, record := setup(t, 44100*5)
	out := &fakeOutput{pace: time.Millisecond}

	var stdout bytes.Buffer

	cmds := "on\nband 4 -6\npreset boost-bass\nband 8 3\nshow\nquit\n"
	err := run(context.Background(), []string{input}, strings.NewReader(cmds), &stdout, out)
	require.NoError(t, err)

	s, err := preset.Load(record)
	require.NoError(t, err)

	assert.True(t, s.Enabled)
	assert.Equal(t, []float64{5, 3, 2, 1, 1, 0, 0, 0, 3}, s.Gains)
	assert.Contains(t, stdout.String(), "equalizer on")
}

func TestStartsFromRecord(t *testing.T) {
	input, record := setup(t, 44100*5)
	require.NoError(t, preset.Save(record, preset.Settings{Enabled: false, Gains: []float64{0, 7}}))

	var stdout bytes.Buffer

	err := run(context.Background(), []string{input}, strings.NewReader("show\nquit\n"), &stdout, &fakeOutput{pace: time.Millisecond})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "equalizer off")
	assert.Contains(t, stdout.String(), "+7.0 dB")
}

func TestCancelledContext(t *testing.T) {
	input, _ := setup(t, 44100*5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	err := run(ctx, []string{input}, pr, io.Discard, &fakeOutput{pace: time.Millisecond})
	assert.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	input, _ := setup(t, 100)

	assert.Error(t, run(context.Background(), nil, strings.NewReader(""), io.Discard, &fakeOutput{}))
	assert.Error(t, run(context.Background(), []string{"-preset", "nope", input}, strings.NewReader(""), io.Discard, &fakeOutput{}))
	assert.Error(t, run(context.Background(), []string{filepath.Join(t.TempDir(), "x.mp3")}, strings.NewReader(""), io.Discard, &fakeOutput{}))
}
