package pcm

import (
	"io"
	"testing"

	"github.com/go-audio/audio"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/internal/testutil"
)

func newEqualizer(opts ...eq.Option) *eq.Equalizer {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return eq.New(append([]eq.Option{eq.WithLogger(l), eq.WithSampleRate(48000)}, opts...)...)
}

func TestProcessMatchesProcessBuffer(t *testing.T) {
	gains := eq.Gains{3, -6, 0, 2, 8, 0, -4, 1, 5}
	data := testutil.Interleave(
		testutil.DeterministicNoise(1, 0.3, 500),
		testutil.DeterministicNoise(2, 0.3, 500),
	)

	want := append([]float32(nil), data...)
	newEqualizer(eq.WithGains(gains), eq.WithEnabled(true)).ProcessBuffer(want, 500, 2)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   data,
	}
	Process(newEqualizer(eq.WithGains(gains), eq.WithEnabled(true)), buf)

	testutil.RequireBitIdentical(t, buf.Data, want)
}

func TestProcessIgnoresIncompleteBuffers(t *testing.T) {
	e := newEqualizer(eq.WithGains(eq.Gains{12}), eq.WithEnabled(true))

	assert.NotPanics(t, func() {
		Process(e, nil)
		Process(e, &audio.Float32Buffer{Data: []float32{0.5}})
		Process(e, &audio.Float32Buffer{Format: &audio.Format{}, Data: []float32{0.5}})
	})
}

func TestFullScale(t *testing.T) {
	for bd, want := range map[int]float64{16: 32767, 24: 8388607, 32: 2147483647} {
		got, err := FullScale(bd)
		require.NoError(t, err)
		assert.Equal(t, want, got, "bit depth %d", bd)
	}

	_, err := FullScale(12)
	assert.ErrorIs(t, err, ErrUnsupportedBitDepth)
}

func TestToFloat32(t *testing.T) {
	got, err := ToFloat32(nil, []int{0, 32767, -32767, 16384}, 16)
	require.NoError(t, err)

	assert.Equal(t, float32(0), got[0])
	assert.Equal(t, float32(1), got[1])
	assert.Equal(t, float32(-1), got[2])
	assert.InDelta(t, 0.5, got[3], 1e-4)
}

func TestToIntClampsAndRounds(t *testing.T) {
	got, err := ToInt(nil, []float32{0, 1, -1, 1.5, -1.5, 0.5}, 16)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 32767, -32767, 32767, -32768, 16384}, got)
}

func TestRoundTrip24(t *testing.T) {
	src := []int{0, 1, -1, 8388607, -8388607, 123456, -654321}

	f, err := ToFloat32(nil, src, 24)
	require.NoError(t, err)

	back, err := ToInt(nil, f, 24)
	require.NoError(t, err)

	for i := range src {
		assert.InDelta(t, src[i], back[i], 1, "sample %d", i)
	}
}

func TestConversionReusesDst(t *testing.T) {
	dst := make([]int, 0, 8)

	out, err := ToInt(dst, []float32{0.25, -0.25}, 16)
	require.NoError(t, err)

	assert.Len(t, out, 2)
	assert.Equal(t, 8, cap(out))
}

func TestBufferConversions(t *testing.T) {
	format := &audio.Format{NumChannels: 2, SampleRate: 44100}
	ib := &audio.IntBuffer{Format: format, Data: []int{100, -100, 32767, -32767}, SourceBitDepth: 16}

	var fb audio.Float32Buffer
	require.NoError(t, IntToFloat(&fb, ib, 16))
	assert.Same(t, format, fb.Format)
	assert.Equal(t, 2, fb.NumFrames())

	var out audio.IntBuffer
	require.NoError(t, FloatToInt(&out, &fb, 16))
	assert.Equal(t, ib.Data, out.Data)
	assert.Equal(t, 16, out.SourceBitDepth)

	assert.ErrorIs(t, IntToFloat(&fb, ib, 7), ErrUnsupportedBitDepth)
	assert.ErrorIs(t, FloatToInt(&out, &fb, 64), ErrUnsupportedBitDepth)
}
