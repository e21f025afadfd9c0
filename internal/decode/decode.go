// Package decode opens audio files as beep streamers, picking the decoder
// from the file extension.
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupported is returned for unknown file extensions.
var ErrUnsupported = errors.New("decode: unsupported format")

// Extensions lists the supported file extensions.
var Extensions = []string{".flac", ".mp3", ".ogg", ".wav"}

// Stream is a decoded file. Close releases the decoder and the file.
type Stream struct {
	beep.StreamSeekCloser
	file *os.File
}

// Close closes the decoder and the underlying file.
func (s *Stream) Close() error {
	err := s.StreamSeekCloser.Close()
	if cerr := s.file.Close(); err == nil && !errors.Is(cerr, os.ErrClosed) {
		err = cerr
	}

	return err
}

// Open decodes the file at path.
func Open(path string) (*Stream, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode: %w", err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		s, format, err = flac.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return &Stream{StreamSeekCloser: s, file: f}, format, nil
}

// Resampled returns s converted to the target rate. It returns s itself
// when the rates already match.
func Resampled(s beep.Streamer, from, to beep.SampleRate, quality int) beep.Streamer {
	if from == to {
		return s
	}

	return beep.Resample(quality, from, to, s)
}
