package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"

	"soundboard/internal/optional"
)

// Channels is the number of interleaved channels every source produces.
const Channels = 2

// ErrSeekUnsupported is returned when the current source cannot be repositioned.
var ErrSeekUnsupported = errors.New("seeking is not supported by the current source")

// Source yields interleaved float32 samples. Read returns io.EOF once the
// stream is exhausted.
type Source interface {
	Read(dst []float32) (int, error)
	Close() error
}

// Track describes a decodable file.
type Track struct {
	Path     string
	Duration optional.Optional[time.Duration]
}

// Seekable reports whether the track can be repositioned. Only tracks whose
// length is known are treated as seekable.
func (t Track) Seekable() bool {
	return t.Duration.IsSet()
}

// Opener starts decoding a track at the given offset.
type Opener func(offset time.Duration) (Source, error)

// f32Reader decodes little-endian float32 samples from a byte stream.
type f32Reader struct {
	r       *bufio.Reader
	scratch []byte
}

func newF32Reader(r io.Reader) *f32Reader {
	return &f32Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (f *f32Reader) Read(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	need := len(dst) * 4
	if cap(f.scratch) < need {
		f.scratch = make([]byte, need)
	}
	buf := f.scratch[:need]

	n, err := io.ReadAtLeast(f.r, buf, 4)
	if rem := n % 4; rem != 0 && err == nil {
		m, ferr := io.ReadFull(f.r, buf[n:n+4-rem])
		n += m
		err = ferr
	}
	samples := n / 4
	for i := 0; i < samples; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	if samples > 0 {
		return samples, nil
	}
	if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return 0, err
}
