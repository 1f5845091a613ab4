package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"soundboard/internal/media/ffprobe"
	"soundboard/internal/optional"
)

// FFmpegLoader probes files with ffprobe and decodes them with ffmpeg.
type FFmpegLoader struct {
	FFmpeg     string
	FFprobe    string
	SampleRate int
}

// Load checks that path holds at least one audio stream and captures its
// duration when ffprobe can report one. Without an ffprobe binary the track is
// returned unprobed, with no duration.
func (l FFmpegLoader) Load(ctx context.Context, path string) (Track, error) {
	result, err := ffprobe.Inspect(ctx, l.FFprobe, path)
	if err != nil {
		if missingBinary(err) {
			return Track{Path: path}, nil
		}
		return Track{}, err
	}
	if result.AudioStreamCount() == 0 {
		return Track{}, fmt.Errorf("no audio stream found in %s", path)
	}
	track := Track{Path: path}
	if d, ok := result.Duration(); ok {
		track.Duration = optional.Some(d)
	}
	return track, nil
}

func missingBinary(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// Open starts an ffmpeg process decoding track from offset. The process is
// owned by the returned Source and stops when the Source is closed.
func (l FFmpegLoader) Open(track Track, offset time.Duration) (Source, error) {
	binary := strings.TrimSpace(l.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	rate := l.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64))
	}
	args = append(args,
		"-i", track.Path,
		"-vn",
		"-f", "f32le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(Channels),
		"pipe:1",
	)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return &ffmpegSource{cmd: cmd, cancel: cancel, reader: newF32Reader(stdout), stderr: &stderr}, nil
}

// Opener binds Open to a track for use by a Sink.
func (l FFmpegLoader) Opener(track Track) Opener {
	return func(offset time.Duration) (Source, error) {
		return l.Open(track, offset)
	}
}

type ffmpegSource struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	reader *f32Reader
	stderr *strings.Builder

	once    sync.Once
	waitErr error
}

func (s *ffmpegSource) Read(dst []float32) (int, error) {
	n, err := s.reader.Read(dst)
	if err != nil && n == 0 {
		if werr := s.wait(); werr != nil && s.stderr.Len() > 0 {
			return 0, fmt.Errorf("ffmpeg: %w: %s", werr, strings.TrimSpace(s.stderr.String()))
		}
	}
	return n, err
}

func (s *ffmpegSource) Close() error {
	s.cancel()
	_ = s.wait()
	return nil
}

func (s *ffmpegSource) wait() error {
	s.once.Do(func() { s.waitErr = s.cmd.Wait() })
	return s.waitErr
}
