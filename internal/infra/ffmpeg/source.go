package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
	"go.uber.org/zap"
)

// Source decodes video files by streaming raw RGB24 frames out of an ffmpeg
// subprocess.
type Source struct {
	logger *zap.Logger
}

func NewSource(logger *zap.Logger) *Source {
	return &Source{logger: logger}
}

func (s *Source) Open(ctx context.Context, path string) (port.FrameReader, *entity.VideoMetadata, error) {
	meta, err := s.Probe(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stderr := &stderrBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start ffmpeg decode: %w", err)
	}

	s.logger.Debug("decoder started",
		zap.String("path", path),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.Float64("fps", meta.FPS),
	)

	return &frameReader{
		cmd:    cmd,
		out:    stdout,
		stderr: stderr,
		width:  meta.Width,
		height: meta.Height,
	}, meta, nil
}

type frameReader struct {
	cmd      *exec.Cmd
	out      io.ReadCloser
	stderr   *stderrBuffer
	width    int
	height   int
	closed   bool
	waitOnce sync.Once
	waitErr  error
}

func (r *frameReader) ReadFrame() (*entity.Frame, error) {
	buf := make([]byte, r.width*r.height*3)
	_, err := io.ReadFull(r.out, buf)
	if errors.Is(err, io.EOF) {
		// Reap the process before reading stderr so the diagnostics are
		// complete and no copier goroutine is still writing.
		waitErr := r.wait()
		if msg := strings.TrimSpace(r.stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg decode: %s", msg)
		}
		if waitErr != nil {
			return nil, fmt.Errorf("ffmpeg decode: %w", waitErr)
		}
		return nil, io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		_ = r.wait()
		return nil, fmt.Errorf("truncated frame: %s", strings.TrimSpace(r.stderr.String()))
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return &entity.Frame{Width: r.width, Height: r.height, Pix: buf}, nil
}

// wait reaps the ffmpeg process exactly once; safe to call from both the
// read loop and Close.
func (r *frameReader) wait() error {
	r.waitOnce.Do(func() { r.waitErr = r.cmd.Wait() })
	return r.waitErr
}

func (r *frameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	// Closing stdout unblocks ffmpeg on early termination.
	r.out.Close()
	_ = r.wait()
	return nil
}
