package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
	"go.uber.org/zap"
)

// Encoder writes mp4 output streams by feeding raw RGB24 frames into an
// ffmpeg subprocess. Each sink is bound at open time to the source's exact
// fps and resolution.
type Encoder struct {
	logger *zap.Logger
}

func NewEncoder(logger *zap.Logger) *Encoder {
	return &Encoder{logger: logger}
}

func (e *Encoder) OpenSink(ctx context.Context, path string, meta *entity.VideoMetadata) (port.FrameSink, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"-r", strconv.FormatFloat(meta.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y",
		path,
	)
	stderr := &stderrBuffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg encode: %w", err)
	}

	e.logger.Debug("encoder started", zap.String("path", path))

	return &frameSink{
		cmd:       cmd,
		in:        stdin,
		stderr:    stderr,
		frameSize: meta.Width * meta.Height * 3,
	}, nil
}

type frameSink struct {
	cmd       *exec.Cmd
	in        io.WriteCloser
	stderr    *stderrBuffer
	frameSize int
	closed    bool
}

func (s *frameSink) WriteFrame(frame *entity.Frame) error {
	if len(frame.Pix) != s.frameSize {
		return fmt.Errorf("frame size %d does not match sink size %d", len(frame.Pix), s.frameSize)
	}
	if _, err := s.in.Write(frame.Pix); err != nil {
		if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
			return fmt.Errorf("write frame: %w: %s", err, msg)
		}
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close flushes the encoder and waits for ffmpeg to finalize the container.
func (s *frameSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.in.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encode: %w: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}
