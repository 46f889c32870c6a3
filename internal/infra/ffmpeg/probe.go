package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

func (s *Source) Probe(ctx context.Context, path string) (*entity.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (*entity.VideoMetadata, error) {
	meta := &entity.VideoMetadata{}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "width":
			meta.Width, _ = strconv.Atoi(value)
		case "height":
			meta.Height, _ = strconv.Atoi(value)
		case "r_frame_rate":
			fps, err := parseFrameRate(value)
			if err != nil {
				return nil, err
			}
			meta.FPS = fps
		case "nb_frames":
			// "N/A" on containers that do not declare a frame count.
			if n, err := strconv.Atoi(value); err == nil {
				meta.TotalFrames = n
			}
		}
	}
	if meta.Width <= 0 || meta.Height <= 0 || meta.FPS <= 0 {
		return nil, fmt.Errorf("incomplete stream metadata: %q", strings.TrimSpace(string(output)))
	}
	return meta, nil
}

// parseFrameRate handles ffprobe's rational form, e.g. "30/1" or "30000/1001".
func parseFrameRate(value string) (float64, error) {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		fps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", value, err)
		}
		return fps, nil
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", value, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("parse frame rate %q: invalid denominator", value)
	}
	return n / d, nil
}
