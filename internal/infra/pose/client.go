package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
	"go.uber.org/zap"
)

// Engine talks to an external pose-inference sidecar over HTTP. The sidecar
// holds the model; this client only carries frames across the boundary.
type Engine struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewEngine(baseURL string, logger *zap.Logger) *Engine {
	return &Engine{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (e *Engine) NewSession(_ context.Context, cfg port.PoseConfig) (port.PoseSession, error) {
	// Sessions are stateless on this side; the thresholds ride along on
	// every request so the sidecar can track across frames per job.
	return &session{engine: e, cfg: cfg}, nil
}

type session struct {
	engine *Engine
	cfg    port.PoseConfig
}

type landmarkResponse struct {
	Landmarks []struct {
		ID         int     `json:"id"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Z          float64 `json:"z"`
		Visibility float64 `json:"visibility"`
	} `json:"landmarks"`
}

func (s *session) Detect(ctx context.Context, frame *entity.Frame) (entity.PoseLandmarks, error) {
	body := &bytes.Buffer{}
	if err := jpeg.Encode(body, rgbaImage(frame), &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	q := url.Values{}
	q.Set("min_detection_confidence", strconv.FormatFloat(s.cfg.MinDetectionConfidence, 'f', -1, 64))
	q.Set("min_tracking_confidence", strconv.FormatFloat(s.cfg.MinTrackingConfidence, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.engine.baseURL+"/v1/detect?"+q.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := s.engine.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
		var decoded landmarkResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decode landmarks: %w", err)
		}
		// An empty set means no pose, same as 204; a detection is never
		// represented by zero landmarks.
		if len(decoded.Landmarks) == 0 {
			return nil, nil
		}
		landmarks := make(entity.PoseLandmarks, 0, len(decoded.Landmarks))
		for _, lm := range decoded.Landmarks {
			landmarks = append(landmarks, entity.Landmark{
				ID:         lm.ID,
				Name:       entity.LandmarkName(lm.ID),
				X:          lm.X,
				Y:          lm.Y,
				Z:          lm.Z,
				Visibility: lm.Visibility,
			})
		}
		return landmarks, nil
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("pose service returned %d: %s", resp.StatusCode, snippet)
	}
}

func (s *session) Close() error {
	return nil
}

func rgbaImage(frame *entity.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i := 0; i < frame.Width*frame.Height; i++ {
		img.Pix[i*4] = frame.Pix[i*3]
		img.Pix[i*4+1] = frame.Pix[i*3+1]
		img.Pix[i*4+2] = frame.Pix[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img
}
