package port

import (
	"context"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// PoseConfig carries the per-job confidence thresholds, both in [0,1].
type PoseConfig struct {
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
}

// PoseSession is one open detection session. Detect returns (nil, nil) when
// the frame contains no pose. A session is safe to call repeatedly across
// many frames; closing it is the caller's responsibility.
type PoseSession interface {
	Detect(ctx context.Context, frame *entity.Frame) (entity.PoseLandmarks, error)
	Close() error
}

// PoseEngine opens detection sessions against the pose capability.
type PoseEngine interface {
	NewSession(ctx context.Context, cfg PoseConfig) (PoseSession, error)
}
