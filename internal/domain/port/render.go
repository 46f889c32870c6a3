package port

import "github.com/motionlab/dance-analysis-service/internal/domain/entity"

// SkeletonRenderer draws a landmark set onto a frame in place. The overlay
// and skeleton-only outputs are produced by two independent calls sharing
// the same detection result.
type SkeletonRenderer interface {
	Draw(frame *entity.Frame, landmarks entity.PoseLandmarks)
}
