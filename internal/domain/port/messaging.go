package port

import (
	"context"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// StatusPublisher emits job status transition events to interested
// consumers. Publishing is best-effort; failures never fail the job.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg entity.JobStatusMessage) error
}
