package port

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// Workspace owns the on-disk layout of job artifacts: saved uploads, the two
// rendered outputs, and the results JSON.
type Workspace interface {
	SaveUpload(jobID uuid.UUID, ext string, r io.Reader) (string, error)
	OutputPaths(jobID uuid.UUID) (overlay, skeleton string)
	WriteResults(jobID uuid.UUID, result *entity.AnalysisResult) (string, error)
	RemoveJob(job *entity.Job) error
}

// ArtifactArchiver copies a completed job's artifacts to long-term storage.
type ArtifactArchiver interface {
	ArchiveJob(ctx context.Context, job *entity.Job) error
}
