package port

import (
	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// JobMutation is applied to a job record under the registry lock.
type JobMutation func(*entity.Job)

// JobRegistry is the in-process mapping from job id to Job. All operations
// are atomic with respect to each other; Get and List return snapshots.
type JobRegistry interface {
	Create(job *entity.Job)
	Get(id uuid.UUID) (*entity.Job, error)
	List() []entity.JobSummary
	// Update applies a mutation; it is a silent no-op when the job was
	// already deleted (deletion is caller-driven, the race is benign).
	Update(id uuid.UUID, mutate JobMutation)
	Delete(id uuid.UUID) error
	CountByStatus(status entity.JobStatus) int
}
