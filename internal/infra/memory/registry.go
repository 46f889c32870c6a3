package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
)

// Registry is the in-process job store. Job state lives only for the
// process lifetime; there is no durable backing store.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[uuid.UUID]*entity.Job
	order []uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[uuid.UUID]*entity.Job),
	}
}

func (r *Registry) Create(job *entity.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job.Clone()
	r.order = append(r.order, job.ID)
}

// Get returns a snapshot; callers never see a torn record.
func (r *Registry) Get(id uuid.UUID) (*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	return job.Clone(), nil
}

// List returns summaries in insertion order. Callers must treat the order
// as unspecified; it is only a stable snapshot at call time.
func (r *Registry) List() []entity.JobSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summaries := make([]entity.JobSummary, 0, len(r.order))
	for _, id := range r.order {
		if job, ok := r.jobs[id]; ok {
			summaries = append(summaries, job.Summary())
		}
	}
	return summaries
}

// Update applies the mutation under the lock. A missing job is a benign
// race with deletion and is silently ignored.
func (r *Registry) Update(id uuid.UUID, mutate port.JobMutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		mutate(job)
	}
}

func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return entity.ErrJobNotFound
	}
	delete(r.jobs, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) CountByStatus(status entity.JobStatus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, job := range r.jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}
