package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one submitted analysis request. The registry owns the canonical
// record; everything else works on snapshots.
type Job struct {
	ID                  uuid.UUID
	Status              JobStatus
	InputName           string
	InputPath           string
	OverlayPath         string
	SkeletonPath        string
	ResultsPath         string
	DetectionConfidence float64
	TrackingConfidence  float64
	Result              *AnalysisResult
	ErrorMessage        string
	CreatedAt           time.Time
	CompletedAt         *time.Time
}

func NewJob(inputName string, detectionConfidence, trackingConfidence float64) *Job {
	return &Job{
		ID:                  uuid.New(),
		Status:              JobStatusQueued,
		InputName:           inputName,
		DetectionConfidence: detectionConfidence,
		TrackingConfidence:  trackingConfidence,
		CreatedAt:           time.Now().UTC(),
	}
}

// MarkProcessing is a no-op unless the job is still queued; status
// transitions are monotone and never leave a terminal state.
func (j *Job) MarkProcessing() {
	if j.Status != JobStatusQueued {
		return
	}
	j.Status = JobStatusProcessing
}

func (j *Job) MarkCompleted(result *AnalysisResult) {
	if j.Terminal() {
		return
	}
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.Result = result
	j.ResultsPath = result.ResultsFile
	j.CompletedAt = &now
}

func (j *Job) MarkFailed(errMsg string) {
	if j.Terminal() {
		return
	}
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
}

func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Clone returns an independent copy. The AnalysisResult pointer is shared:
// results are immutable once set.
func (j *Job) Clone() *Job {
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func (j *Job) Summary() JobSummary {
	return JobSummary{
		JobID:     j.ID,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		InputName: j.InputName,
	}
}

type JobSummary struct {
	JobID     uuid.UUID `json:"job_id"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	InputName string    `json:"input_filename"`
}
