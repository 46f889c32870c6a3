package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobStatusMessage is the event published on every job status transition.
type JobStatusMessage struct {
	JobID          uuid.UUID  `json:"job_id"`
	Status         JobStatus  `json:"status"`
	InputName      string     `json:"input_filename"`
	TotalFrames    int        `json:"total_frames,omitempty"`
	DetectedFrames int        `json:"detected_frames,omitempty"`
	DetectionRate  float64    `json:"detection_rate,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// StatusMessageFor builds the event for a job snapshot.
func StatusMessageFor(job *Job) JobStatusMessage {
	msg := JobStatusMessage{
		JobID:        job.ID,
		Status:       job.Status,
		InputName:    job.InputName,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
	if job.Result != nil {
		msg.TotalFrames = job.Result.TotalFrames
		msg.DetectedFrames = job.Result.DetectedFrames
		msg.DetectionRate = job.Result.DetectionRate
	}
	return msg
}
