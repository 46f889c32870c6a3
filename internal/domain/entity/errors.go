package entity

import "errors"

var (
	// ErrSourceUnreadable marks a source video that cannot be opened or
	// decoded. Fatal for the job, never retried.
	ErrSourceUnreadable = errors.New("source video cannot be read")

	// ErrInvalidInputFormat rejects a submission before any job exists.
	ErrInvalidInputFormat = errors.New("unsupported input video format")

	// ErrInvalidConfidence rejects a confidence threshold outside (0, 1].
	ErrInvalidConfidence = errors.New("confidence threshold out of range")

	// ErrPoseDetection marks a pose capability failure on a frame; it
	// aborts the whole job.
	ErrPoseDetection = errors.New("pose detection failed")

	// ErrSinkWrite marks an output stream that stopped accepting frames.
	ErrSinkWrite = errors.New("output sink write failed")

	// ErrJobNotFound is returned on lookup or delete of an unknown job id.
	ErrJobNotFound = errors.New("job not found")

	// ErrResultNotReady is returned when results are requested for a job
	// that has not reached a terminal state.
	ErrResultNotReady = errors.New("analysis result not ready")

	// ErrQueueFull rejects submissions past the processing queue capacity.
	ErrQueueFull = errors.New("processing queue is full")
)
