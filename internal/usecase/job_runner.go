package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
	"github.com/motionlab/dance-analysis-service/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SubmitRequest is one analysis submission. A zero confidence threshold
// means unset and takes the 0.5 default; any other value outside (0, 1]
// rejects the submission.
type SubmitRequest struct {
	Filename            string
	Payload             io.Reader
	DetectionConfidence float64
	TrackingConfidence  float64
}

type RunnerConfig struct {
	AllowedFormats []string
	WorkerCount    int
	QueueSize      int
	// JobTimeout caps the wall clock of a single run; 0 disables the cap.
	JobTimeout time.Duration
}

// JobRunner bridges submissions to asynchronous execution: it validates the
// input, registers the job, and drives the pipeline on a bounded worker
// pool. Every scheduled job reaches exactly one terminal registry update.
type JobRunner struct {
	registry  port.JobRegistry
	analyzer  *VideoAnalyzer
	engine    port.PoseEngine
	workspace port.Workspace
	publisher port.StatusPublisher  // optional
	archiver  port.ArtifactArchiver // optional
	logger    *zap.Logger
	cfg       RunnerConfig
	queue     chan uuid.UUID
	wg        sync.WaitGroup
}

func NewJobRunner(
	registry port.JobRegistry,
	analyzer *VideoAnalyzer,
	engine port.PoseEngine,
	workspace port.Workspace,
	publisher port.StatusPublisher,
	archiver port.ArtifactArchiver,
	logger *zap.Logger,
	cfg RunnerConfig,
) *JobRunner {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &JobRunner{
		registry:  registry,
		analyzer:  analyzer,
		engine:    engine,
		workspace: workspace,
		publisher: publisher,
		archiver:  archiver,
		logger:    logger,
		cfg:       cfg,
		queue:     make(chan uuid.UUID, cfg.QueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled; Wait blocks until they have finished.
func (r *JobRunner) Start(ctx context.Context) {
	r.logger.Info("starting worker pool",
		zap.Int("workers", r.cfg.WorkerCount),
		zap.Int("queue_size", r.cfg.QueueSize),
	)
	for i := 0; i < r.cfg.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i)
	}
}

func (r *JobRunner) Wait() {
	r.wg.Wait()
}

func (r *JobRunner) worker(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With(zap.Int("worker_id", id))
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		case jobID := <-r.queue:
			metrics.QueueDepth.Set(float64(len(r.queue)))
			r.process(ctx, jobID)
		}
	}
}

// Submit validates the input, stores the upload, and registers a queued
// job. It returns before any processing begins. A full queue rejects the
// submission and leaves no job behind.
func (r *JobRunner) Submit(ctx context.Context, req SubmitRequest) (*entity.Job, error) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !slices.Contains(r.cfg.AllowedFormats, ext) {
		return nil, fmt.Errorf("%w: %q (allowed: %s)",
			entity.ErrInvalidInputFormat, ext, strings.Join(r.cfg.AllowedFormats, ", "))
	}

	detection, err := normalizeConfidence(req.DetectionConfidence)
	if err != nil {
		return nil, fmt.Errorf("min_detection_confidence: %w", err)
	}
	tracking, err := normalizeConfidence(req.TrackingConfidence)
	if err != nil {
		return nil, fmt.Errorf("min_tracking_confidence: %w", err)
	}

	job := entity.NewJob(req.Filename, detection, tracking)

	inputPath, err := r.workspace.SaveUpload(job.ID, ext, req.Payload)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	job.InputPath = inputPath
	job.OverlayPath, job.SkeletonPath = r.workspace.OutputPaths(job.ID)

	r.registry.Create(job)

	select {
	case r.queue <- job.ID:
	default:
		_ = r.registry.Delete(job.ID)
		_ = r.workspace.RemoveJob(job)
		return nil, entity.ErrQueueFull
	}

	metrics.QueueDepth.Set(float64(len(r.queue)))
	r.publishStatus(ctx, job)

	r.logger.Info("job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("input", req.Filename),
	)
	return job, nil
}

func (r *JobRunner) process(ctx context.Context, jobID uuid.UUID) {
	job, err := r.registry.Get(jobID)
	if err != nil {
		// Deleted while queued; nothing to do.
		return
	}
	log := r.logger.With(zap.String("job_id", jobID.String()))

	r.registry.Update(jobID, func(j *entity.Job) { j.MarkProcessing() })
	r.publishCurrent(ctx, jobID)

	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()
	started := time.Now()

	runCtx := ctx
	if r.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.JobTimeout)
		defer cancel()
	}

	result, err := r.runPipeline(runCtx, job, log)
	if err != nil {
		msg := err.Error()
		if runCtx.Err() == context.DeadlineExceeded {
			msg = fmt.Sprintf("job exceeded the %s processing time limit", r.cfg.JobTimeout)
		}
		r.registry.Update(jobID, func(j *entity.Job) { j.MarkFailed(msg) })
		metrics.JobsProcessedTotal.WithLabelValues("failed").Inc()
		log.Error("job failed", zap.Error(err))
	} else {
		r.registry.Update(jobID, func(j *entity.Job) { j.MarkCompleted(result) })
		metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
		log.Info("job completed",
			zap.Int("total_frames", result.TotalFrames),
			zap.Int("detected_frames", result.DetectedFrames),
			zap.Float64("detection_rate", result.DetectionRate),
		)
	}

	metrics.JobDuration.WithLabelValues("total").Observe(time.Since(started).Seconds())
	r.publishCurrent(ctx, jobID)

	if err == nil && r.archiver != nil {
		if final, getErr := r.registry.Get(jobID); getErr == nil {
			if archiveErr := r.archiver.ArchiveJob(ctx, final); archiveErr != nil {
				log.Error("artifact archiving failed", zap.Error(archiveErr))
			}
		}
	}
}

func (r *JobRunner) runPipeline(ctx context.Context, job *entity.Job, log *zap.Logger) (*entity.AnalysisResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "JobRunner.runPipeline")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", job.ID.String()))

	session, err := r.engine.NewSession(ctx, port.PoseConfig{
		MinDetectionConfidence: job.DetectionConfidence,
		MinTrackingConfidence:  job.TrackingConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("open pose session: %w", err)
	}
	defer session.Close()

	result, err := r.analyzer.Run(ctx, session, AnalyzeInput{
		SourcePath:   job.InputPath,
		OverlayPath:  job.OverlayPath,
		SkeletonPath: job.SkeletonPath,
	})
	if err != nil {
		return nil, err
	}

	result.Statistics = Summarize(result.Keypoints)

	resultsPath, err := r.workspace.WriteResults(job.ID, result)
	if err != nil {
		return nil, fmt.Errorf("persist results: %w", err)
	}
	result.ResultsFile = resultsPath

	return result, nil
}

// Status returns a snapshot of the job record.
func (r *JobRunner) Status(id uuid.UUID) (*entity.Job, error) {
	return r.registry.Get(id)
}

// Result returns the full analysis result, or ErrResultNotReady while the
// job has not completed.
func (r *JobRunner) Result(id uuid.UUID) (*entity.AnalysisResult, error) {
	job, err := r.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != entity.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job is %s", entity.ErrResultNotReady, job.Status)
	}
	return job.Result, nil
}

func (r *JobRunner) List() []entity.JobSummary {
	return r.registry.List()
}

// Delete removes the job record and its artifacts. An in-flight run is not
// cancelled; its terminal update lands on a deleted record and is ignored.
func (r *JobRunner) Delete(id uuid.UUID) error {
	job, err := r.registry.Get(id)
	if err != nil {
		return err
	}
	if err := r.registry.Delete(id); err != nil {
		return err
	}
	return r.workspace.RemoveJob(job)
}

func (r *JobRunner) ActiveCount() int {
	return r.registry.CountByStatus(entity.JobStatusProcessing)
}

func (r *JobRunner) publishCurrent(ctx context.Context, id uuid.UUID) {
	if r.publisher == nil {
		return
	}
	if job, err := r.registry.Get(id); err == nil {
		r.publishStatus(ctx, job)
	}
}

func (r *JobRunner) publishStatus(ctx context.Context, job *entity.Job) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishStatus(ctx, entity.StatusMessageFor(job)); err != nil {
		r.logger.Error("failed to publish job status",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

const defaultConfidence = 0.5

func normalizeConfidence(v float64) (float64, error) {
	if v == 0 {
		return defaultConfidence, nil
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %v", entity.ErrInvalidConfidence, v)
	}
	return v, nil
}
