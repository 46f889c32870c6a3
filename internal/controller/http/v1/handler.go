package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/usecase"
	"go.uber.org/zap"
)

// AnalysisService is the runner surface the transport layer depends on.
type AnalysisService interface {
	Submit(ctx context.Context, req usecase.SubmitRequest) (*entity.Job, error)
	Status(id uuid.UUID) (*entity.Job, error)
	Result(id uuid.UUID) (*entity.AnalysisResult, error)
	List() []entity.JobSummary
	Delete(id uuid.UUID) error
	ActiveCount() int
}

type AnalysisHandler struct {
	service AnalysisService
	logger  *zap.Logger
}

func NewAnalysisHandler(service AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: logger}
}

type jobStatusResponse struct {
	JobID       uuid.UUID              `json:"job_id"`
	Status      entity.JobStatus       `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Results     *entity.AnalysisResult `json:"results,omitempty"`
	OutputURL   string                 `json:"output_video_url,omitempty"`
	SkeletonURL string                 `json:"skeleton_video_url,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file required"})
		return
	}

	detection, err := parseConfidence(c, "min_detection_confidence")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tracking, err := parseConfidence(c, "min_tracking_confidence")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	job, err := h.service.Submit(c.Request.Context(), usecase.SubmitRequest{
		Filename:            file.Filename,
		Payload:             f,
		DetectionConfidence: detection,
		TrackingConfidence:  tracking,
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidInputFormat),
			errors.Is(err, entity.ErrInvalidConfidence):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrQueueFull):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			h.logger.Error("submission failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept video"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"message":    "Video uploaded successfully. Analysis started.",
		"result_url": fmt.Sprintf("/api/v1/status/%s", job.ID),
	})
}

func (h *AnalysisHandler) Status(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	job, err := h.service.Status(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	resp := jobStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
		Results:     job.Result,
		Error:       job.ErrorMessage,
	}
	if job.Status == entity.JobStatusCompleted {
		resp.OutputURL = fmt.Sprintf("/api/v1/download/%s", job.ID)
		resp.SkeletonURL = fmt.Sprintf("/api/v1/download/%s/skeleton", job.ID)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) Download(c *gin.Context) {
	h.downloadVideo(c, false)
}

func (h *AnalysisHandler) DownloadSkeleton(c *gin.Context) {
	h.downloadVideo(c, true)
}

func (h *AnalysisHandler) downloadVideo(c *gin.Context, skeletonOnly bool) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	job, err := h.service.Status(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if job.Status != entity.JobStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("analysis not completed, current status: %s", job.Status),
		})
		return
	}

	path := job.OverlayPath
	name := fmt.Sprintf("analyzed_%s.mp4", job.ID)
	if skeletonOnly {
		path = job.SkeletonPath
		name = fmt.Sprintf("skeleton_%s.mp4", job.ID)
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "output video not found"})
		return
	}
	c.FileAttachment(path, name)
}

func (h *AnalysisHandler) Results(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	result, err := h.service.Result(id)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		case errors.Is(err, entity.ErrResultNotReady):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) ListJobs(c *gin.Context) {
	jobs := h.service.List()
	c.JSON(http.StatusOK, gin.H{
		"total_jobs": len(jobs),
		"jobs":       jobs,
	})
}

func (h *AnalysisHandler) DeleteJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Job %s deleted successfully", id)})
}

func (h *AnalysisHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"active_jobs": h.service.ActiveCount(),
	})
}

func (h *AnalysisHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Dance Movement Analysis API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"upload":   "/api/v1/analyze",
			"status":   "/api/v1/status/{job_id}",
			"download": "/api/v1/download/{job_id}",
			"results":  "/api/v1/results/{job_id}",
			"jobs":     "/api/v1/jobs",
			"health":   "/health",
		},
	})
}

func parseJobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return uuid.Nil, false
	}
	return id, true
}

// parseConfidence reads a threshold from the query or form. Absent means
// unset (zero); the runner applies the default. Unparseable values are a
// client error, not a silent fallback.
func parseConfidence(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		raw = c.PostForm(key)
	}
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return v, nil
}
