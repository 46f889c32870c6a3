package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	submit func(req usecase.SubmitRequest) (*entity.Job, error)
	status func(id uuid.UUID) (*entity.Job, error)
	result func(id uuid.UUID) (*entity.AnalysisResult, error)
	list   func() []entity.JobSummary
	delete func(id uuid.UUID) error
	active int
}

func (s *stubService) Submit(_ context.Context, req usecase.SubmitRequest) (*entity.Job, error) {
	return s.submit(req)
}
func (s *stubService) Status(id uuid.UUID) (*entity.Job, error) { return s.status(id) }
func (s *stubService) Result(id uuid.UUID) (*entity.AnalysisResult, error) {
	return s.result(id)
}
func (s *stubService) List() []entity.JobSummary {
	if s.list == nil {
		return nil
	}
	return s.list()
}
func (s *stubService) Delete(id uuid.UUID) error { return s.delete(id) }
func (s *stubService) ActiveCount() int          { return s.active }

func newTestRouter(service *stubService) http.Handler {
	return NewRouter(NewAnalysisHandler(service, zap.NewNop()), zap.NewNop())
}

func multipartVideo(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake video payload"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func doRequest(router http.Handler, method, target, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_AcceptsUpload(t *testing.T) {
	job := entity.NewJob("dance.mp4", 0.5, 0.5)
	var captured usecase.SubmitRequest
	router := newTestRouter(&stubService{
		submit: func(req usecase.SubmitRequest) (*entity.Job, error) {
			captured = req
			return job, nil
		},
	})

	body, contentType := multipartVideo(t, "video", "dance.mp4")
	rec := doRequest(router, http.MethodPost,
		"/api/v1/analyze?min_detection_confidence=0.8&min_tracking_confidence=0.3",
		contentType, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dance.mp4", captured.Filename)
	assert.Equal(t, 0.8, captured.DetectionConfidence)
	assert.Equal(t, 0.3, captured.TrackingConfidence)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.ID.String(), resp["job_id"])
	assert.Equal(t, "queued", resp["status"])
	assert.Equal(t, "/api/v1/status/"+job.ID.String(), resp["result_url"])
}

func TestAnalyze_MissingFile(t *testing.T) {
	router := newTestRouter(&stubService{})
	rec := doRequest(router, http.MethodPost, "/api/v1/analyze", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_InvalidFormat(t *testing.T) {
	router := newTestRouter(&stubService{
		submit: func(usecase.SubmitRequest) (*entity.Job, error) {
			return nil, entity.ErrInvalidInputFormat
		},
	})

	body, contentType := multipartVideo(t, "video", "notes.txt")
	rec := doRequest(router, http.MethodPost, "/api/v1/analyze", contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_UnparseableConfidence(t *testing.T) {
	submitted := false
	router := newTestRouter(&stubService{
		submit: func(usecase.SubmitRequest) (*entity.Job, error) {
			submitted = true
			return nil, nil
		},
	})

	body, contentType := multipartVideo(t, "video", "dance.mp4")
	rec := doRequest(router, http.MethodPost,
		"/api/v1/analyze?min_detection_confidence=abc", contentType, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, submitted)
}

func TestAnalyze_OutOfRangeConfidence(t *testing.T) {
	router := newTestRouter(&stubService{
		submit: func(usecase.SubmitRequest) (*entity.Job, error) {
			return nil, entity.ErrInvalidConfidence
		},
	})

	body, contentType := multipartVideo(t, "video", "dance.mp4")
	rec := doRequest(router, http.MethodPost,
		"/api/v1/analyze?min_detection_confidence=1.5", contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_QueueFull(t *testing.T) {
	router := newTestRouter(&stubService{
		submit: func(usecase.SubmitRequest) (*entity.Job, error) {
			return nil, entity.ErrQueueFull
		},
	})

	body, contentType := multipartVideo(t, "video", "dance.mp4")
	rec := doRequest(router, http.MethodPost, "/api/v1/analyze", contentType, body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatus_UnknownJob(t *testing.T) {
	router := newTestRouter(&stubService{
		status: func(uuid.UUID) (*entity.Job, error) { return nil, entity.ErrJobNotFound },
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/status/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_MalformedID(t *testing.T) {
	router := newTestRouter(&stubService{})
	rec := doRequest(router, http.MethodGet, "/api/v1/status/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_CompletedIncludesDownloadURLs(t *testing.T) {
	job := entity.NewJob("dance.mp4", 0.5, 0.5)
	job.MarkProcessing()
	job.MarkCompleted(&entity.AnalysisResult{TotalFrames: 10, DetectionRate: 50})
	router := newTestRouter(&stubService{
		status: func(uuid.UUID) (*entity.Job, error) { return job, nil },
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/status/"+job.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp jobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, entity.JobStatusCompleted, resp.Status)
	assert.NotNil(t, resp.CompletedAt)
	assert.Equal(t, "/api/v1/download/"+job.ID.String(), resp.OutputURL)
	assert.Equal(t, "/api/v1/download/"+job.ID.String()+"/skeleton", resp.SkeletonURL)
}

func TestResults_NotReady(t *testing.T) {
	router := newTestRouter(&stubService{
		result: func(uuid.UUID) (*entity.AnalysisResult, error) {
			return nil, entity.ErrResultNotReady
		},
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/results/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResults_Completed(t *testing.T) {
	router := newTestRouter(&stubService{
		result: func(uuid.UUID) (*entity.AnalysisResult, error) {
			return &entity.AnalysisResult{TotalFrames: 10, DetectedFrames: 5, DetectionRate: 50}, nil
		},
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/results/"+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result entity.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 10, result.TotalFrames)
	assert.Equal(t, 50.0, result.DetectionRate)
}

func TestDownload_NotCompleted(t *testing.T) {
	job := entity.NewJob("dance.mp4", 0.5, 0.5)
	router := newTestRouter(&stubService{
		status: func(uuid.UUID) (*entity.Job, error) { return job, nil },
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/download/"+job.ID.String(), "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobs(t *testing.T) {
	router := newTestRouter(&stubService{
		list: func() []entity.JobSummary {
			return []entity.JobSummary{
				{JobID: uuid.New(), Status: entity.JobStatusQueued, InputName: "a.mp4"},
				{JobID: uuid.New(), Status: entity.JobStatusCompleted, InputName: "b.mp4"},
			}
		},
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/jobs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalJobs int                 `json:"total_jobs"`
		Jobs      []entity.JobSummary `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalJobs)
	assert.Len(t, resp.Jobs, 2)
}

func TestDeleteJob(t *testing.T) {
	deleted := false
	router := newTestRouter(&stubService{
		delete: func(uuid.UUID) error {
			deleted = true
			return nil
		},
	})

	rec := doRequest(router, http.MethodDelete, "/api/v1/jobs/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deleted)
}

func TestDeleteJob_Unknown(t *testing.T) {
	router := newTestRouter(&stubService{
		delete: func(uuid.UUID) error { return entity.ErrJobNotFound },
	})

	rec := doRequest(router, http.MethodDelete, "/api/v1/jobs/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubService{active: 3})

	rec := doRequest(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, float64(3), resp["active_jobs"])
}
