package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
)

// fakeSource scripts a fixed number of frames. Frame payloads carry their
// index (pixel 0 = index+1) so fakes downstream can identify them.
type fakeSource struct {
	meta      *entity.VideoMetadata
	openErr   error
	readErrAt int // frame index that fails to decode; -1 disables
}

func newFakeSource(frames int, fps float64, width, height int) *fakeSource {
	return &fakeSource{
		meta:      &entity.VideoMetadata{Width: width, Height: height, FPS: fps, TotalFrames: frames},
		readErrAt: -1,
	}
}

func (s *fakeSource) Probe(_ context.Context, _ string) (*entity.VideoMetadata, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.meta, nil
}

func (s *fakeSource) Open(_ context.Context, _ string) (port.FrameReader, *entity.VideoMetadata, error) {
	if s.openErr != nil {
		return nil, nil, s.openErr
	}
	return &fakeReader{meta: s.meta, errAt: s.readErrAt}, s.meta, nil
}

type fakeReader struct {
	meta  *entity.VideoMetadata
	next  int
	errAt int
}

func (r *fakeReader) ReadFrame() (*entity.Frame, error) {
	if r.errAt >= 0 && r.next == r.errAt {
		return nil, fmt.Errorf("corrupt packet at frame %d", r.next)
	}
	if r.next >= r.meta.TotalFrames {
		return nil, io.EOF
	}
	frame := entity.NewFrame(r.meta.Width, r.meta.Height)
	frame.Pix[0] = byte(r.next + 1)
	r.next++
	return frame, nil
}

func (r *fakeReader) Close() error { return nil }

// frameIndexOf recovers the index a fakeReader encoded into a frame.
func frameIndexOf(frame *entity.Frame) int {
	return int(frame.Pix[0]) - 1
}

type fakeSinkOpener struct {
	mu          sync.Mutex
	sinks       map[string]*fakeSink
	openErr     error
	failWriteAt map[string]int // path -> frame index that fails to encode
}

func newFakeSinkOpener() *fakeSinkOpener {
	return &fakeSinkOpener{
		sinks:       make(map[string]*fakeSink),
		failWriteAt: make(map[string]int),
	}
}

func (o *fakeSinkOpener) OpenSink(_ context.Context, path string, meta *entity.VideoMetadata) (port.FrameSink, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	sink := &fakeSink{meta: *meta, writeErrAt: -1}
	if at, ok := o.failWriteAt[path]; ok {
		sink.writeErrAt = at
	}
	o.sinks[path] = sink
	return sink, nil
}

func (o *fakeSinkOpener) sink(path string) *fakeSink {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sinks[path]
}

type fakeSink struct {
	meta       entity.VideoMetadata
	frames     [][]byte
	writeErrAt int
	closed     bool
}

func (s *fakeSink) WriteFrame(frame *entity.Frame) error {
	if s.writeErrAt >= 0 && len(s.frames) == s.writeErrAt {
		return fmt.Errorf("encoder rejected frame %d", len(s.frames))
	}
	// The pipeline reuses the skeleton canvas, so keep a copy.
	pix := make([]byte, len(frame.Pix))
	copy(pix, frame.Pix)
	s.frames = append(s.frames, pix)
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

// fullPose builds a complete landmark set at the given visibility.
func fullPose(visibility float64) entity.PoseLandmarks {
	landmarks := make(entity.PoseLandmarks, entity.LandmarkCount)
	for i := range landmarks {
		landmarks[i] = entity.Landmark{
			ID:         i,
			Name:       entity.LandmarkName(i),
			X:          0.25 + float64(i)*0.01,
			Y:          0.25 + float64(i)*0.005,
			Z:          -0.1,
			Visibility: visibility,
		}
	}
	return landmarks
}

// fakeSession delegates to a detect function keyed by the frame index the
// fakeReader encoded into the frame.
type fakeSession struct {
	mu     sync.Mutex
	detect func(frameIndex int, frame *entity.Frame) (entity.PoseLandmarks, error)
	calls  int
	closed bool
}

func (s *fakeSession) Detect(_ context.Context, frame *entity.Frame) (entity.PoseLandmarks, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.detect(frameIndexOf(frame), frame)
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeEngine struct {
	session *fakeSession
	err     error
}

func (e *fakeEngine) NewSession(_ context.Context, _ port.PoseConfig) (port.PoseSession, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.session, nil
}

// fakeWorkspace keeps everything in memory; paths are synthetic.
type fakeWorkspace struct {
	mu      sync.Mutex
	saved   map[uuid.UUID][]byte
	results map[uuid.UUID]*entity.AnalysisResult
	removed []uuid.UUID
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{
		saved:   make(map[uuid.UUID][]byte),
		results: make(map[uuid.UUID]*entity.AnalysisResult),
	}
}

func (w *fakeWorkspace) SaveUpload(jobID uuid.UUID, ext string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saved[jobID] = data
	return fmt.Sprintf("/uploads/%s_input%s", jobID, ext), nil
}

func (w *fakeWorkspace) OutputPaths(jobID uuid.UUID) (string, string) {
	return fmt.Sprintf("/outputs/%s_output.mp4", jobID),
		fmt.Sprintf("/outputs/%s_output_skeleton_only.mp4", jobID)
}

func (w *fakeWorkspace) WriteResults(jobID uuid.UUID, result *entity.AnalysisResult) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results[jobID] = result
	return fmt.Sprintf("/results/%s_results.json", jobID), nil
}

func (w *fakeWorkspace) RemoveJob(job *entity.Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removed = append(w.removed, job.ID)
	return nil
}

func (w *fakeWorkspace) removedIDs() []uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]uuid.UUID(nil), w.removed...)
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []entity.JobStatusMessage
}

func (p *fakePublisher) PublishStatus(_ context.Context, msg entity.JobStatusMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) statuses() []entity.JobStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.JobStatus, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Status)
	}
	return out
}
