package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w, err := NewWorkspace(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return w
}

func TestSaveUpload(t *testing.T) {
	w := newTestWorkspace(t)
	id := uuid.New()

	path, err := w.SaveUpload(id, ".mp4", strings.NewReader("fake video bytes"))
	require.NoError(t, err)
	assert.Contains(t, path, id.String())
	assert.True(t, strings.HasSuffix(path, ".mp4"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(data))
}

func TestWriteResults(t *testing.T) {
	w := newTestWorkspace(t)
	id := uuid.New()

	path, err := w.WriteResults(id, &entity.AnalysisResult{TotalFrames: 10, DetectionRate: 50})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_frames": 10`)
}

func TestRemoveJob_DeletesAllArtifacts(t *testing.T) {
	w := newTestWorkspace(t)
	id := uuid.New()

	input, err := w.SaveUpload(id, ".mp4", strings.NewReader("x"))
	require.NoError(t, err)
	results, err := w.WriteResults(id, &entity.AnalysisResult{})
	require.NoError(t, err)
	overlay, skeleton := w.OutputPaths(id)
	require.NoError(t, os.WriteFile(overlay, []byte("o"), 0o644))
	require.NoError(t, os.WriteFile(skeleton, []byte("s"), 0o644))

	err = w.RemoveJob(&entity.Job{
		ID:           id,
		InputPath:    input,
		OverlayPath:  overlay,
		SkeletonPath: skeleton,
		ResultsPath:  results,
	})
	require.NoError(t, err)

	for _, path := range []string{input, overlay, skeleton, results} {
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "expected %s to be gone", path)
	}
}

func TestRemoveJob_ToleratesMissingFiles(t *testing.T) {
	w := newTestWorkspace(t)
	overlay, skeleton := w.OutputPaths(uuid.New())

	err := w.RemoveJob(&entity.Job{OverlayPath: overlay, SkeletonPath: skeleton})
	assert.NoError(t, err)
}

func TestPrune_RemovesOnlyAgedFiles(t *testing.T) {
	w := newTestWorkspace(t)
	id := uuid.New()

	oldPath, err := w.SaveUpload(id, ".mp4", strings.NewReader("old"))
	require.NoError(t, err)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	freshPath, err := w.SaveUpload(uuid.New(), ".mp4", strings.NewReader("fresh"))
	require.NoError(t, err)

	w.Prune(24 * time.Hour)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshPath)
	assert.NoError(t, err)
}

func TestOutputPaths_AreStablePerJob(t *testing.T) {
	w := newTestWorkspace(t)
	id := uuid.New()

	overlay1, skeleton1 := w.OutputPaths(id)
	overlay2, skeleton2 := w.OutputPaths(id)

	assert.Equal(t, overlay1, overlay2)
	assert.Equal(t, skeleton1, skeleton2)
	assert.NotEqual(t, overlay1, skeleton1)
	assert.Equal(t, ".mp4", filepath.Ext(overlay1))
}
