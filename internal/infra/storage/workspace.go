package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"go.uber.org/zap"
)

// Workspace owns the on-disk artifact layout: uploads/, outputs/ and
// results/ under one data directory. Artifacts stay addressable by job id
// until the job is deleted or the retention window prunes them.
type Workspace struct {
	uploadDir  string
	outputDir  string
	resultsDir string
	logger     *zap.Logger
}

func NewWorkspace(baseDir string, logger *zap.Logger) (*Workspace, error) {
	w := &Workspace{
		uploadDir:  filepath.Join(baseDir, "uploads"),
		outputDir:  filepath.Join(baseDir, "outputs"),
		resultsDir: filepath.Join(baseDir, "results"),
		logger:     logger,
	}
	for _, dir := range []string{w.uploadDir, w.outputDir, w.resultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace dir %s: %w", dir, err)
		}
	}
	return w, nil
}

func (w *Workspace) SaveUpload(jobID uuid.UUID, ext string, r io.Reader) (string, error) {
	path := filepath.Join(w.uploadDir, fmt.Sprintf("%s_input%s", jobID, ext))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

func (w *Workspace) OutputPaths(jobID uuid.UUID) (string, string) {
	overlay := filepath.Join(w.outputDir, fmt.Sprintf("%s_output.mp4", jobID))
	skeleton := filepath.Join(w.outputDir, fmt.Sprintf("%s_output_skeleton_only.mp4", jobID))
	return overlay, skeleton
}

func (w *Workspace) WriteResults(jobID uuid.UUID, result *entity.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	path := filepath.Join(w.resultsDir, fmt.Sprintf("%s_results.json", jobID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write results file: %w", err)
	}
	return path, nil
}

// RemoveJob deletes whatever artifacts the job produced. Individual failures
// are logged and skipped so a half-written job can still be cleaned up.
func (w *Workspace) RemoveJob(job *entity.Job) error {
	for _, path := range []string{job.InputPath, job.OverlayPath, job.SkeletonPath, job.ResultsPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.logger.Error("failed to delete artifact", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// Prune removes artifacts older than maxAge across all workspace dirs.
func (w *Workspace) Prune(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	for _, dir := range []string{w.uploadDir, w.outputDir, w.resultsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Error("cleanup scan failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || info.IsDir() {
				continue
			}
			if info.ModTime().Before(cutoff) {
				path := filepath.Join(dir, entry.Name())
				if err := os.Remove(path); err != nil {
					w.logger.Error("cleanup delete failed", zap.String("path", path), zap.Error(err))
					continue
				}
				w.logger.Info("cleaned up old artifact", zap.String("path", path))
			}
		}
	}
}
