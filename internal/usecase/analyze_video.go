package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	"github.com/motionlab/dance-analysis-service/internal/domain/port"
	"github.com/motionlab/dance-analysis-service/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnalyzeInput names the source video and the two output streams of one run.
type AnalyzeInput struct {
	SourcePath   string
	OverlayPath  string
	SkeletonPath string
}

// VideoAnalyzer is the frame pipeline: it decodes the source strictly in
// order, runs pose detection per frame, and writes the overlay and
// skeleton-only streams frame-for-frame at exact source parity.
type VideoAnalyzer struct {
	source    port.VideoSource
	sinks     port.SinkOpener
	renderer  port.SkeletonRenderer
	frameSkip int
	logger    *zap.Logger
}

// NewVideoAnalyzer builds a pipeline. frameSkip > 1 samples detection every
// Nth frame; output frames are still written for every source frame.
func NewVideoAnalyzer(
	source port.VideoSource,
	sinks port.SinkOpener,
	renderer port.SkeletonRenderer,
	frameSkip int,
	logger *zap.Logger,
) *VideoAnalyzer {
	if frameSkip < 1 {
		frameSkip = 1
	}
	return &VideoAnalyzer{
		source:    source,
		sinks:     sinks,
		renderer:  renderer,
		frameSkip: frameSkip,
		logger:    logger,
	}
}

func (a *VideoAnalyzer) Run(ctx context.Context, session port.PoseSession, in AnalyzeInput) (*entity.AnalysisResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "VideoAnalyzer.Run")
	defer span.End()

	reader, meta, err := a.source.Open(ctx, in.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrSourceUnreadable, err)
	}
	defer reader.Close()

	span.SetAttributes(
		attribute.Int("video.width", meta.Width),
		attribute.Int("video.height", meta.Height),
		attribute.Float64("video.fps", meta.FPS),
	)

	log := a.logger.With(zap.String("source", in.SourcePath))
	log.Info("pipeline started",
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.Float64("fps", meta.FPS),
		zap.Int("declared_frames", meta.TotalFrames),
	)

	// Both sinks are opened with the source's exact parameters so the
	// outputs keep frame-for-frame parity with the source.
	overlay, err := a.sinks.OpenSink(ctx, in.OverlayPath, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: open overlay sink: %s", entity.ErrSinkWrite, err)
	}
	defer overlay.Close()

	skeleton, err := a.sinks.OpenSink(ctx, in.SkeletonPath, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: open skeleton sink: %s", entity.ErrSinkWrite, err)
	}
	defer skeleton.Close()

	var (
		records        []entity.KeypointRecord
		frameIndex     int
		detectedFrames int
	)
	canvas := entity.NewFrame(meta.Width, meta.Height)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %s", entity.ErrSourceUnreadable, frameIndex, err)
		}

		var landmarks entity.PoseLandmarks
		if frameIndex%a.frameSkip == 0 {
			landmarks, err = session.Detect(ctx, frame)
			if err != nil {
				return nil, fmt.Errorf("%w: frame %d: %s", entity.ErrPoseDetection, frameIndex, err)
			}
		}

		canvas.Reset()
		if landmarks != nil {
			detectedFrames++
			metrics.FramesDetectedTotal.Inc()
			a.renderer.Draw(frame, landmarks)
			a.renderer.Draw(canvas, landmarks)
			records = append(records, entity.KeypointRecord{
				FrameIndex: frameIndex,
				Landmarks:  landmarks,
			})
		}

		// Undetected frames still produce one frame on each sink: the
		// original frame on the overlay, a blank canvas on the skeleton.
		if err := overlay.WriteFrame(frame); err != nil {
			return nil, fmt.Errorf("%w: overlay frame %d: %s", entity.ErrSinkWrite, frameIndex, err)
		}
		if err := skeleton.WriteFrame(canvas); err != nil {
			return nil, fmt.Errorf("%w: skeleton frame %d: %s", entity.ErrSinkWrite, frameIndex, err)
		}

		frameIndex++
		metrics.FramesProcessedTotal.Inc()
		if frameIndex%30 == 0 {
			log.Debug("pipeline progress",
				zap.Int("processed", frameIndex),
				zap.Int("declared_frames", meta.TotalFrames),
			)
		}
	}

	// Close explicitly so encoder flush errors surface as run failures.
	if err := overlay.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize overlay: %s", entity.ErrSinkWrite, err)
	}
	if err := skeleton.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize skeleton: %s", entity.ErrSinkWrite, err)
	}

	detectionRate := 0.0
	if frameIndex > 0 {
		detectionRate = float64(detectedFrames) / float64(frameIndex) * 100
	}

	log.Info("pipeline complete",
		zap.Int("total_frames", frameIndex),
		zap.Int("detected_frames", detectedFrames),
		zap.Float64("detection_rate", detectionRate),
	)

	return &entity.AnalysisResult{
		InputFile:      in.SourcePath,
		OverlayFile:    in.OverlayPath,
		SkeletonFile:   in.SkeletonPath,
		TotalFrames:    frameIndex,
		DetectedFrames: detectedFrames,
		DetectionRate:  detectionRate,
		FPS:            meta.FPS,
		Width:          meta.Width,
		Height:         meta.Height,
		Keypoints:      records,
	}, nil
}
