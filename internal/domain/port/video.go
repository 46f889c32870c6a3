package port

import (
	"context"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
)

// FrameReader streams decoded frames in strict decode order. ReadFrame
// returns io.EOF once the source is exhausted.
type FrameReader interface {
	ReadFrame() (*entity.Frame, error)
	Close() error
}

// VideoSource opens a source video for sequential decoding.
type VideoSource interface {
	Probe(ctx context.Context, path string) (*entity.VideoMetadata, error)
	Open(ctx context.Context, path string) (FrameReader, *entity.VideoMetadata, error)
}

// FrameSink is an append-only frame writer bound at open time to a fixed
// fps/resolution; it must receive frames in submission order. Close
// finalizes the stream and must be idempotent.
type FrameSink interface {
	WriteFrame(frame *entity.Frame) error
	Close() error
}

// SinkOpener opens output streams at exact source parity.
type SinkOpener interface {
	OpenSink(ctx context.Context, path string, meta *entity.VideoMetadata) (FrameSink, error)
}
