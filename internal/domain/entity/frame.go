package entity

// Frame is one decoded video frame as packed RGB24 bytes, row-major.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates an all-zero (black) frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// Reset blanks the frame without reallocating.
func (f *Frame) Reset() {
	clear(f.Pix)
}

// VideoMetadata describes a source stream. TotalFrames may be zero when the
// container does not declare it; the pipeline counts frames itself.
type VideoMetadata struct {
	Width       int
	Height      int
	FPS         float64
	TotalFrames int
}
