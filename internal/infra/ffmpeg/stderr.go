package ffmpeg

import (
	"bytes"
	"sync"
)

// stderrBuffer collects subprocess stderr. os/exec copies stderr from a
// goroutine that lives until Wait returns, so reads can overlap writes; the
// lock keeps the diagnostics readable from the frame loop at any time.
type stderrBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *stderrBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *stderrBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
