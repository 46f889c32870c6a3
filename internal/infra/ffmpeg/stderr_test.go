package ffmpeg

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The exec package copies subprocess stderr from its own goroutine, so the
// buffer must tolerate String() being called mid-stream, as the decode EOF
// and encode error paths do.
func TestStderrBuffer_ConcurrentWriteAndRead(t *testing.T) {
	buf := &stderrBuffer{}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				fmt.Fprintf(buf, "writer %d line %d\n", w, i)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = buf.String()
		}
	}()
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 400)
}

func TestStderrBuffer_EmptyReadsAsEmptyString(t *testing.T) {
	buf := &stderrBuffer{}
	assert.Equal(t, "", buf.String())
}
