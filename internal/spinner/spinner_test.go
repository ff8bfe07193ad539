package spinner

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "analysing")
	time.Sleep(3 * interval)
	s.Update("analysing 10/20")
	time.Sleep(3 * interval)
	s.Stop()

	got := out.String()
	assert.Contains(t, got, "analysing")
	assert.Contains(t, got, "10/20")
	assert.Contains(t, got, "\r")
}

func TestSpinner_StopTwice(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "x")
	s.Stop()
	s.Stop()
}
