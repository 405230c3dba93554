package nodeproc

import "sync"

// tailBuffer keeps the last cap bytes written to it. Safe for concurrent
// writes from the child's stdout and stderr.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	cap int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.cap {
		b.buf = b.buf[len(b.buf)-b.cap:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
