package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

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

func TestLoggersEmitAndStop(t *testing.T) {
	out := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(out, nil))
	ctx, cancel := context.WithCancel(context.Background())
	StartGoroutineLogger(ctx, 5*time.Millisecond, logger)
	StartMemLogger(ctx, 5*time.Millisecond, logger)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := out.String()
		if strings.Contains(s, "goroutine-stacks") && strings.Contains(s, "msg=memstats") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	s := out.String()
	if !strings.Contains(s, "goroutine-stacks") || !strings.Contains(s, "msg=memstats") {
		t.Fatalf("expected both loggers to emit, got %q", s)
	}
	// nil logger is a no-op
	StartMemLogger(context.Background(), time.Millisecond, nil)
}

func TestResidentBytes(t *testing.T) {
	rss, err := residentBytes()
	if err != nil {
		t.Skipf("rss unavailable: %v", err)
	}
	if rss == 0 {
		t.Fatalf("expected non-zero rss")
	}
}
