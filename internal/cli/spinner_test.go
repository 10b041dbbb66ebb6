package cli

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func stoppedWithin(t *testing.T, s *Spinner, d time.Duration) {
	t.Helper()
	select {
	case <-s.stopped:
	case <-time.After(d):
		t.Fatal("spinner goroutine still running")
	}
}

func TestSpinnerBasic(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	stoppedWithin(t, s, time.Second)
	if buf.Len() != 0 {
		t.Errorf("spinner drew to a non-terminal writer: %q", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, &bytes.Buffer{}, "Testing with context...")
	s.Start()
	cancel()

	// the animation ends on its own once the parent is cancelled
	stoppedWithin(t, s, time.Second)
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, &bytes.Buffer{}, "Testing with timeout...")
	s.Start()

	stoppedWithin(t, s, time.Second)
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}
