package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Analyzing", 5, WithWriter(&buf))

	for i := 0; i < 5; i++ {
		tracker.Tick()
	}
	tracker.FinishSuccess()
}

func TestTrackerConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Analyzing", 1000, WithWriter(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Tick()
			}
		}()
	}
	wg.Wait()
	tracker.FinishSuccess()
}

func TestFinishSkippedWritesReason(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Analyzing", 10, WithWriter(&buf))
	tracker.Tick()
	tracker.FinishSkipped("cached")

	if !strings.Contains(buf.String(), "Analyzing skipped (cached)") {
		t.Errorf("missing skip message: %q", buf.String())
	}
}

func TestFinishErrorWritesError(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Analyzing", 10, WithWriter(&buf))
	tracker.FinishError(errors.New("scan failed"))

	if !strings.Contains(buf.String(), "Analyzing error: scan failed") {
		t.Errorf("missing error message: %q", buf.String())
	}
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewSpinner("Scanning", WithWriter(&buf))
	for i := 0; i < 3; i++ {
		tracker.Tick()
	}
	tracker.FinishSuccess()
}
