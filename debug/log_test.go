package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("sched", "tick %d", 7)
	out := buf.String()
	if !strings.Contains(out, "tick 7") || !strings.Contains(out, "cat=sched") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestLogDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()

	Log("sched", "dropped")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("record written after Disable: %q", buf.String())
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "frame", "presented")
	}
	if got := strings.Count(buf.String(), "presented"); got != 2 {
		t.Fatalf("LogEvery(5) over 10 calls wrote %d records, want 2", got)
	}
}
