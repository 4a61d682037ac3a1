package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for range 3 {
		stop := Track("test.op")
		time.Sleep(time.Millisecond)
		stop()
	}
	Track("test.fast")()

	ss := Snapshot()
	if len(ss) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(ss))
	}
	if ss[0].Name != "test.op" || ss[0].Calls != 3 {
		t.Errorf("expected test.op with 3 calls first, got %+v", ss[0])
	}
	if ss[0].Total < 3*time.Millisecond {
		t.Errorf("expected at least 3ms, got %v", ss[0].Total)
	}
}

func TestTopN(t *testing.T) {
	ResetFrame()
	Track("a")()
	Track("b")()

	out := TopN(5)
	if !strings.Contains(out, "a:") || !strings.Contains(out, "b:") {
		t.Errorf("unexpected TopN output %q", out)
	}
	if got := TopN(1); strings.Count(got, ",") != 0 {
		t.Errorf("TopN(1) should list one entry, got %q", got)
	}

	ResetFrame()
	if got := TopN(3); got != "" {
		t.Errorf("expected empty output after reset, got %q", got)
	}
}

func TestSumWithPrefix(t *testing.T) {
	ResetFrame()
	for _, name := range []string{"streaming.drain", "streaming.dispatch", "render.Draw"} {
		stop := Track(name)
		time.Sleep(time.Millisecond)
		stop()
	}
	if got := SumWithPrefix("streaming."); got < 2*time.Millisecond {
		t.Errorf("streaming total %v, want at least 2ms", got)
	}
	if got := SumWithPrefix("physics."); got != 0 {
		t.Errorf("unknown prefix total %v, want 0", got)
	}
}
