package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU accounting for tick-level insights.

// Sample is the accumulated time and call count of one tracked section.
type Sample struct {
	Name  string
	Total time.Duration
	Calls int
}

var (
	mu     sync.Mutex
	frame  = make(map[string]*Sample)
	frames int
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("streaming.Update")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s := frame[name]
		if s == nil {
			s = &Sample{Name: name}
			frame[name] = s
		}
		s.Total += d
		s.Calls++
		mu.Unlock()
	}
}

// ResetFrame clears the current totals. Call at the start of each tick.
func ResetFrame() {
	mu.Lock()
	clear(frame)
	frames++
	mu.Unlock()
}

// Frames returns how many times ResetFrame was called.
func Frames() int {
	mu.Lock()
	defer mu.Unlock()
	return frames
}

// SumWithPrefix returns the total time of every section whose name starts
// with prefix, e.g. "streaming.".
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for name, s := range frame {
		if strings.HasPrefix(name, prefix) {
			total += s.Total
		}
	}
	return total
}

// Snapshot returns the current totals, slowest first.
func Snapshot() []Sample {
	mu.Lock()
	out := make([]Sample, 0, len(frame))
	for _, s := range frame {
		out = append(out, *s)
	}
	mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n slowest sections of the current frame.
// Example: "streaming.Update:4.2ms(1), streaming.drain:2.1ms(1)"
func TopN(n int) string {
	ss := Snapshot()
	if n > len(ss) {
		n = len(ss)
	}
	parts := make([]string, 0, n)
	for _, s := range ss[:n] {
		ms := float64(s.Total.Microseconds()) / 1000.0
		parts = append(parts, s.Name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms("+strconv.Itoa(s.Calls)+")")
	}
	return strings.Join(parts, ", ")
}
