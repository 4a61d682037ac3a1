package streaming

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/time/rate"

	"voxstream/internal/profiling"
	"voxstream/internal/worker"
)

// ErrClosed is returned by Update after Close.
var ErrClosed = errors.New("streaming manager closed")

// State is the per-key lifecycle position.
type State int

const (
	Absent State = iota
	Pending
	Live
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Live:
		return "live"
	default:
		return "absent"
	}
}

// Options configures a Manager.
type Options[K comparable, P, H any] struct {
	// Name labels logs and metrics.
	Name   string
	Layout Layout[K]
	Radius int

	Dispatcher Dispatcher[K, P]
	Owner      Owner[K, P, H]

	// MaxInstallsPerTick caps how many finished results are handed to the
	// owner per Update. Zero means one; negative means unlimited.
	MaxInstallsPerTick int

	// DispatchLimiter throttles new dispatches. Nil means unlimited.
	DispatchLimiter *rate.Limiter

	Logger *slog.Logger
}

// Tick reports what a single Update did.
type Tick[K comparable, H any] struct {
	Cell       K
	Recomputed bool

	// Evicted holds the owner handles removed this tick, EvictedKeys their keys
	// in the same order.
	Evicted     []H
	EvictedKeys []K

	Cancelled  []K
	Installed  []K
	Failed     []K
	Dispatched []K
}

// Stats is a point-in-time summary of a manager.
type Stats struct {
	Radius  int
	Wanted  int
	Pending int
	Live    int
	Backlog int

	Dispatched uint64
	Cancelled  uint64
	Installed  uint64
	Evicted    uint64
	Failed     uint64
}

// Snapshot lists keys per state, for debug tooling.
type Snapshot[K comparable] struct {
	Center  K
	Radius  int
	Wanted  []K
	Pending []K
	Live    []K
}

type pendingWork[K comparable, P any] struct {
	ticket *worker.Ticket[K, P]
	origin mgl32.Vec3
	since  time.Time
}

// Manager keeps the set of live units in step with a moving viewpoint. It is
// not safe for concurrent use; all methods run on the owner's goroutine.
type Manager[K comparable, P, H any] struct {
	name       string
	layout     Layout[K]
	radius     int
	dispatcher Dispatcher[K, P]
	owner      Owner[K, P, H]
	limiter    *rate.Limiter
	maxInstall int
	logger     *slog.Logger

	wanted  map[K]struct{}
	pending map[K]*pendingWork[K, P]
	live    map[K]H
	backlog keyQueue[K]

	center    K
	hasCenter bool
	dirty     bool
	closed    bool

	stats Stats
}

// NewManager builds a manager. Layout, Dispatcher and Owner are required.
func NewManager[K comparable, P, H any](opts Options[K, P, H]) (*Manager[K, P, H], error) {
	if opts.Layout == nil || opts.Dispatcher == nil || opts.Owner == nil {
		return nil, fmt.Errorf("streaming %s: layout, dispatcher and owner are required", opts.Name)
	}
	if opts.Radius < 0 {
		return nil, fmt.Errorf("streaming %s: negative radius %d", opts.Name, opts.Radius)
	}

	m := &Manager[K, P, H]{
		name:       opts.Name,
		layout:     opts.Layout,
		radius:     opts.Radius,
		dispatcher: opts.Dispatcher,
		owner:      opts.Owner,
		limiter:    opts.DispatchLimiter,
		maxInstall: opts.MaxInstallsPerTick,
		logger:     opts.Logger,
		wanted:     make(map[K]struct{}),
		pending:    make(map[K]*pendingWork[K, P]),
		live:       make(map[K]H),
	}
	if m.limiter == nil {
		m.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if m.maxInstall == 0 {
		m.maxInstall = 1
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	m.logger = m.logger.With("manager", m.name)
	return m, nil
}

// Update moves the viewpoint to pos. When the cell or radius changed it
// recomputes the wanted set, evicting and cancelling before anything new is
// dispatched. It then drains finished jobs into the owner and dispatches the
// backlog nearest-first. A dispatch error leaves the undispatched keys queued
// for the next Update.
func (m *Manager[K, P, H]) Update(pos mgl32.Vec3) (Tick[K, H], error) {
	defer profiling.Track("streaming.Update")()

	cell := m.layout.Cell(pos)
	tick := Tick[K, H]{Cell: cell}
	if m.closed {
		return tick, ErrClosed
	}

	if !m.hasCenter || m.dirty || cell != m.center {
		m.recompute(cell, &tick)
	}
	m.drain(&tick)
	err := m.dispatch(&tick)
	m.publish()
	return tick, err
}

func (m *Manager[K, P, H]) recompute(cell K, tick *Tick[K, H]) {
	defer profiling.Track("streaming.recompute")()

	m.center, m.hasCenter, m.dirty = cell, true, false
	tick.Recomputed = true

	keys := m.layout.Wanted(cell, m.radius)
	wanted := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	m.wanted = wanted

	for k, h := range m.live {
		if _, ok := wanted[k]; ok {
			continue
		}
		delete(m.live, k)
		m.owner.Remove(h)
		tick.Evicted = append(tick.Evicted, h)
		tick.EvictedKeys = append(tick.EvictedKeys, k)
	}
	for k, pw := range m.pending {
		if _, ok := wanted[k]; ok {
			continue
		}
		// Fire and forget: the worker skips it if it has not started yet,
		// otherwise its result lands in a slot nobody reads.
		pw.ticket.Cancel()
		delete(m.pending, k)
		tick.Cancelled = append(tick.Cancelled, k)
	}

	m.backlog.reset()
	for _, k := range keys {
		if _, ok := m.live[k]; ok {
			continue
		}
		if _, ok := m.pending[k]; ok {
			continue
		}
		m.backlog.push(k, m.layout.DistanceSq(k, cell))
	}

	m.stats.Evicted += uint64(len(tick.Evicted))
	m.stats.Cancelled += uint64(len(tick.Cancelled))
	evictedTotal.WithLabelValues(m.name).Add(float64(len(tick.Evicted)))
	cancelledTotal.WithLabelValues(m.name).Add(float64(len(tick.Cancelled)))

	m.logger.Debug("wanted set recomputed",
		"cell", fmt.Sprint(cell),
		"radius", m.radius,
		"wanted", len(keys),
		"evicted", len(tick.Evicted),
		"cancelled", len(tick.Cancelled),
		"backlog", m.backlog.Len(),
	)
}

// drain polls each pending entry once, nearest first, and installs finished
// results until the per-tick limit is reached.
func (m *Manager[K, P, H]) drain(tick *Tick[K, H]) {
	defer profiling.Track("streaming.drain")()

	if len(m.pending) == 0 {
		return
	}
	keys := make([]K, 0, len(m.pending))
	for k := range m.pending {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int {
		return m.layout.DistanceSq(a, m.center) - m.layout.DistanceSq(b, m.center)
	})

	for _, k := range keys {
		if m.maxInstall > 0 && len(tick.Installed) >= m.maxInstall {
			break
		}
		pw := m.pending[k]
		res, ready := pw.ticket.Poll()
		if !ready {
			continue
		}
		delete(m.pending, k)

		if res.Err != nil {
			// Back to Absent; the next recompute that still wants it retries.
			tick.Failed = append(tick.Failed, k)
			m.stats.Failed++
			failedTotal.WithLabelValues(m.name).Inc()
			m.logger.Warn("generation failed",
				"key", fmt.Sprint(k),
				"job_id", pw.ticket.ID,
				"error", res.Err,
			)
			continue
		}

		m.live[k] = m.owner.Insert(k, res.Value, pw.origin)
		tick.Installed = append(tick.Installed, k)
		m.stats.Installed++
		installedTotal.WithLabelValues(m.name).Inc()
		installLatency.WithLabelValues(m.name).Observe(time.Since(pw.since).Seconds())
	}
}

func (m *Manager[K, P, H]) dispatch(tick *Tick[K, H]) error {
	defer profiling.Track("streaming.dispatch")()

	for {
		k, ok := m.backlog.peek()
		if !ok {
			return nil
		}
		if !m.limiter.Allow() {
			return nil
		}

		origin := m.layout.Origin(k)
		job, ticket := worker.NewJob[K, mgl32.Vec3, P](k, origin)
		if err := m.dispatcher.Dispatch(job); err != nil {
			return fmt.Errorf("streaming %s: dispatch %v: %w", m.name, k, err)
		}
		m.backlog.pop()

		m.pending[k] = &pendingWork[K, P]{ticket: ticket, origin: origin, since: time.Now()}
		tick.Dispatched = append(tick.Dispatched, k)
		m.stats.Dispatched++
		dispatchedTotal.WithLabelValues(m.name).Inc()
	}
}

func (m *Manager[K, P, H]) publish() {
	keysGauge.WithLabelValues(m.name, "wanted").Set(float64(len(m.wanted)))
	keysGauge.WithLabelValues(m.name, "pending").Set(float64(len(m.pending)))
	keysGauge.WithLabelValues(m.name, "live").Set(float64(len(m.live)))
	keysGauge.WithLabelValues(m.name, "backlog").Set(float64(m.backlog.Len()))
}

// SetRadius changes the streaming radius. The wanted set is recomputed on the
// next Update.
func (m *Manager[K, P, H]) SetRadius(r int) {
	if r < 0 {
		r = 0
	}
	if r != m.radius {
		m.radius = r
		m.dirty = true
	}
}

// Radius returns the current streaming radius.
func (m *Manager[K, P, H]) Radius() int {
	return m.radius
}

// State reports where key currently is in its lifecycle.
func (m *Manager[K, P, H]) State(key K) State {
	if _, ok := m.live[key]; ok {
		return Live
	}
	if _, ok := m.pending[key]; ok {
		return Pending
	}
	return Absent
}

// Handle returns the owner handle of a live key.
func (m *Manager[K, P, H]) Handle(key K) (H, bool) {
	h, ok := m.live[key]
	return h, ok
}

func (m *Manager[K, P, H]) Stats() Stats {
	s := m.stats
	s.Radius = m.radius
	s.Wanted = len(m.wanted)
	s.Pending = len(m.pending)
	s.Live = len(m.live)
	s.Backlog = m.backlog.Len()
	return s
}

func (m *Manager[K, P, H]) Snapshot() Snapshot[K] {
	s := Snapshot[K]{
		Center:  m.center,
		Radius:  m.radius,
		Wanted:  make([]K, 0, len(m.wanted)),
		Pending: make([]K, 0, len(m.pending)),
		Live:    make([]K, 0, len(m.live)),
	}
	for k := range m.wanted {
		s.Wanted = append(s.Wanted, k)
	}
	for k := range m.pending {
		s.Pending = append(s.Pending, k)
	}
	for k := range m.live {
		s.Live = append(s.Live, k)
	}
	return s
}

// Close cancels every pending job and removes every live unit from the owner.
// The dispatcher is not closed; it belongs to the caller.
func (m *Manager[K, P, H]) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for k, pw := range m.pending {
		pw.ticket.Cancel()
		delete(m.pending, k)
	}
	for k, h := range m.live {
		m.owner.Remove(h)
		delete(m.live, k)
	}
	clear(m.wanted)
	m.backlog.reset()
	m.publish()
	m.logger.Info("streaming manager closed",
		"installed", m.stats.Installed,
		"evicted", m.stats.Evicted,
		"failed", m.stats.Failed,
	)
}
