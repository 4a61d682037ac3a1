// Package input maps GLFW key and cursor events to viewer actions.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer control, independent of the physical key.
type Action int

const (
	MoveForward Action = iota
	MoveBackward
	MoveLeft
	MoveRight
	Rise
	Sink
	Sprint
	RadiusUp
	RadiusDown
	Pause
	Quit
	actionCount
)

var actionNames = [actionCount]string{
	"move_forward", "move_backward", "move_left", "move_right",
	"rise", "sink", "sprint", "radius_up", "radius_down", "pause", "quit",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Map tracks held actions, per-frame press edges and accumulated cursor
// movement. Events may arrive from GLFW callbacks; readers call EndFrame once
// per frame.
type Map struct {
	mu sync.Mutex

	bindings map[glfw.Key][]Action

	held    [actionCount]bool
	pressed [actionCount]bool

	cursorX, cursorY float64
	dx, dy           float64
	haveCursor       bool
}

// NewMap returns a map with the default bindings.
func NewMap() *Map {
	m := &Map{bindings: make(map[glfw.Key][]Action)}

	m.Bind(glfw.KeyW, MoveForward)
	m.Bind(glfw.KeyUp, MoveForward)
	m.Bind(glfw.KeyS, MoveBackward)
	m.Bind(glfw.KeyDown, MoveBackward)
	m.Bind(glfw.KeyA, MoveLeft)
	m.Bind(glfw.KeyLeft, MoveLeft)
	m.Bind(glfw.KeyD, MoveRight)
	m.Bind(glfw.KeyRight, MoveRight)
	m.Bind(glfw.KeySpace, Rise)
	m.Bind(glfw.KeyLeftShift, Sink)
	m.Bind(glfw.KeyLeftControl, Sprint)
	m.Bind(glfw.KeyEqual, RadiusUp)
	m.Bind(glfw.KeyKPAdd, RadiusUp)
	m.Bind(glfw.KeyMinus, RadiusDown)
	m.Bind(glfw.KeyKPSubtract, RadiusDown)
	m.Bind(glfw.KeyEscape, Pause)
	m.Bind(glfw.KeyQ, Quit)
	return m
}

// Bind adds an action to key. A key may drive several actions.
func (m *Map) Bind(key glfw.Key, a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[key] = append(m.bindings[key], a)
}

// Unbind drops every action bound to key.
func (m *Map) Unbind(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, key)
}

// HandleKey records a key event.
func (m *Map) HandleKey(key glfw.Key, action glfw.Action) {
	down := action == glfw.Press || action == glfw.Repeat

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.bindings[key] {
		if down && !m.held[a] {
			m.pressed[a] = true
		}
		m.held[a] = down
	}
}

// HandleCursor records a cursor position. The first position after
// ResetCursor only sets the reference point.
func (m *Map) HandleCursor(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.haveCursor {
		m.dx += x - m.cursorX
		m.dy += y - m.cursorY
	}
	m.cursorX, m.cursorY = x, y
	m.haveCursor = true
}

// ResetCursor forgets the reference point, e.g. after the cursor was
// released and recaptured.
func (m *Map) ResetCursor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.haveCursor = false
	m.dx, m.dy = 0, 0
}

// Attach installs the key and cursor callbacks on window.
func (m *Map) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleKey(key, action)
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		m.HandleCursor(x, y)
	})
}

// Held reports whether a is currently down.
func (m *Map) Held(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[a]
}

// Pressed reports whether a went down since the last EndFrame.
func (m *Map) Pressed(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressed[a]
}

// Axis returns +1, -1 or 0 from a pair of opposing actions.
func (m *Map) Axis(pos, neg Action) float32 {
	var v float32
	if m.Held(pos) {
		v++
	}
	if m.Held(neg) {
		v--
	}
	return v
}

// CursorDelta returns the cursor movement accumulated since the last
// EndFrame.
func (m *Map) CursorDelta() (dx, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dx, m.dy
}

// EndFrame clears press edges and the cursor delta.
func (m *Map) EndFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.pressed[:])
	m.dx, m.dy = 0, 0
}
