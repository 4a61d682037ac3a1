package assets

import "sync"

// Template is the shared geometry of one model.
type Template struct {
	Model    Model
	Vertices []float32
}

type libraryEntry struct {
	tpl  *Template
	refs int
}

// Library is a reference-counted template cache. Templates are built on
// first Acquire and dropped when the last reference is released.
type Library struct {
	mu      sync.Mutex
	entries map[Model]*libraryEntry
	builds  int
}

func NewLibrary() *Library {
	return &Library{entries: make(map[Model]*libraryEntry)}
}

// Acquire returns the template for m, building it if needed.
func (l *Library) Acquire(m Model) *Template {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[m]
	if !ok {
		e = &libraryEntry{tpl: &Template{Model: m, Vertices: geometry(m)}}
		l.entries[m] = e
		l.builds++
	}
	e.refs++
	return e.tpl
}

// Release drops one reference to m. Unknown models are ignored.
func (l *Library) Release(m Model) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[m]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(l.entries, m)
	}
}

// Refs returns the reference count of m.
func (l *Library) Refs(m Model) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[m]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of resident templates.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Builds returns how many templates were built over the library's lifetime.
func (l *Library) Builds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.builds
}
