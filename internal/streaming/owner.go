package streaming

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/worker"
)

// Owner is the single-threaded store that receives finished units. Both calls
// happen on the manager's goroutine.
type Owner[K comparable, P, H any] interface {
	Insert(key K, payload P, origin mgl32.Vec3) H
	Remove(handle H)
}

// OwnerFuncs adapts a pair of functions to Owner.
type OwnerFuncs[K comparable, P, H any] struct {
	InsertFunc func(key K, payload P, origin mgl32.Vec3) H
	RemoveFunc func(handle H)
}

func (o OwnerFuncs[K, P, H]) Insert(key K, payload P, origin mgl32.Vec3) H {
	return o.InsertFunc(key, payload, origin)
}

func (o OwnerFuncs[K, P, H]) Remove(handle H) {
	o.RemoveFunc(handle)
}

// Dispatcher accepts generation jobs whose input is the cell origin.
// *worker.Pool and worker.Inline both satisfy it.
type Dispatcher[K comparable, P any] interface {
	Dispatch(job worker.Job[K, mgl32.Vec3, P]) error
}
