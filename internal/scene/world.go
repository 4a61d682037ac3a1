// Package scene is the owning store for streamed content. It is not safe for
// concurrent use; it lives on the thread that runs the streaming managers.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/assets"
	"voxstream/internal/meshing"
	"voxstream/internal/streaming"
)

// Entity is a versioned handle. A despawned ID is recycled with a bumped
// version, so stale handles never alias a newer entity.
type Entity struct {
	ID      uint32
	Version uint32
}

// Transform places an entity in world space.
type Transform struct {
	Origin mgl32.Vec3
}

// ChunkMesh is the terrain component.
type ChunkMesh struct {
	Key  streaming.Key
	Mesh *meshing.Mesh
}

// PropSet is the derived-asset component. Templates[i] is the shared
// geometry of Placements[i].
type PropSet struct {
	Key        streaming.Key
	Placements []assets.Placement
	Templates  []*assets.Template
}

type entityMeta struct {
	version uint32
	alive   bool
}

// World stores entities with sparse component maps.
type World struct {
	library *assets.Library

	metas []entityMeta
	free  []uint32
	count int

	transforms map[uint32]Transform
	chunks     map[uint32]ChunkMesh
	props      map[uint32]PropSet
}

// NewWorld creates an empty world. Prop templates are acquired from and
// released to lib.
func NewWorld(lib *assets.Library) *World {
	if lib == nil {
		lib = assets.NewLibrary()
	}
	return &World{
		library:    lib,
		transforms: make(map[uint32]Transform),
		chunks:     make(map[uint32]ChunkMesh),
		props:      make(map[uint32]PropSet),
	}
}

func (w *World) Library() *assets.Library { return w.library }

func (w *World) create(origin mgl32.Vec3) Entity {
	var id uint32
	if n := len(w.free); n > 0 {
		id = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		id = uint32(len(w.metas))
		w.metas = append(w.metas, entityMeta{})
	}
	m := &w.metas[id]
	m.version++
	m.alive = true
	w.count++
	w.transforms[id] = Transform{Origin: origin}
	return Entity{ID: id, Version: m.version}
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool {
	if int(e.ID) >= len(w.metas) {
		return false
	}
	m := w.metas[e.ID]
	return m.alive && m.version == e.Version
}

// SpawnChunk creates a terrain entity.
func (w *World) SpawnChunk(key streaming.Key, mesh *meshing.Mesh, origin mgl32.Vec3) Entity {
	e := w.create(origin)
	w.chunks[e.ID] = ChunkMesh{Key: key, Mesh: mesh}
	return e
}

// SpawnProps creates a prop entity, taking one template reference per placement.
func (w *World) SpawnProps(key streaming.Key, p *assets.Props, origin mgl32.Vec3) Entity {
	e := w.create(origin)
	set := PropSet{Key: key}
	if p != nil {
		set.Placements = p.Placements
		set.Templates = make([]*assets.Template, len(p.Placements))
		for i, pl := range p.Placements {
			set.Templates[i] = w.library.Acquire(pl.Model)
		}
	}
	w.props[e.ID] = set
	return e
}

// Despawn removes e and its components. It returns false for stale handles.
func (w *World) Despawn(e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	if set, ok := w.props[e.ID]; ok {
		for _, pl := range set.Placements {
			w.library.Release(pl.Model)
		}
		delete(w.props, e.ID)
	}
	delete(w.chunks, e.ID)
	delete(w.transforms, e.ID)
	w.metas[e.ID].alive = false
	w.free = append(w.free, e.ID)
	w.count--
	return true
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.count }

func (w *World) Transform(e Entity) (Transform, bool) {
	if !w.Alive(e) {
		return Transform{}, false
	}
	t, ok := w.transforms[e.ID]
	return t, ok
}

// Chunk returns the terrain component of e.
func (w *World) Chunk(e Entity) (ChunkMesh, bool) {
	if !w.Alive(e) {
		return ChunkMesh{}, false
	}
	c, ok := w.chunks[e.ID]
	return c, ok
}

// Props returns the prop component of e.
func (w *World) Props(e Entity) (PropSet, bool) {
	if !w.Alive(e) {
		return PropSet{}, false
	}
	p, ok := w.props[e.ID]
	return p, ok
}

// EachChunk calls fn for every terrain entity.
func (w *World) EachChunk(fn func(e Entity, t Transform, c ChunkMesh)) {
	for id, c := range w.chunks {
		fn(Entity{ID: id, Version: w.metas[id].version}, w.transforms[id], c)
	}
}

// EachProps calls fn for every prop entity.
func (w *World) EachProps(fn func(e Entity, t Transform, p PropSet)) {
	for id, p := range w.props {
		fn(Entity{ID: id, Version: w.metas[id].version}, w.transforms[id], p)
	}
}

// Stats summarizes the world's contents.
type Stats struct {
	Entities  int
	Chunks    int
	PropSets  int
	Props     int
	Vertices  int
	Templates int
}

func (w *World) Stats() Stats {
	s := Stats{
		Entities:  w.count,
		Chunks:    len(w.chunks),
		PropSets:  len(w.props),
		Templates: w.library.Len(),
	}
	for _, c := range w.chunks {
		if c.Mesh != nil {
			s.Vertices += c.Mesh.VertexCount()
		}
	}
	for _, p := range w.props {
		s.Props += len(p.Placements)
	}
	return s
}

// ChunkOwner adapts the world to a terrain streaming manager.
func (w *World) ChunkOwner() streaming.OwnerFuncs[streaming.Key, *meshing.Mesh, Entity] {
	return streaming.OwnerFuncs[streaming.Key, *meshing.Mesh, Entity]{
		InsertFunc: w.SpawnChunk,
		RemoveFunc: func(e Entity) { w.Despawn(e) },
	}
}

// PropOwner adapts the world to a prop streaming manager.
func (w *World) PropOwner() streaming.OwnerFuncs[streaming.Key, *assets.Props, Entity] {
	return streaming.OwnerFuncs[streaming.Key, *assets.Props, Entity]{
		InsertFunc: w.SpawnProps,
		RemoveFunc: func(e Entity) { w.Despawn(e) },
	}
}
