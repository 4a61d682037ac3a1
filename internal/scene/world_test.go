package scene_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/assets"
	"voxstream/internal/meshing"
	"voxstream/internal/scene"
	"voxstream/internal/streaming"
	"voxstream/internal/terrain"
	"voxstream/internal/worker"
)

func TestEntityVersioning(t *testing.T) {
	w := scene.NewWorld(nil)
	a := w.SpawnChunk(streaming.Key{X: 1}, &meshing.Mesh{}, mgl32.Vec3{16, 0, 0})
	if !w.Alive(a) || w.Len() != 1 {
		t.Fatalf("alive=%v len=%d", w.Alive(a), w.Len())
	}
	if !w.Despawn(a) {
		t.Fatal("despawn of live entity failed")
	}
	if w.Despawn(a) {
		t.Fatal("double despawn should report false")
	}

	b := w.SpawnChunk(streaming.Key{X: 2}, &meshing.Mesh{}, mgl32.Vec3{32, 0, 0})
	if b.ID != a.ID || b.Version == a.Version {
		t.Fatalf("expected recycled id with new version, got %+v after %+v", b, a)
	}
	if w.Alive(a) {
		t.Error("stale handle reported alive")
	}
	if _, ok := w.Chunk(a); ok {
		t.Error("stale handle resolved a component")
	}
	tr, ok := w.Transform(b)
	if !ok || tr.Origin != (mgl32.Vec3{32, 0, 0}) {
		t.Errorf("transform %v ok=%v", tr, ok)
	}
}

func TestPropsHoldTemplateReferences(t *testing.T) {
	lib := assets.NewLibrary()
	w := scene.NewWorld(lib)
	cube := assets.Model{Kind: assets.Cube}
	props := &assets.Props{Placements: []assets.Placement{
		{Model: cube},
		{Model: cube},
		{Model: assets.Model{Kind: assets.Room}},
	}}

	e1 := w.SpawnProps(streaming.Key{}, props, mgl32.Vec3{})
	e2 := w.SpawnProps(streaming.Key{X: 1}, props, mgl32.Vec3{16, 0, 0})
	if lib.Refs(cube) != 4 || lib.Len() != 2 {
		t.Fatalf("refs=%d len=%d", lib.Refs(cube), lib.Len())
	}
	set, ok := w.Props(e1)
	if !ok || len(set.Templates) != 3 || set.Templates[0].Model != cube {
		t.Fatalf("prop set %+v", set)
	}

	w.Despawn(e1)
	w.Despawn(e2)
	if lib.Len() != 0 {
		t.Errorf("library still holds %d templates", lib.Len())
	}
	if s := w.Stats(); s.Entities != 0 || s.PropSets != 0 {
		t.Errorf("stats %+v", s)
	}
}

// TestStreamsIntoWorld drives terrain and prop managers against one world.
func TestStreamsIntoWorld(t *testing.T) {
	gen := terrain.NewGenerator(terrain.Settings{Seed: 3})
	world := scene.NewWorld(assets.NewLibrary())
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	layout := streaming.Grid{CellSize: 16}

	meshPool := worker.NewPool[streaming.Key, mgl32.Vec3, *meshing.Mesh]("scene-test-mesh", 2, meshing.Factory(gen, 16), logger)
	defer meshPool.Close()

	chunks, err := streaming.NewManager(streaming.Options[streaming.Key, *meshing.Mesh, scene.Entity]{
		Name:               "chunks",
		Layout:             layout,
		Radius:             2,
		Dispatcher:         meshPool,
		Owner:              world.ChunkOwner(),
		MaxInstallsPerTick: -1,
		Logger:             logger,
	})
	if err != nil {
		t.Fatal(err)
	}
	props, err := streaming.NewManager(streaming.Options[streaming.Key, *assets.Props, scene.Entity]{
		Name:       "props",
		Layout:     layout,
		Radius:     1,
		Dispatcher: worker.Inline[streaming.Key, mgl32.Vec3, *assets.Props]{Generate: assets.Factory(gen, 16)(0)},
		Owner:      world.PropOwner(),
		Logger:     logger,
	})
	if err != nil {
		t.Fatal(err)
	}

	pos := mgl32.Vec3{8, 60, 8}
	wantChunks := len(streaming.WantedSet(streaming.Key{}, 2))
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := chunks.Update(pos); err != nil {
			t.Fatal(err)
		}
		if _, err := props.Update(pos); err != nil {
			t.Fatal(err)
		}
		if chunks.Stats().Live == wantChunks && props.Stats().Live == 9 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s := world.Stats()
	if s.Chunks != wantChunks || s.PropSets != 9 || s.Vertices == 0 {
		t.Fatalf("world stats %+v", s)
	}
	world.EachChunk(func(e scene.Entity, tr scene.Transform, c scene.ChunkMesh) {
		if tr.Origin != c.Key.Origin(16) {
			t.Errorf("chunk %v at %v", c.Key, tr.Origin)
		}
		if h, ok := chunks.Handle(c.Key); !ok || h != e {
			t.Errorf("manager handle for %v = %v, world entity %v", c.Key, h, e)
		}
	})

	chunks.Close()
	props.Close()
	if world.Len() != 0 || world.Library().Len() != 0 {
		t.Errorf("world not empty after close: %d entities, %d templates", world.Len(), world.Library().Len())
	}
}
