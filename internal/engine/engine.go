// Package engine wires the terrain and prop streaming managers to their
// worker pools for a given owner.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/time/rate"

	"voxstream/internal/assets"
	"voxstream/internal/config"
	"voxstream/internal/meshing"
	"voxstream/internal/profiling"
	"voxstream/internal/streaming"
	"voxstream/internal/terrain"
	"voxstream/internal/worker"
)

const (
	ChunkManager = "chunks"
	PropManager  = "props"

	// warmupTickLimit bounds Warmup when the limiter starves dispatch.
	warmupTickLimit = 4096
)

// Options configures an Engine. The owners receive every installed unit.
type Options[H any] struct {
	Config     config.Config
	ChunkOwner streaming.Owner[streaming.Key, *meshing.Mesh, H]
	PropOwner  streaming.Owner[streaming.Key, *assets.Props, H]

	// Sync generates on the calling goroutine instead of worker pools.
	Sync   bool
	Logger *slog.Logger
}

// Engine streams terrain meshes and prop sets around one viewpoint.
type Engine[H any] struct {
	Generator *terrain.Generator
	Chunks    *streaming.Manager[streaming.Key, *meshing.Mesh, H]
	Props     *streaming.Manager[streaming.Key, *assets.Props, H]

	chunkPool *worker.Pool[streaming.Key, mgl32.Vec3, *meshing.Mesh]
	propPool  *worker.Pool[streaming.Key, mgl32.Vec3, *assets.Props]

	// inline routes dispatch through the calling goroutine while set.
	inline *bool
	// propRadius is the configured prop radius; the live one never exceeds
	// the terrain radius.
	propRadius int
	logger *slog.Logger
	closed bool
}

// New starts the pools and builds both managers.
func New[H any](opts Options[H]) (*Engine[H], error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gen := terrain.NewGenerator(terrain.Settings{
		Seed:       cfg.Terrain.Seed,
		BaseHeight: cfg.Terrain.BaseHeight,
		Amplitude:  cfg.Terrain.Amplitude,
		Border:     cfg.Terrain.Border,
	})
	grid := streaming.Grid{CellSize: float32(cfg.Terrain.CellSize)}

	e := &Engine[H]{
		Generator:  gen,
		inline:     new(bool),
		propRadius: cfg.Streaming.AssetRadius,
		logger:     logger,
	}
	*e.inline = opts.Sync

	chunkFactory := meshing.Factory(gen, cfg.Terrain.CellSize)
	propFactory := assets.Factory(gen, cfg.Terrain.CellSize)

	chunkDispatch := &routed[*meshing.Mesh]{
		inline: worker.Inline[streaming.Key, mgl32.Vec3, *meshing.Mesh]{Generate: chunkFactory(-1)},
		sync:   e.inline,
	}
	propDispatch := &routed[*assets.Props]{
		inline: worker.Inline[streaming.Key, mgl32.Vec3, *assets.Props]{Generate: propFactory(-1)},
		sync:   e.inline,
	}
	if !opts.Sync {
		e.chunkPool = worker.NewPool[streaming.Key, mgl32.Vec3, *meshing.Mesh](ChunkManager, cfg.Streaming.Workers, chunkFactory, logger)
		e.propPool = worker.NewPool[streaming.Key, mgl32.Vec3, *assets.Props](PropManager, cfg.Streaming.AssetWorkers, propFactory, logger)
		chunkDispatch.pool = e.chunkPool
		propDispatch.pool = e.propPool
	}

	var err error
	e.Chunks, err = streaming.NewManager(streaming.Options[streaming.Key, *meshing.Mesh, H]{
		Name:               ChunkManager,
		Layout:             grid,
		Radius:             cfg.Streaming.ChunkRadius,
		Dispatcher:         chunkDispatch,
		Owner:              opts.ChunkOwner,
		MaxInstallsPerTick: cfg.Streaming.MaxInstallsPerTick,
		DispatchLimiter:    newLimiter(cfg.Streaming),
		Logger:             logger,
	})
	if err != nil {
		e.closePools()
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.Props, err = streaming.NewManager(streaming.Options[streaming.Key, *assets.Props, H]{
		Name:               PropManager,
		Layout:             grid,
		Radius:             cfg.Streaming.AssetRadius,
		Dispatcher:         propDispatch,
		Owner:              opts.PropOwner,
		MaxInstallsPerTick: cfg.Streaming.MaxInstallsPerTick,
		DispatchLimiter:    newLimiter(cfg.Streaming),
		Logger:             logger,
	})
	if err != nil {
		e.closePools()
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger.Info("engine started",
		"seed", gen.Seed(),
		"cell_size", cfg.Terrain.CellSize,
		"chunk_radius", cfg.Streaming.ChunkRadius,
		"asset_radius", cfg.Streaming.AssetRadius,
		"workers", cfg.Streaming.Workers,
		"asset_workers", cfg.Streaming.AssetWorkers,
		"sync", opts.Sync,
	)
	return e, nil
}

func newLimiter(s config.Streaming) *rate.Limiter {
	if s.DispatchPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.DispatchPerSecond), s.DispatchBurst)
}

// Update advances both managers to pos. Dispatch errors from either manager
// are joined; the other still runs.
func (e *Engine[H]) Update(pos mgl32.Vec3) error {
	defer profiling.Track("engine.Update")()

	_, chunkErr := e.Chunks.Update(pos)
	_, propErr := e.Props.Update(pos)
	return errors.Join(chunkErr, propErr)
}

// Warmup loads everything within radius of pos on the calling goroutine, then
// restores the configured radius. Later Updates start from a populated world.
func (e *Engine[H]) Warmup(pos mgl32.Vec3, radius int) error {
	defer profiling.Track("engine.Warmup")()

	chunkRadius, propRadius := e.Chunks.Radius(), e.Props.Radius()
	prev := *e.inline
	*e.inline = true
	defer func() {
		*e.inline = prev
		e.Chunks.SetRadius(chunkRadius)
		e.Props.SetRadius(propRadius)
	}()

	e.Chunks.SetRadius(min(radius, chunkRadius))
	e.Props.SetRadius(min(radius, propRadius))

	for range warmupTickLimit {
		if err := e.Update(pos); err != nil {
			return err
		}
		c, p := e.Chunks.Stats(), e.Props.Stats()
		if c.Pending+c.Backlog+p.Pending+p.Backlog == 0 {
			e.logger.Info("warmup done", "chunks", c.Live, "props", p.Live)
			return nil
		}
	}
	return fmt.Errorf("engine: warmup did not settle after %d ticks", warmupTickLimit)
}

// SetRadius changes the terrain radius and keeps the prop radius within it.
func (e *Engine[H]) SetRadius(r int) {
	r = config.ClampRadius(r)
	e.Chunks.SetRadius(r)
	e.Props.SetRadius(min(e.propRadius, r))
}

// WorkersAlive reports live workers per pool. Sync engines report nothing.
func (e *Engine[H]) WorkersAlive() map[string]int {
	alive := make(map[string]int, 2)
	if e.chunkPool != nil {
		alive[ChunkManager] = e.chunkPool.Alive()
	}
	if e.propPool != nil {
		alive[PropManager] = e.propPool.Alive()
	}
	return alive
}

// Close removes every installed unit from the owners and stops the pools.
func (e *Engine[H]) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.Chunks.Close()
	e.Props.Close()
	e.closePools()
}

func (e *Engine[H]) closePools() {
	if e.chunkPool != nil {
		e.chunkPool.Close()
	}
	if e.propPool != nil {
		e.propPool.Close()
	}
}

// routed sends jobs to the pool, or runs them inline while sync is set.
type routed[P any] struct {
	pool   *worker.Pool[streaming.Key, mgl32.Vec3, P]
	inline worker.Inline[streaming.Key, mgl32.Vec3, P]
	sync   *bool
}

func (r *routed[P]) Dispatch(job worker.Job[streaming.Key, mgl32.Vec3, P]) error {
	if *r.sync || r.pool == nil {
		return r.inline.Dispatch(job)
	}
	return r.pool.Dispatch(job)
}
