// Command voxstream flies a viewpoint over generated terrain without a window
// and streams chunks and props around it. Metrics and a live map of the
// streaming state are served over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
	"github.com/xlab/closer"

	"voxstream/internal/assets"
	"voxstream/internal/config"
	"voxstream/internal/debugmap"
	"voxstream/internal/debugserver"
	"voxstream/internal/engine"
	"voxstream/internal/profiling"
	"voxstream/internal/scene"
	"voxstream/internal/timestep"
)

const warmupRadius = 2

type flags struct {
	config      string
	ticks       int
	tickRate    int
	path        string
	speed       float64
	sync        bool
	profile     string
	mapPath     string
	metricsAddr string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "voxstream.yaml", "YAML config file; missing means defaults")
	flag.IntVar(&f.ticks, "ticks", 0, "stop after this many ticks, 0 runs until interrupted")
	flag.IntVar(&f.tickRate, "tick-rate", 60, "ticks per second, 0 runs unpaced")
	flag.StringVar(&f.path, "path", "circle", "fly path: circle, line, jump or still")
	flag.Float64Var(&f.speed, "speed", 2, "viewpoint speed in world units per tick")
	flag.BoolVar(&f.sync, "sync", false, "generate on the tick goroutine instead of worker pools")
	flag.StringVar(&f.profile, "profile", "", "write a cpu or mem profile to the working directory")
	flag.StringVar(&f.mapPath, "map", "", "write a PNG of the chunk map on exit")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "debug HTTP address, overrides the config; \"off\" disables")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	switch f.metricsAddr {
	case "":
	case "off":
		cfg.MetricsAddr = ""
	default:
		cfg.MetricsAddr = f.metricsAddr
	}

	logger := config.NewLogger(os.Stderr, config.ParseLogLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)

	path, err := newPath(f.path, f.speed)
	if err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(2)
	}

	prof, err := startProfile(f.profile)
	if err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(2)
	}

	world := scene.NewWorld(assets.NewLibrary())
	eng, err := engine.New(engine.Options[scene.Entity]{
		Config:     cfg,
		ChunkOwner: world.ChunkOwner(),
		PropOwner:  world.PropOwner(),
		Sync:       f.sync,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("engine setup failed", "error", err)
		os.Exit(1)
	}

	srv := debugserver.New(cfg.MetricsAddr, logger)
	if cfg.MetricsAddr != "" {
		if err := srv.Start(); err != nil {
			logger.Error("debug server failed", "error", err)
			eng.Close()
			os.Exit(1)
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	var stopOnce sync.Once
	closer.Bind(func() {
		stopOnce.Do(func() { close(stop) })
		<-done
	})

	d := &driver{
		engine: eng,
		world:  world,
		server: srv,
		path:   path,
		logger: logger,
	}
	if err := eng.Warmup(path(0), warmupRadius); err != nil {
		logger.Warn("warmup incomplete", "error", err)
	}
	d.run(stop, f.ticks, f.tickRate)

	if f.mapPath != "" {
		if err := writeMap(f.mapPath, d); err != nil {
			logger.Error("map not written", "error", err)
		}
	}
	eng.Close()
	if err := srv.Shutdown(); err != nil {
		logger.Warn("debug server shutdown", "error", err)
	}
	if prof != nil {
		prof.Stop()
	}
	logger.Info("stopped", "ticks", d.tick, "world", world.Stats())

	close(done)
	closer.Close()
}

func startProfile(mode string) (interface{ Stop() }, error) {
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook), nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
}

func writeMap(path string, d *driver) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	snap := d.engine.Chunks.Snapshot()
	if err := debugmap.WritePNG(out, snap, debugmap.Options{Title: fmt.Sprintf("tick %d", d.tick)}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// driver owns the tick loop. Everything that touches the engine runs on its
// goroutine; the debug server only sees published copies.
type driver struct {
	engine *engine.Engine[scene.Entity]
	world  *scene.World
	server *debugserver.Server
	path   Path
	logger *slog.Logger

	tick uint64
}

func (d *driver) run(stop <-chan struct{}, ticks, hz int) {
	limiter := timestep.NewLimiter(hz)
	clock := timestep.NewClock()
	lastReport := time.Now()

	for ticks <= 0 || d.tick < uint64(ticks) {
		select {
		case <-stop:
			return
		default:
		}

		top := profiling.TopN(5)
		profiling.ResetFrame()
		clock.Tick()

		pos := d.path(d.tick)
		pos[1] = float32(d.engine.Generator.HeightAt(int(pos.X()), int(pos.Z())))
		if err := d.engine.Update(pos); err != nil {
			d.logger.Warn("update failed", "tick", d.tick, "error", err)
		}
		d.publish(pos, top)

		if time.Since(lastReport) >= time.Second {
			lastReport = time.Now()
			d.report(pos, clock.FPS(), top)
		}

		d.tick++
		limiter.Wait()
	}
}

func (d *driver) publish(pos mgl32.Vec3, top string) {
	d.server.Publish(debugserver.Status{
		Tick:     d.tick,
		Position: pos,
		Chunks:   d.engine.Chunks.Stats(),
		Props:    d.engine.Props.Stats(),
		World:    d.world.Stats(),
		Workers:  d.engine.WorkersAlive(),
		TopN:     top,
		ChunkMap: d.engine.Chunks.Snapshot(),
	})
}

func (d *driver) report(pos mgl32.Vec3, tps int, top string) {
	c, p := d.engine.Chunks.Stats(), d.engine.Props.Stats()
	d.logger.Info("tick",
		"tick", d.tick,
		"tps", tps,
		"pos", fmt.Sprintf("%.0f,%.0f", pos.X(), pos.Z()),
		"chunks_live", c.Live,
		"chunks_pending", c.Pending,
		"chunks_backlog", c.Backlog,
		"props_live", p.Live,
		"failed", c.Failed+p.Failed,
		"profile", top,
	)
}
