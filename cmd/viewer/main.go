// Command viewer flies a camera over streamed terrain in an OpenGL window.
// WASD moves, space/shift rise and sink, +/- change the render distance and
// Escape releases the mouse.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxstream/internal/assets"
	"voxstream/internal/config"
	"voxstream/internal/engine"
	"voxstream/internal/input"
	"voxstream/internal/profiling"
	"voxstream/internal/render"
	"voxstream/internal/timestep"
)

const (
	windowWidth  = 1280
	windowHeight = 720

	moveSpeed   = 24.0 // world units per second
	sprintScale = 4.0
	mouseScale  = 0.1
)

var fogColor = mgl32.Vec3{0.62, 0.74, 0.86}

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "voxstream.yaml", "YAML config file; missing means defaults")
	fps := flag.Int("fps", 120, "frame cap, 0 for uncapped")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, config.ParseLogLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, *fps, logger); err != nil {
		logger.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, fps int, logger *slog.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		return err
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(fogColor.X(), fogColor.Y(), fogColor.Z(), 1)

	shader, err := render.NewTerrainShader()
	if err != nil {
		return err
	}
	defer shader.Delete()

	cache := render.NewMeshCache()
	defer cache.Dispose()

	config.SetRenderDistance(cfg.Streaming.ChunkRadius)
	eng, err := engine.New(engine.Options[uint32]{
		Config:     cfg,
		ChunkOwner: cache.ChunkOwner(),
		PropOwner:  cache.PropOwner(assets.NewLibrary()),
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	spawnY := float32(eng.Generator.HeightAt(0, 0) + 12)
	cam := render.NewCamera(windowWidth, windowHeight, mgl32.Vec3{0, spawnY, 0})
	cam.FarPlane = float32((cfg.Streaming.ChunkRadius + 2) * cfg.Terrain.CellSize)
	if err := eng.Warmup(cam.Position, 2); err != nil {
		logger.Warn("warmup incomplete", "error", err)
	}

	controls := input.NewMap()
	controls.Attach(window)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		cam.AspectRatio = float32(width) / float32(max(height, 1))
	})
	paused := false

	clock := timestep.NewClock()
	limiter := timestep.NewLimiter(fps)
	lastTitle := time.Now()

	for !window.ShouldClose() {
		profiling.ResetFrame()
		dt := float32(clock.Tick().Seconds())

		if controls.Pressed(input.Quit) {
			window.SetShouldClose(true)
		}
		if controls.Pressed(input.Pause) {
			paused = !paused
			if paused {
				window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			} else {
				window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
				controls.ResetCursor()
			}
		}
		if delta := radiusDelta(controls); delta != 0 {
			r := config.AdjustRenderDistance(delta)
			eng.SetRadius(r)
			cam.FarPlane = float32((r + 2) * cfg.Terrain.CellSize)
			logger.Info("render distance", "radius", r)
		}
		if !paused {
			func() { defer profiling.Track("input.Move")(); move(controls, cam, dt) }()
		}
		controls.EndFrame()
		if err := eng.Update(cam.Position); err != nil {
			logger.Warn("streaming update failed", "error", err)
		}

		drawn := func() int {
			defer profiling.Track("render.Draw")()
			return draw(shader, cache, cam, cfg)
		}()

		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

		if time.Since(lastTitle) >= time.Second {
			lastTitle = time.Now()
			c := eng.Chunks.Stats()
			window.SetTitle(fmt.Sprintf("voxstream | %d fps | r=%d live=%d pending=%d drawn=%d",
				clock.FPS(), c.Radius, c.Live, c.Pending, drawn))
			logger.Debug("frame", "profile", profiling.TopN(5), "streaming", profiling.SumWithPrefix("streaming."))
		}
		limiter.Wait()
	}
	return nil
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "voxstream", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

func radiusDelta(controls *input.Map) int {
	d := 0
	if controls.Pressed(input.RadiusUp) {
		d++
	}
	if controls.Pressed(input.RadiusDown) {
		d--
	}
	return d
}

func move(controls *input.Map, cam *render.Camera, dt float32) {
	dx, dy := controls.CursorDelta()
	cam.Look(float32(dx)*mouseScale, float32(-dy)*mouseScale)

	speed := float32(moveSpeed) * dt
	if controls.Held(input.Sprint) {
		speed *= sprintScale
	}
	cam.Move(
		controls.Axis(input.MoveForward, input.MoveBackward)*speed,
		controls.Axis(input.MoveRight, input.MoveLeft)*speed,
		controls.Axis(input.Rise, input.Sink)*speed,
	)
}

func draw(shader *render.Shader, cache *render.MeshCache, cam *render.Camera, cfg config.Config) int {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	proj := cam.Projection()
	view := cam.View()
	frustum := cam.Frustum()

	shader.Use()
	shader.SetMatrix4("proj", &proj[0])
	shader.SetMatrix4("view", &view[0])
	light := mgl32.Vec3{0.4, 1, 0.3}.Normalize()
	shader.SetVector3("lightDir", light.X(), light.Y(), light.Z())
	shader.SetVector3("fogColor", fogColor.X(), fogColor.Y(), fogColor.Z())
	shader.SetFloat("fogEnd", float32(config.GetRenderDistance()*cfg.Terrain.CellSize))

	return cache.Draw(shader, &frustum)
}
