package config

import "sync"

// RenderSettings holds the runtime render distance, which the viewer changes
// while running and the terrain manager reads every frame.
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in cells
}

var globalRenderSettings = &RenderSettings{
	renderDistance: 8,
}

// GetRenderDistance returns the current render distance in cells.
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance, clamped to the streaming radius
// limits, and returns the value stored.
func SetRenderDistance(distance int) int {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.renderDistance = ClampRadius(distance)
	return globalRenderSettings.renderDistance
}

// AdjustRenderDistance adds delta to the render distance.
func AdjustRenderDistance(delta int) int {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.renderDistance = ClampRadius(globalRenderSettings.renderDistance + delta)
	return globalRenderSettings.renderDistance
}
