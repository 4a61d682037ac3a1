package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	MinRadius  = 0
	MaxRadius  = 32
	MinWorkers = 1
	MaxWorkers = 64

	envLogLevel    = "VOXSTREAM_LOG_LEVEL"
	envWorkers     = "VOXSTREAM_WORKERS"
	envMetricsAddr = "VOXSTREAM_METRICS_ADDR"
)

// Config holds the streaming engine settings.
type Config struct {
	Terrain   Terrain   `yaml:"terrain"`
	Streaming Streaming `yaml:"streaming"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type Terrain struct {
	Seed       int64   `yaml:"seed"`
	CellSize   int     `yaml:"cell_size"`
	BaseHeight int     `yaml:"base_height"`
	Amplitude  float64 `yaml:"amplitude"`
	// Border is the world half-width in cells, 0 for unbounded.
	Border int `yaml:"border"`
}

type Streaming struct {
	ChunkRadius  int `yaml:"chunk_radius"`
	AssetRadius  int `yaml:"asset_radius"`
	Workers      int `yaml:"workers"`
	AssetWorkers int `yaml:"asset_workers"`

	// MaxInstallsPerTick: 0 means one per tick, negative means unlimited.
	MaxInstallsPerTick int `yaml:"max_installs_per_tick"`

	// DispatchPerSecond <= 0 disables dispatch throttling.
	DispatchPerSecond float64 `yaml:"dispatch_per_second"`
	DispatchBurst     int     `yaml:"dispatch_burst"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Terrain: Terrain{
			Seed:       1337,
			CellSize:   16,
			BaseHeight: 24,
			Amplitude:  32,
		},
		Streaming: Streaming{
			ChunkRadius:        8,
			AssetRadius:        3,
			Workers:            2,
			AssetWorkers:       1,
			MaxInstallsPerTick: 1,
			DispatchBurst:      32,
		},
		LogLevel:    "info",
		LogFormat:   "json",
		MetricsAddr: ":9464",
	}
}

// Load reads path over the defaults, applies environment overrides and
// clamps. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envMetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv(envWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: %s=%q: %w", envWorkers, v, err)
		}
		cfg.Streaming.Workers = n
	}

	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	s := &c.Streaming
	s.ChunkRadius = ClampRadius(s.ChunkRadius)
	s.AssetRadius = min(ClampRadius(s.AssetRadius), s.ChunkRadius)
	s.Workers = clamp(s.Workers, MinWorkers, MaxWorkers)
	s.AssetWorkers = clamp(s.AssetWorkers, MinWorkers, MaxWorkers)
	if s.DispatchBurst < 1 {
		s.DispatchBurst = 1
	}
	if c.Terrain.CellSize < 2 {
		c.Terrain.CellSize = 2
	}
	if c.Terrain.Border < 0 {
		c.Terrain.Border = 0
	}
}

// ClampRadius limits a streaming radius to [MinRadius, MaxRadius].
func ClampRadius(r int) int {
	return clamp(r, MinRadius, MaxRadius)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// ParseLogLevel maps a level name to slog; unknown names fall back to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger writing to w. format is "json" or
// "text".
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
