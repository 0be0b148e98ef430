// Package config loads masonry configuration from TOML files.
//
// Configuration is optional everywhere: the zero Config plus Defaults()
// yields a fully working setup, and a config file only overrides what it
// mentions. The CLI looks for masonry.toml in the working directory; the
// service takes an explicit path.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/masonry/pkg/layout"
)

// Cache backend names accepted in [cache].
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the root configuration.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Partition PartitionConfig `toml:"partition"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
}

// LayoutConfig tunes the reactive layout layer.
type LayoutConfig struct {
	// Gutter is the inter-column spacing in pixels.
	Gutter float64 `toml:"gutter"`

	// DebounceMillis is the resize quiet period in milliseconds.
	DebounceMillis int `toml:"debounce_ms"`

	// RebalanceThreshold is the relative measured-height delta that
	// triggers a re-layout (0.15 means 15%).
	RebalanceThreshold float64 `toml:"rebalance_threshold"`

	// Breakpoints overrides the responsive column table. Entries must be
	// ordered from widest to narrowest.
	Breakpoints []BreakpointConfig `toml:"breakpoints"`
}

// BreakpointConfig is one row of the responsive column table.
type BreakpointConfig struct {
	MinWidth float64 `toml:"min_width"`
	Columns  int     `toml:"columns"`
}

// PartitionConfig tunes the balancing heuristic.
type PartitionConfig struct {
	TargetVariation float64 `toml:"target_variation"`
	MaxIterations   int     `toml:"max_iterations"`
	Randomize       bool    `toml:"randomize"`
	Seed            uint64  `toml:"seed"`
}

// CacheConfig selects and configures the pipeline cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none". Empty means "file".
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory (default: XDG cache dir).
	Dir string `toml:"dir"`

	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the layout service.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`
}

// StoreConfig configures the optional layout store.
type StoreConfig struct {
	// MongoURI enables the Mongo-backed store when set.
	MongoURI string `toml:"mongo_uri"`

	// Database is the Mongo database name.
	Database string `toml:"database"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Layout: LayoutConfig{
			Gutter:             12,
			DebounceMillis:     100,
			RebalanceThreshold: 0.15,
		},
		Partition: PartitionConfig{
			TargetVariation: 9.0,
			MaxIterations:   120,
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Database: "masonry",
		},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that TOML decoding can't.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return fmt.Errorf("unknown cache backend %q (must be file, redis, or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires redis_addr")
	}

	for i, bp := range c.Layout.Breakpoints {
		if bp.Columns < 1 {
			return fmt.Errorf("breakpoint %d: columns must be positive", i)
		}
		if i > 0 && bp.MinWidth >= c.Layout.Breakpoints[i-1].MinWidth {
			return fmt.Errorf("breakpoint %d: table must be ordered widest to narrowest", i)
		}
	}

	if c.Partition.TargetVariation < 0 {
		return fmt.Errorf("target_variation must be non-negative")
	}
	if c.Partition.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative")
	}
	return nil
}

// BreakpointTable converts the configured breakpoints to the layout
// package's representation. Returns nil (meaning the default table) when
// none are configured.
func (c Config) BreakpointTable() []layout.Breakpoint {
	if len(c.Layout.Breakpoints) == 0 {
		return nil
	}
	table := make([]layout.Breakpoint, len(c.Layout.Breakpoints))
	for i, bp := range c.Layout.Breakpoints {
		table[i] = layout.Breakpoint{MinWidth: bp.MinWidth, Columns: bp.Columns}
	}
	return table
}
