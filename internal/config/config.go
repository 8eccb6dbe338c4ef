// Package config loads the TOML configuration shared by the
// svg2png commands.
//
// Every key is optional; absent keys keep the value of Default.
// Example:
//
//	[server]
//	addr = ":8080"
//	max_body_bytes = 2097152
//	read_timeout = "10s"
//
//	[render]
//	error_mode = "warn"
//	max_pixels = 16777216
//	compression = "best"
//	background = "#ffffff"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[log]
//	level = "debug"
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/benoitkugler/svg2png/svgpng"
	"github.com/benoitkugler/svg2png/svgraster"
)

// Duration is a time.Duration written as a string ("30s", "1h").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Server struct {
	Addr          string   `toml:"addr"`
	MaxBodyBytes  int64    `toml:"max_body_bytes"`
	ReadTimeout   Duration `toml:"read_timeout"`
	WriteTimeout  Duration `toml:"write_timeout"`
	ShutdownGrace Duration `toml:"shutdown_grace"`
	CacheControl  string   `toml:"cache_control"`
}

type Render struct {
	ErrorMode   string `toml:"error_mode"`
	MaxWidth    int    `toml:"max_width"`
	MaxHeight   int    `toml:"max_height"`
	MaxPixels   int64  `toml:"max_pixels"`
	Compression string `toml:"compression"`
	Background  string `toml:"background"` // empty for transparent
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Cache struct {
	// Backend is one of "none", "memory" or "redis".
	// When empty, redis is used if RedisAddr is set.
	Backend       string   `toml:"backend"`
	MaxEntries    int      `toml:"max_entries"` // memory backend only
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Server Server `toml:"server"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Log    Log    `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":8080",
			MaxBodyBytes:  4 << 20,
			ReadTimeout:   Duration(30 * time.Second),
			WriteTimeout:  Duration(60 * time.Second),
			ShutdownGrace: Duration(10 * time.Second),
			CacheControl:  "public, max-age=31536000",
		},
		Render: Render{
			ErrorMode:   svgicon.IgnoreErrorMode.String(),
			MaxWidth:    svgraster.DefaultLimits.MaxWidth,
			MaxHeight:   svgraster.DefaultLimits.MaxHeight,
			MaxPixels:   svgraster.DefaultLimits.MaxPixels,
			Compression: "default",
		},
		Cache: Cache{
			MaxEntries: 1024,
			Prefix:     "svg2png:",
			TTL:        Duration(24 * time.Hour),
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the file at `path` over the defaults.
// An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values which are not parsed by the TOML decoder itself.
func (c Config) Validate() error {
	if _, err := svgicon.ParseErrorMode(c.Render.ErrorMode); err != nil {
		return err
	}
	if _, err := svgpng.ParseCompression(c.Render.Compression); err != nil {
		return err
	}
	if c.Render.MaxWidth < 0 || c.Render.MaxHeight < 0 || c.Render.MaxPixels < 0 {
		return fmt.Errorf("render limits must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	switch c.Cache.BackendName() {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required by the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// BackendName resolves an empty Backend from RedisAddr.
func (c Cache) BackendName() string {
	if c.Backend != "" {
		return c.Backend
	}
	if c.RedisAddr != "" {
		return CacheRedis
	}
	return CacheNone
}

// Limits returns the render limits.
func (r Render) Limits() svgraster.Limits {
	return svgraster.Limits{MaxWidth: r.MaxWidth, MaxHeight: r.MaxHeight, MaxPixels: r.MaxPixels}
}

// LogLevel returns the configured level, defaulting to info.
func (l Log) LogLevel() log.Level {
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
