// Package config loads user settings for the clustermap CLI and server.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults
//  2. $XDG_CONFIG_HOME/clustermap/config.toml (or ~/.config/clustermap/config.toml)
//  3. CLUSTERMAP_* environment variables
//
// Command-line flags are applied on top by the CLI. An example file:
//
//	[analysis]
//	server = "http://localhost:8000"
//	max_clusters = 20
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[log]
//	format = "json"
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/geometry"
)

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the full settings tree.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Layout   Layout   `toml:"layout"`
	Server   Server   `toml:"server"`
	Log      Log      `toml:"log"`
}

// Analysis configures the analysis service client.
type Analysis struct {
	Server             string   `toml:"server"`
	MaxClusters        int      `toml:"max_clusters"`
	DisableCheckpoints bool     `toml:"disable_checkpoints"`
	Timeout            Duration `toml:"timeout"`
}

// Cache configures response caching.
type Cache struct {
	Backend   string   `toml:"backend"` // file, redis or none
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// Store configures snapshot storage.
type Store struct {
	Backend  string `toml:"backend"` // file or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Layout configures footprint estimation.
type Layout struct {
	PaddingFactor float64 `toml:"padding_factor"`
}

// Server configures `clustermap serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Log configures CLI and server logging.
type Log struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text, json or logfmt
}

// Log formats.
const (
	LogText   = "text"
	LogJSON   = "json"
	LogLogfmt = "logfmt"
)

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Analysis: Analysis{Server: "http://localhost:8000", Timeout: Duration{10 * time.Minute}},
		Cache:    Cache{Backend: BackendFile, TTL: Duration{7 * 24 * time.Hour}},
		Store:    Store{Backend: BackendFile, Database: "clustermap"},
		Layout:   Layout{PaddingFactor: geometry.DefaultPaddingFactor},
		Server:   Server{Addr: ":8080"},
		Log:      Log{Level: "info", Format: LogText},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "clustermap", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "clustermap", "config.toml"), nil
}

// Load reads the default config file, if present, and applies environment
// overrides.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads path on top of the defaults. A missing file is not an error.
// Unknown keys are rejected so that typos surface.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if err == nil {
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Env variable names.
const (
	EnvServer      = "CLUSTERMAP_SERVER"
	EnvRedisAddr   = "CLUSTERMAP_REDIS_ADDR"
	EnvMongoURI    = "CLUSTERMAP_MONGO_URI"
	EnvMaxClusters = "CLUSTERMAP_MAX_CLUSTERS"
	EnvAddr        = "CLUSTERMAP_ADDR"
	EnvLogLevel    = "CLUSTERMAP_LOG_LEVEL"
	EnvLogFormat   = "CLUSTERMAP_LOG_FORMAT"
)

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServer); ok && v != "" {
		c.Analysis.Server = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = BackendRedis
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Store.MongoURI = v
		c.Store.Backend = BackendMongo
	}
	if v, ok := lookup(EnvMaxClusters); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", EnvMaxClusters)
		}
		c.Analysis.MaxClusters = n
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.Analysis.Server); err != nil {
		return err
	}
	if c.Analysis.MaxClusters < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "analysis.max_clusters must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if f := c.Layout.PaddingFactor; f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "layout.padding_factor must be a finite non-negative number")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", LogText, LogJSON, LogLogfmt:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown log format %q", c.Log.Format)
	}
	return nil
}

// MaxClustersPtr returns the configured cluster limit, or nil to let the
// service decide.
func (a Analysis) MaxClustersPtr() *int {
	if a.MaxClusters <= 0 {
		return nil
	}
	n := a.MaxClusters
	return &n
}

// Write encodes cfg as TOML to path, creating parent directories.
func Write(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
