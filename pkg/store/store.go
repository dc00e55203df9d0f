package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrClosed = errors.New("store: closed")

// Store loads and saves one whole document.
type Store interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}

// Describer is implemented by stores that can name their location for
// diagnostics.
type Describer interface {
	Describe() string
}

// Describe returns a human readable location for s.
func Describe(s Store) string {
	if d, ok := s.(Describer); ok {
		return d.Describe()
	}
	return fmt.Sprintf("%T", s)
}

// Close releases resources held by s when it implements io.Closer.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver string `mapstructure:"driver" json:"driver" yaml:"driver"`
	// Path is the file for the file, bolt and sqlite drivers.
	Path string `mapstructure:"path" json:"path" yaml:"path"`
	// Key names the document inside bolt, sqlite and redis.
	Key    string `mapstructure:"key" json:"key" yaml:"key"`
	Bucket string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
	Table  string `mapstructure:"table" json:"table" yaml:"table"`

	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db" yaml:"redis_db"`
}

func (c Config) key() string {
	if strings.TrimSpace(c.Key) == "" {
		return "prefs"
	}
	return c.Key
}

// Open constructs the backend named by cfg.Driver. Callers should release it
// with Close.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: file driver requires a path")
		}
		return NewFileStore(cfg.Path), nil
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverBolt:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: bolt driver requires a path")
		}
		return OpenBoltStore(cfg.Path, cfg.Bucket, cfg.key())
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: sqlite driver requires a path")
		}
		return OpenSQLiteStore(ctx, cfg.Path, cfg.Table, cfg.key())
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("store: redis driver requires an address")
		}
		return DialRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.key())
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
