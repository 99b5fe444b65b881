// Package config loads the gpucache CLI configuration from a JSON file that
// may contain comments and trailing commas.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/tailscale/hujson"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "gpucache.json"

var (
	ErrFileNotFound = errors.New("config file not found")
	ErrInvalid      = errors.New("invalid config")
)

var (
	Providers = []string{"file", "lru", "bigcache", "ristretto", "redis"}
	Codecs    = []string{"cbor", "msgpack", "json"}
)

type Config struct {
	CacheDir  string   `json:"cache_dir"`
	Namespace string   `json:"namespace,omitempty"`
	Provider  string   `json:"provider"`
	RedisAddr string   `json:"redis_addr,omitempty"`
	LRUSize   int      `json:"lru_size,omitempty"`
	Codec     string   `json:"codec"`
	BlobTTL   Duration `json:"blob_ttl,omitempty"`
	Validate  bool     `json:"validate"`
	Debug     bool     `json:"debug,omitempty"`

	// Source is the file the config was read from, empty for defaults only.
	Source string `json:"-"`
}

// Duration reads "90s"-style strings.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(time.Duration(d).String()) }

// Default returns the configuration used when no file sets a field.
func Default() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		CacheDir: filepath.Join(dir, "gpucache"),
		Provider: "file",
		LRUSize:  1024,
		Codec:    "cbor",
		Validate: true,
	}
}

// Load applies the file at path over Default. An empty path reads FileName
// from workDir if it exists; an explicit path must exist.
func Load(workDir, path string) (Config, error) {
	cfg := Default()
	mustExist := path != ""
	if path == "" {
		path = FileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, cfg.Check()
		}
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Config{}, err
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}
	cfg.Source = path
	if !filepath.IsAbs(cfg.CacheDir) {
		cfg.CacheDir = filepath.Join(filepath.Dir(path), cfg.CacheDir)
	}
	return cfg, cfg.Check()
}

// Parse decodes JSONC data over cfg. Fields absent from data keep their
// values; unknown fields are errors.
func Parse(data []byte, cfg *Config) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func (c Config) Check() error {
	switch {
	case !slices.Contains(Providers, c.Provider):
		return fmt.Errorf("%w: provider %q (want one of %v)", ErrInvalid, c.Provider, Providers)
	case !slices.Contains(Codecs, c.Codec):
		return fmt.Errorf("%w: codec %q (want one of %v)", ErrInvalid, c.Codec, Codecs)
	case c.Provider == "file" && c.CacheDir == "":
		return fmt.Errorf("%w: file provider needs cache_dir", ErrInvalid)
	case c.Provider == "redis" && c.RedisAddr == "":
		return fmt.Errorf("%w: redis provider needs redis_addr", ErrInvalid)
	case c.Provider == "lru" && c.LRUSize <= 0:
		return fmt.Errorf("%w: lru_size must be positive", ErrInvalid)
	case c.BlobTTL < 0:
		return fmt.Errorf("%w: negative blob_ttl", ErrInvalid)
	}
	return nil
}
