package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadJSONC(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `{
		// shared cache for CI
		"provider": "redis",
		"redis_addr": "localhost:6379",
		"codec": "msgpack",
		"blob_ttl": "24h",
		"cache_dir": "blobs", // relative to the file
	}`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Provider = "redis"
	want.RedisAddr = "localhost:6379"
	want.Codec = "msgpack"
	want.BlobTTL = Duration(24 * time.Hour)
	want.CacheDir = filepath.Join(dir, "blobs")
	want.Source = filepath.Join(dir, FileName)
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestExplicitPathMustExist(t *testing.T) {
	_, err := Load(t.TempDir(), "missing.json")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestInvalidConfigs(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":        `{"provider": }`,
		"unknown field": `{"providr": "lru"}`,
		"provider":      `{"provider": "memcached"}`,
		"codec":         `{"codec": "gob"}`,
		"redis addr":    `{"provider": "redis"}`,
		"lru size":      `{"provider": "lru", "lru_size": 0}`,
		"ttl":           `{"blob_ttl": "soon"}`,
	} {
		dir := t.TempDir()
		p := writeFile(t, dir, "c.json", body)
		if _, err := Load(dir, p); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: err = %v, want ErrInvalid", name, err)
		}
	}
}
