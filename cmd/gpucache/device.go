package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/codec"
	asynchook "github.com/unkn0wn-root/gpucache/hooks/async"
	"github.com/unkn0wn-root/gpucache/internal/config"
	zaplog "github.com/unkn0wn-root/gpucache/log/zap"
	pr "github.com/unkn0wn-root/gpucache/provider"
	"github.com/unkn0wn-root/gpucache/provider/bigcache"
	"github.com/unkn0wn-root/gpucache/provider/file"
	"github.com/unkn0wn-root/gpucache/provider/lru"
	"github.com/unkn0wn-root/gpucache/provider/redis"
	"github.com/unkn0wn-root/gpucache/provider/ristretto"
	"github.com/unkn0wn-root/gpucache/shader"
	"github.com/unkn0wn-root/gpucache/sloghooks"
)

// offlineAdapter stands in for a real adapter: the CLI only produces SPIR-V,
// which does not depend on the GPU.
var offlineAdapter = gputypes.AdapterInfo{
	Vendor:  "gpucache",
	Backend: gputypes.BackendVulkan,
}

type env struct {
	dev   *gpucache.Device
	codec codec.Codec[shader.Module]
	log   *zap.Logger
	hooks *asynchook.Hooks
}

func openEnv(ctx context.Context, cfg config.Config) (*env, error) {
	zl, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	p, err := openProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	raw := sloghooks.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), sloghooks.Options{})
	hooks := asynchook.New(raw, 1, 256)

	dev, err := gpucache.New(gpucache.Options{
		Adapter: offlineAdapter,
		Descriptor: gpucache.DeviceDescriptor{
			NextInChain: &gpucache.CacheDeviceDescriptor{IsolationKey: cfg.Namespace},
		},
		Provider:  p,
		Namespace: cfg.Namespace,
		BlobTTL:   time.Duration(cfg.BlobTTL),
		Logger:    zaplog.New(zl),
		Hooks:     hooks,
	})
	if err != nil {
		hooks.Close()
		_ = p.Close(ctx)
		return nil, err
	}

	var cd codec.Codec[shader.Module]
	switch cfg.Codec {
	case "msgpack":
		cd = shader.WithCheck(codec.Msgpack[shader.Module]{})
	case "json":
		cd = shader.WithCheck(codec.JSON[shader.Module]{})
	default:
		cd = shader.DefaultCodec()
	}
	return &env{dev: dev, codec: cd, log: zl, hooks: hooks}, nil
}

func (e *env) Close(ctx context.Context) error {
	err := e.dev.Close(ctx)
	e.hooks.Close()
	_ = e.log.Sync()
	return err
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return c.Build()
}

func openProvider(ctx context.Context, cfg config.Config) (pr.Provider, error) {
	switch cfg.Provider {
	case "file":
		return file.New(cfg.CacheDir)
	case "lru":
		return lru.New(cfg.LRUSize, nil)
	case "bigcache":
		life := time.Duration(cfg.BlobTTL)
		if life == 0 {
			life = 24 * time.Hour
		}
		return bigcache.New(ctx, bigcache.Config{LifeWindow: life})
	case "ristretto":
		return ristretto.New(ristretto.Config{
			NumCounters: 100_000,
			MaxCost:     256 << 20,
			BufferItems: 64,
			SyncWrites:  true,
		})
	case "redis":
		r, err := redis.New(redis.Config{
			Client:      goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}),
			CloseClient: true,
		})
		if err != nil {
			return nil, err
		}
		if err := r.Ping(ctx); err != nil {
			_ = r.Close(ctx)
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
