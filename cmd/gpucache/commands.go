package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/internal/config"
	"github.com/unkn0wn-root/gpucache/provider/file"
	"github.com/unkn0wn-root/gpucache/shader"
)

var errNoFiles = errors.New("no input files")

type command struct {
	name, usage, short string
	run                func(ctx context.Context, cfg config.Config, args []string, out io.Writer) error
}

func commands() []command {
	return []command{
		{"compile", "compile [-o dir] file...", "compile WGSL to SPIR-V through the cache", runCompile},
		{"key", "key file...", "print the cache key of each file", runKey},
		{"stats", "stats", "summarize the file provider's blob directory", runStats},
	}
}

func shaderOptions(cfg config.Config, path string) []shader.Option {
	opts := []shader.Option{shader.WithLabel(filepath.Base(path))}
	if !cfg.Validate {
		opts = append(opts, shader.WithoutValidation())
	}
	return opts
}

func runCompile(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	outDir := fs.StringP("out", "o", "", "write <name>.spv files to this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errNoFiles
	}

	e, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	var errs []error
	for _, path := range fs.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		opts := append(shaderOptions(cfg, path), shader.WithCodec(e.codec))
		res, err := shader.Compile(ctx, e.dev, string(src), opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		status := "hit"
		if !res.IsCached() {
			status = "miss"
			if err := res.EnsureStored(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
		}
		m := res.Acquire()
		fmt.Fprintf(out, "%s %s %s %d\n", status, res.CacheKey().Short(), path, len(m.SPIRV))

		if *outDir != "" {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".spv"
			if err := atomic.WriteFile(filepath.Join(*outDir, name), bytes.NewReader(m.SPIRV)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func runKey(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errNoFiles
	}
	dev, err := gpucache.New(gpucache.Options{
		Adapter: offlineAdapter,
		Descriptor: gpucache.DeviceDescriptor{
			NextInChain: &gpucache.CacheDeviceDescriptor{IsolationKey: cfg.Namespace},
		},
		Disabled: true,
	})
	if err != nil {
		return err
	}
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		k := gpucache.CreateCacheKey(dev, shader.NewRequest(string(src), shaderOptions(cfg, path)...))
		fmt.Fprintf(out, "%s %s\n", k, path)
	}
	return nil
}

func runStats(_ context.Context, cfg config.Config, _ []string, out io.Writer) error {
	if cfg.Provider != "file" {
		return fmt.Errorf("stats needs the file provider, have %q", cfg.Provider)
	}
	p, err := file.New(cfg.CacheDir)
	if err != nil {
		return err
	}
	u, err := p.Usage()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "dir      %s\nentries  %d\nbytes    %d\nexpired  %d\n", p.Dir(), u.Entries, u.Bytes, u.Expired)
	return nil
}
