// Command gpucache compiles WGSL shaders through a persistent blob cache and
// inspects the cache.
//
//	gpucache [global flags] compile [-o dir] file.wgsl...
//	gpucache [global flags] key file.wgsl...
//	gpucache [global flags] stats
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/unkn0wn-root/gpucache/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type globalFlags struct {
	configPath string
	cacheDir   string
	provider   string
	codec      string
	noValidate bool
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globalFlags
	fs := flag.NewFlagSet("gpucache", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&g.configPath, "config", "c", "", "config file (default ./"+config.FileName+" if present)")
	fs.StringVar(&g.cacheDir, "cache-dir", "", "blob directory for the file provider")
	fs.StringVar(&g.provider, "provider", "", "blob store: "+strings.Join(config.Providers, "|"))
	fs.StringVar(&g.codec, "codec", "", "module encoding: "+strings.Join(config.Codecs, "|"))
	fs.BoolVar(&g.noValidate, "no-validate", false, "skip IR validation when compiling")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout, fs)
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		printUsage(stderr, fs)
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return 2
	}

	cfg, err := loadConfig(g, fs)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, c := range commands() {
		if c.name != name {
			continue
		}
		if err := c.run(ctx, cfg, rest, stdout); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(stderr, "error: unknown command %q\n", name)
	printUsage(stderr, fs)
	return 2
}

// loadConfig layers explicitly set flags over the config file.
func loadConfig(g globalFlags, fs *flag.FlagSet) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(wd, g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if fs.Changed("cache-dir") {
		cfg.CacheDir = g.cacheDir
	}
	if fs.Changed("provider") {
		cfg.Provider = g.provider
	}
	if fs.Changed("codec") {
		cfg.Codec = g.codec
	}
	if g.noValidate {
		cfg.Validate = false
	}
	if g.verbose {
		cfg.Debug = true
	}
	return cfg, cfg.Check()
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: gpucache [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-24s %s\n", c.usage, c.short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
