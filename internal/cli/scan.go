package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/jarscan"
	"github.com/meigma/jarscan/cache/disk"
	jarhttp "github.com/meigma/jarscan/http"
	"github.com/meigma/jarscan/internal/config"
)

// scanFlags are the flags shared by the jar and war commands.
type scanFlags struct {
	format      string
	digest      string
	classLoader string
	cache       bool
	cacheDir    string

	// war only
	workers int
	timeout time.Duration
	policy  string
}

func (f *scanFlags) bind(cmd *cobra.Command, war bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", formatText, "output format: text, json or oci")
	flags.StringVar(&f.digest, "digest", "", "digest algorithm: sha256 or blake3")
	flags.StringVar(&f.classLoader, "class-loader", "", "initial class loader label")
	flags.BoolVar(&f.cache, "cache", false, "cache decoded archive contents")
	flags.StringVar(&f.cacheDir, "cache-dir", "", "cache directory")
	if war {
		flags.IntVarP(&f.workers, "workers", "w", 0, "libraries loaded in parallel (default: number of CPUs)")
		flags.DurationVar(&f.timeout, "timeout", 0, "wait limit for library loads")
		flags.StringVar(&f.policy, "policy", "", "library failure policy: lenient or strict")
	}
}

// apply overrides cfg with the flags that were set on cmd.
func (f *scanFlags) apply(cmd *cobra.Command, cfg config.Config) (*config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("digest") {
		cfg.Digest = f.digest
	}
	if flags.Changed("class-loader") {
		cfg.ClassLoader = f.classLoader
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = f.cache
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = f.cacheDir
		cfg.Cache.Enabled = true
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if flags.Changed("policy") {
		cfg.Policy = f.policy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !validFormat(f.format) {
		return nil, fmt.Errorf("unknown format %q", f.format)
	}
	return &cfg, nil
}

// jarLoader builds a JarLoader from cfg.
func (c *CLI) jarLoader(cfg *config.Config) (*jarscan.JarLoader, error) {
	opts := []jarscan.JarOption{
		jarscan.WithClassDecoder(jarscan.NewClassDecoder(cfg.ClassLoader)),
		jarscan.WithDigester(cfg.Digester()),
		jarscan.WithMaxEntrySize(cfg.MaxEntrySize),
		jarscan.WithLogger(c.slogger()),
	}
	if cfg.Cache.Enabled {
		dc, err := openCache(cfg)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using inventory cache", "dir", dc.Dir())
		opts = append(opts, jarscan.WithCache(dc))
	}
	return jarscan.NewJarLoader(opts...), nil
}

// openCache opens the configured disk cache.
func openCache(cfg *config.Config) (*disk.Cache, error) {
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	dc, err := disk.New(dir, disk.WithMaxBytes(cfg.Cache.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return dc, nil
}

// source resolves a command argument to an archive source. Arguments that
// look like http or https URLs are fetched; everything else is a path.
func source(ctx context.Context, arg string) (jarscan.Source, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return jarhttp.NewSource(arg, jarhttp.WithContext(ctx))
	}
	return jarscan.FileSource(arg), nil
}
