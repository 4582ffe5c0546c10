// Package cli implements the accimap command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/accimap/internal/config"
	"github.com/matzehuels/accimap/pkg/buildinfo"
	"github.com/matzehuels/accimap/pkg/cache"
	"github.com/matzehuels/accimap/pkg/httputil"
	"github.com/matzehuels/accimap/pkg/observability"
	"github.com/matzehuels/accimap/pkg/report"
	"github.com/matzehuels/accimap/pkg/tiles"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "accimap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Viewer displays figures. Nil selects the browser viewer.
	Viewer report.Viewer

	flags globalFlags
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	input   string
	config  string
	noShow  bool
	noCache bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes pipeline,
// cache and HTTP events to the log.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand it renders both figures and shows them.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Accimap maps Czech traffic accidents",
		Long: `Accimap loads the Czech police accident table, places every accident on the
national grid and renders two maps over an OpenStreetMap background:
wildlife accidents in South Moravia per year (geo1.png) and clusters of
alcohol-related accidents (geo2.png).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAll(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.input, "input", "", "accident table (.csv or .csv.gz, default "+report.DefaultInput+")")
	pf.StringVar(&c.flags.config, "config", "", "TOML configuration file")
	pf.BoolVar(&c.flags.noShow, "no-show", false, "never open figures for viewing")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "download tiles without caching")

	root.AddCommand(c.regionalCommand())
	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment Factory
// =============================================================================

// env is everything a report command needs, built from config and flags.
type env struct {
	cfg   config.Config
	rc    *report.Context
	cache cache.Cache
}

func (e *env) Close() error { return e.cache.Close() }

// newEnv loads the configuration, applies global flags and wires the tile
// client. show attaches a viewer unless --no-show is set.
func (c *CLI) newEnv(ctx context.Context, show bool) (*env, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(c.flags.config)
	if err != nil {
		return nil, err
	}
	if c.flags.input != "" {
		cfg.Input = c.flags.input
	}

	store, err := newCache(ctx, cfg.Basemap.Cache, c.flags.noCache)
	if err != nil {
		return nil, err
	}

	rc := &report.Context{
		Logger:  logger,
		Width:   vg.Length(cfg.Figure.Width) * vg.Inch,
		Height:  vg.Length(cfg.Figure.Height) * vg.Inch,
		DPI:     cfg.Figure.DPI,
		Padding: cfg.Figure.Padding,
	}
	if !cfg.Basemap.Disabled {
		headers := map[string]string{"User-Agent": cfg.Basemap.UserAgent}
		fetcher := httputil.NewClient(store, cfg.Basemap.CacheTTL.Duration, headers).
			WithRetry(cfg.Basemap.Retries, time.Second)
		tc, err := tiles.NewClient(cfg.Provider(), fetcher,
			tiles.WithZoom(cfg.Basemap.Zoom),
			tiles.WithLogger(logger))
		if err != nil {
			store.Close()
			return nil, err
		}
		rc.Basemap = report.TileSource{Client: tc}
	}
	if show && !c.flags.noShow {
		rc.Viewer = c.Viewer
		if rc.Viewer == nil {
			rc.Viewer = newBrowserViewer(logger)
		}
	}
	return &env{cfg: cfg, rc: rc, cache: store}, nil
}

// newCache selects the tile cache backend. A file cache that cannot be
// created degrades to no caching.
func newCache(ctx context.Context, backend string, noCache bool) (cache.Cache, error) {
	if noCache || backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if config.IsRedisURL(backend) {
		return cache.NewRedisCache(ctx, backend)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		loggerFromContext(ctx).Warn("tile cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/accimap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
