// Package config loads the optional accimap TOML configuration.
//
// Every key has a default, so an empty or absent file reproduces the
// standard report: wildlife accidents in South Moravia for 2021 and 2022,
// and twelve clusters of alcohol-related accidents.
//
//	input = "accidents.csv.gz"
//
//	[regional]
//	region = "JHM"
//	years = [2021, 2022]
//
//	[basemap]
//	cache = "redis://localhost:6379/0"
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/render"
	"github.com/matzehuels/accimap/pkg/report"
	"github.com/matzehuels/accimap/pkg/tiles"
)

// Cache backends accepted by [Basemap.Cache]. Any value starting with
// redis:// or rediss:// selects Redis.
const (
	CacheFile = "file"
	CacheNone = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Input    string   `toml:"input"`
	Regional Regional `toml:"regional"`
	Cluster  Cluster  `toml:"cluster"`
	Basemap  Basemap  `toml:"basemap"`
	Figure   Figure   `toml:"figure"`
}

// Regional configures the per-year figure.
type Regional struct {
	Region string `toml:"region"`
	Cause  int    `toml:"cause"`
	Years  []int  `toml:"years"`
	Output string `toml:"output"`
	Title  string `toml:"title"` // {region} and {year} are substituted
}

// Cluster configures the cluster figure.
type Cluster struct {
	Region     string `toml:"region"`
	MinAlcohol int    `toml:"min_alcohol"`
	Clusters   int    `toml:"clusters"`
	Output     string `toml:"output"`
	Title      string `toml:"title"`
}

// Basemap configures the tile background.
type Basemap struct {
	URL         string   `toml:"url"`
	Attribution string   `toml:"attribution"`
	UserAgent   string   `toml:"user_agent"`
	MaxZoom     int      `toml:"max_zoom"`
	Zoom        int      `toml:"zoom"` // 0 picks the zoom from the extent
	CacheTTL    Duration `toml:"cache_ttl"`
	Cache       string   `toml:"cache"`
	Retries     int      `toml:"retries"` // attempts per tile
	Disabled    bool     `toml:"disabled"`
}

// Figure sets the output size in inches, the raster resolution and the
// fraction of the data extent added around each panel.
type Figure struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	DPI     int     `toml:"dpi"`
	Padding float64 `toml:"padding"`
}

// Duration is a time.Duration written as a Go duration string ("72h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	regional := report.DefaultRegionalOptions()
	cluster := report.DefaultClusterOptions()
	return Config{
		Input: report.DefaultInput,
		Regional: Regional{
			Region: regional.Region,
			Cause:  regional.Cause,
			Years:  regional.Years,
			Output: regional.Path,
			Title:  regional.TitleTemplate,
		},
		Cluster: Cluster{
			Region:     cluster.Region,
			MinAlcohol: cluster.MinAlcohol,
			Clusters:   cluster.Clusters,
			Output:     cluster.Path,
			Title:      cluster.Title,
		},
		Basemap: Basemap{
			URL:         tiles.OpenStreetMap.URL,
			Attribution: tiles.OpenStreetMap.Attribution,
			UserAgent:   "accimap (+https://github.com/matzehuels/accimap)",
			MaxZoom:     tiles.OpenStreetMap.MaxZoom,
			CacheTTL:    Duration{30 * 24 * time.Hour},
			Cache:       CacheFile,
			Retries:     3,
		},
		Figure: Figure{Width: 15, Height: 10, DPI: 100, Padding: render.DefaultPadding},
	}
}

// Load reads the file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML into cfg, keeping fields the document leaves out.
// Unknown keys are an error.
func Decode(data string, cfg *Config) error {
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Input == "":
		return errors.New(errors.ErrCodeInvalidConfig, "input cannot be empty")
	case len(c.Regional.Years) == 0:
		return errors.New(errors.ErrCodeInvalidConfig, "regional.years cannot be empty")
	case c.Cluster.Clusters < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "cluster.clusters must be at least 1, got %d", c.Cluster.Clusters)
	case c.Figure.Width <= 0 || c.Figure.Height <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "figure size must be positive, got %gx%g", c.Figure.Width, c.Figure.Height)
	case c.Figure.DPI <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "figure.dpi must be positive, got %d", c.Figure.DPI)
	case c.Figure.Padding <= 0 || c.Figure.Padding >= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "figure.padding must be in (0, 1), got %g", c.Figure.Padding)
	case !strings.Contains(c.Regional.Title, "{year}"):
		return errors.New(errors.ErrCodeInvalidConfig, "regional.title %q has no {year} placeholder", c.Regional.Title)
	case c.Basemap.Retries < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "basemap.retries must be at least 1, got %d", c.Basemap.Retries)
	case c.Basemap.Zoom < 0 || c.Basemap.Zoom > c.Basemap.MaxZoom:
		return errors.New(errors.ErrCodeInvalidConfig, "basemap.zoom %d outside [0, %d]", c.Basemap.Zoom, c.Basemap.MaxZoom)
	}
	if !c.Basemap.Disabled {
		if err := c.Provider().Validate(); err != nil {
			return err
		}
	}
	switch b := c.Basemap.Cache; {
	case b == CacheFile, b == CacheNone, IsRedisURL(b):
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "basemap.cache must be %q, %q or a redis:// URL, got %q", CacheFile, CacheNone, b)
	}
	return nil
}

// IsRedisURL reports whether s selects the Redis tile cache.
func IsRedisURL(s string) bool {
	return strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

// Provider returns the configured tile provider.
func (c *Config) Provider() tiles.Provider {
	name := tiles.OpenStreetMap.Name
	if c.Basemap.URL != tiles.OpenStreetMap.URL {
		name = "custom"
	}
	return tiles.Provider{
		Name:        name,
		URL:         c.Basemap.URL,
		MaxZoom:     c.Basemap.MaxZoom,
		Attribution: c.Basemap.Attribution,
	}
}

// RunOptions converts the configuration into report options. Output
// display is left off; the caller decides.
func (c *Config) RunOptions() report.RunOptions {
	return report.RunOptions{
		Input:    c.Input,
		Regional: c.RegionalOptions(),
		Cluster:  c.ClusterOptions(),
	}
}

// RegionalOptions returns the per-year figure options.
func (c *Config) RegionalOptions() report.RegionalOptions {
	return report.RegionalOptions{
		Region:        c.Regional.Region,
		Cause:         c.Regional.Cause,
		Years:         c.Regional.Years,
		TitleTemplate: c.Regional.Title,
		Output:        report.Output{Path: c.Regional.Output},
	}
}

// ClusterOptions returns the cluster figure options.
func (c *Config) ClusterOptions() report.ClusterOptions {
	return report.ClusterOptions{
		Region:     c.Cluster.Region,
		MinAlcohol: c.Cluster.MinAlcohol,
		Clusters:   c.Cluster.Clusters,
		Title:      c.Cluster.Title,
		Output:     report.Output{Path: c.Cluster.Output},
	}
}
