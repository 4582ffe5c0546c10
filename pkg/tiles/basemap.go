package tiles

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	_ "image/jpeg" // some providers serve JPEG tiles
	_ "image/png"
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/accimap/pkg/cache"
	"github.com/matzehuels/accimap/pkg/errors"
	"github.com/matzehuels/accimap/pkg/httputil"
)

// MaxTiles bounds the number of tiles one basemap may request. The zoom
// is lowered until the extent fits.
const MaxTiles = 64

// Fetcher downloads a URL, consulting a cache under key.
type Fetcher interface {
	GetBytes(ctx context.Context, key, url string) ([]byte, error)
}

// Basemap is a raster covering Extent (EPSG:3857).
type Basemap struct {
	Image       image.Image
	Extent      r2.Box
	Zoom        int
	Attribution string
}

// Client builds basemaps from one provider.
type Client struct {
	provider Provider
	fetcher  Fetcher
	zoom     int
	logger   *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithZoom fixes the zoom level instead of deriving it per extent.
func WithZoom(z int) Option { return func(c *Client) { c.zoom = z } }

// WithLogger sets the logger used for per-tile debug output.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient creates a Client for provider. Tiles are downloaded through
// fetcher, typically an [httputil.Client].
func NewClient(provider Provider, fetcher Fetcher, opts ...Option) (*Client, error) {
	if err := provider.Validate(); err != nil {
		return nil, err
	}
	c := &Client{provider: provider, fetcher: fetcher, logger: log.New(io.Discard)}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

var _ Fetcher = (*httputil.Client)(nil)

// Provider returns the client's tile provider.
func (c *Client) Provider() Provider { return c.provider }

// Fetch downloads and decodes one tile.
func (c *Client) Fetch(ctx context.Context, t Tile) (image.Image, error) {
	url := c.provider.TileURL(t)
	data, err := c.fetcher.GetBytes(ctx, cache.Key("tile", c.provider.Name, t.String()), url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode tile %s", t)
	}
	return img, nil
}

// Basemap stitches the tiles covering extent into one image. The returned
// extent is the union of the tile bounds and so contains the request.
// Tiles the provider does not have are left transparent.
func (c *Client) Basemap(ctx context.Context, extent r2.Box) (*Basemap, error) {
	if extent.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "basemap extent is empty")
	}

	z := c.zoom
	if z <= 0 {
		z = AutoZoom(extent, c.provider.MaxZoom)
	}
	z = clamp(z, 0, c.provider.MaxZoom)
	for Count(extent, z) > MaxTiles && z > 0 {
		z--
	}
	ts, cols := Cover(extent, z)
	rows := len(ts) / cols
	c.logger.Debug("fetching basemap", "provider", c.provider.Name, "zoom", z, "tiles", len(ts))

	var mosaic *image.NRGBA
	var size int
	for i, t := range ts {
		img, err := c.Fetch(ctx, t)
		if errors.Is(err, errors.ErrCodeNotFound) {
			c.logger.Warn("tile missing", "tile", t.String())
			continue
		}
		if err != nil {
			return nil, err
		}
		if mosaic == nil {
			size = img.Bounds().Dx()
			mosaic = image.NewNRGBA(image.Rect(0, 0, cols*size, rows*size))
		}
		at := image.Pt((i%cols)*size, (i/cols)*size)
		draw.Draw(mosaic, image.Rectangle{Min: at, Max: at.Add(image.Pt(size, size))}, img, img.Bounds().Min, draw.Src)
	}
	if mosaic == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no tiles available at zoom %d", z)
	}

	bounds := ts[0].Bounds()
	for _, t := range ts[1:] {
		bounds = bounds.Union(t.Bounds())
	}
	return &Basemap{Image: mosaic, Extent: bounds, Zoom: z, Attribution: c.provider.Attribution}, nil
}
