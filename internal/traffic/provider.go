package traffic

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TileProvider fetches one map tile. Implementations return (nil, nil) for
// tiles that cannot be loaded; a missing tile is never an error condition for
// the sampler.
type TileProvider interface {
	FetchTile(ctx context.Context, x, y, zoom int) (image.Image, error)
}

// HTTPTileProvider loads tiles from a URL template with {x}/{y}/{z}
// placeholders
type HTTPTileProvider struct {
	urlTemplate string
	client      *http.Client
}

// NewHTTPTileProvider creates a provider for the given template
func NewHTTPTileProvider(urlTemplate string) *HTTPTileProvider {
	return &HTTPTileProvider{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchTile downloads and decodes one tile. Failures are logged and returned
// as a nil image so the caller degrades to no-data.
func (p *HTTPTileProvider) FetchTile(ctx context.Context, x, y, zoom int) (image.Image, error) {
	url := strings.NewReplacer(
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{z}", strconv.Itoa(zoom),
	).Replace(p.urlTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tile request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("traffic: tile fetch failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("traffic: tile fetch %d/%d@%d returned %d", x, y, zoom, resp.StatusCode)
		return nil, nil
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		log.Printf("traffic: tile decode failed: %v", err)
		return nil, nil
	}
	return img, nil
}

// tileCache keeps recently fetched tiles with FIFO eviction
type tileCache struct {
	mu    sync.Mutex
	max   int
	order []string
	tiles map[string]image.Image
}

func newTileCache(max int) *tileCache {
	return &tileCache{max: max, tiles: make(map[string]image.Image)}
}

func (c *tileCache) key(x, y, zoom int) string {
	return fmt.Sprintf("%d_%d_%d", zoom, x, y)
}

func (c *tileCache) get(x, y, zoom int) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.tiles[c.key(x, y, zoom)]
	return img, ok
}

func (c *tileCache) put(x, y, zoom int, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(x, y, zoom)
	if _, exists := c.tiles[k]; exists {
		return
	}
	c.tiles[k] = img
	c.order = append(c.order, k)
	for len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.tiles, oldest)
	}
}
