package traffic

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/spatial"
)

// fakeProvider serves one synthetic tile for every coordinate
type fakeProvider struct {
	img     image.Image
	fetches int
}

func (f *fakeProvider) FetchTile(_ context.Context, _, _, _ int) (image.Image, error) {
	f.fetches++
	return f.img, nil
}

// uniformTile builds a 256x256 tile filled with a single color
func uniformTile(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var testRoute = models.Route{
	Number:      "31",
	Destination: "Hydra",
	Path: []models.Waypoint{
		{Lat: 36.7639, Lon: 3.0531, Name: "Place Audin"},
		{Lat: 36.7450, Lon: 3.0450, Name: "Hydra"},
	},
}

func TestEstimateSpeed_GreenOverlay(t *testing.T) {
	p := &fakeProvider{img: uniformTile(color.NRGBA{99, 214, 104, 255})}
	s := NewSampler(p, nil)

	speed, level, ok := s.EstimateSpeed(context.Background(), testRoute)
	if !ok {
		t.Fatal("expected overlay data on a green tile")
	}
	if speed != 40 {
		t.Errorf("speed = %v, want 40", speed)
	}
	if level != models.TrafficGreen {
		t.Errorf("level = %q, want green", level)
	}
}

func TestEstimateSpeed_RedOverlay(t *testing.T) {
	p := &fakeProvider{img: uniformTile(color.NRGBA{244, 67, 54, 255})}
	s := NewSampler(p, nil)

	speed, level, ok := s.EstimateSpeed(context.Background(), testRoute)
	if !ok || level != models.TrafficRed || speed != 8 {
		t.Errorf("red tile gave %v/%q/%v, want 8/red/true", speed, level, ok)
	}
}

func TestEstimateSpeed_NoOverlay(t *testing.T) {
	// A transparent tile carries no traffic overlay anywhere
	p := &fakeProvider{img: uniformTile(color.NRGBA{0, 0, 0, 0})}
	s := NewSampler(p, nil)

	_, level, ok := s.EstimateSpeed(context.Background(), testRoute)
	if ok {
		t.Error("transparent tile should yield no data")
	}
	if level != models.TrafficNoData {
		t.Errorf("level = %q, want no-data", level)
	}
}

func TestEstimateSpeed_UnfetchableTiles(t *testing.T) {
	p := &fakeProvider{img: nil}
	s := NewSampler(p, nil)

	if _, _, ok := s.EstimateSpeed(context.Background(), testRoute); ok {
		t.Error("missing tiles should yield no data")
	}
}

func TestEstimateSpeed_EmptyPath(t *testing.T) {
	p := &fakeProvider{img: uniformTile(color.NRGBA{99, 214, 104, 255})}
	s := NewSampler(p, nil)

	route := models.Route{Number: "x"}
	if _, _, ok := s.EstimateSpeed(context.Background(), route); ok {
		t.Error("route without a path should yield no data")
	}
}

func TestSampler_TileCacheReuse(t *testing.T) {
	p := &fakeProvider{img: uniformTile(color.NRGBA{99, 214, 104, 255})}
	s := NewSampler(p, nil)

	ctx := context.Background()
	s.EstimateSpeed(ctx, testRoute)
	first := p.fetches

	s.EstimateSpeed(ctx, testRoute)
	if p.fetches != first {
		t.Errorf("second pass refetched tiles: %d -> %d", first, p.fetches)
	}
}

// tileMapProvider serves per-tile images with a shared fallback
type tileMapProvider struct {
	tiles map[spatial.TileCoord]image.Image
	def   image.Image
}

func (p *tileMapProvider) FetchTile(_ context.Context, x, y, zoom int) (image.Image, error) {
	if img, ok := p.tiles[spatial.TileCoord{X: x, Y: y, Zoom: zoom}]; ok {
		return img, nil
	}
	return p.def, nil
}

func TestEstimateSpeed_SamplesOnlyUpstreamEndpoint(t *testing.T) {
	start := testRoute.Path[0]
	end := testRoute.Path[1]

	startTile := spatial.LatLonToTile(start.Lat, start.Lon, SampleZoom)
	endTile := spatial.LatLonToTile(end.Lat, end.Lon, SampleZoom)
	if startTile == endTile {
		t.Fatal("test endpoints must fall on different tiles")
	}

	// Green at the boarding end, red everywhere else: only the upstream
	// endpoint may contribute
	p := &tileMapProvider{
		tiles: map[spatial.TileCoord]image.Image{
			startTile: uniformTile(color.NRGBA{99, 214, 104, 255}),
		},
		def: uniformTile(color.NRGBA{244, 67, 54, 255}),
	}
	s := NewSampler(p, nil)

	speed, level, ok := s.EstimateSpeed(context.Background(), testRoute)
	if !ok {
		t.Fatal("expected overlay data")
	}
	if speed != 40 || level != models.TrafficGreen {
		t.Errorf("speed/level = %v/%q, want 40/green from the upstream endpoint only", speed, level)
	}
}

func TestOrderForDestination(t *testing.T) {
	a := models.Waypoint{Name: "Place Audin"}
	b := models.Waypoint{Name: "Hydra"}

	// Already ordered toward the destination
	got := orderForDestination([]models.Waypoint{a, b}, "Hydra")
	if got[0].Name != "Place Audin" {
		t.Errorf("ordered path start = %q", got[0].Name)
	}

	// Reversed when the destination is the first endpoint
	got = orderForDestination([]models.Waypoint{b, a}, "Hydra")
	if got[0].Name != "Place Audin" {
		t.Errorf("reversed path start = %q", got[0].Name)
	}

	// Longer paths pass through untouched
	long := []models.Waypoint{a, b, a}
	got = orderForDestination(long, "Hydra")
	if len(got) != 3 || got[0].Name != "Place Audin" {
		t.Error("paths with more than two points should not be reordered")
	}
}

func TestTileCache_FIFOEviction(t *testing.T) {
	c := newTileCache(2)
	img := uniformTile(color.NRGBA{0, 0, 0, 255})

	c.put(1, 1, 15, img)
	c.put(2, 2, 15, img)
	c.put(3, 3, 15, img)

	if _, ok := c.get(1, 1, 15); ok {
		t.Error("oldest tile should have been evicted")
	}
	if _, ok := c.get(3, 3, 15); !ok {
		t.Error("newest tile should be cached")
	}
}
