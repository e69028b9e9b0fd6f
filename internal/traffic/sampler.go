// Package traffic infers a live road speed for a route by sampling congestion
// overlay colors from externally supplied map tiles.
package traffic

import (
	"context"
	"image"
	"image/color"
	"log"
	"strings"

	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/spatial"
)

const (
	// SampleZoom is the fixed zoom level traffic overlays are sampled at
	SampleZoom = 15
	// sampleRadius gives a 15x15 pixel neighborhood around the target pixel
	sampleRadius = 7
	// maxCachedTiles bounds the in-session tile cache (FIFO eviction)
	maxCachedTiles = 20

	// Progressive search offsets when the exact point has no overlay:
	// one step along the travel direction, then two perpendicular ones to
	// catch parallel cross-streets.
	forwardSearchMeters       = 100
	perpendicularSearchMeters = 50
)

// Sampler estimates road speed from traffic tile imagery
type Sampler struct {
	provider TileProvider
	cache    *tileCache
	metrics  *metrics.Collector
}

// NewSampler creates a sampler over the given tile provider
func NewSampler(provider TileProvider, m *metrics.Collector) *Sampler {
	return &Sampler{
		provider: provider,
		cache:    newTileCache(maxCachedTiles),
		metrics:  m,
	}
}

// EstimateSpeed samples traffic along the route's path and returns the
// average inferred car speed in km/h. ok is false when no point yields
// overlay data; the caller treats that as "no data", never as an error.
func (s *Sampler) EstimateSpeed(ctx context.Context, route models.Route) (float64, models.TrafficLevel, bool) {
	points := orderForDestination(route.Path, route.Destination)
	if len(points) == 0 {
		return 0, models.TrafficNoData, false
	}

	// Two-point routes sample only the upstream endpoint; the far end sits
	// at the destination and would dilute the reading. The second point
	// still steers the nearby search.
	samplePoints := points
	if len(points) == 2 {
		samplePoints = points[:1]
	}

	var speeds []float64
	level := models.TrafficNoData

	for i, p := range samplePoints {
		lvl := s.classifyAt(ctx, p.Lat, p.Lon)
		speed, ok := SpeedForLevel(lvl)

		if !ok && i+1 < len(points) {
			lvl, speed, ok = s.searchNearby(ctx, p, points[i+1])
		}

		if ok {
			speeds = append(speeds, speed)
			if level == models.TrafficNoData {
				level = lvl
			}
			if s.metrics != nil {
				s.metrics.TrafficSamples.WithLabelValues(string(lvl)).Inc()
			}
		} else if s.metrics != nil {
			s.metrics.TrafficSamples.WithLabelValues(string(models.TrafficNoData)).Inc()
		}
	}

	if len(speeds) == 0 {
		log.Printf("traffic: no overlay data on any of %d points for route %s", len(samplePoints), route.Number)
		return 0, models.TrafficNoData, false
	}

	var sum float64
	for _, v := range speeds {
		sum += v
	}
	avg := sum / float64(len(speeds))
	log.Printf("traffic: route %s sampled %.1f km/h from %d/%d points", route.Number, avg, len(speeds), len(samplePoints))
	return avg, level, true
}

// searchNearby probes progressively around a no-data point: first along the
// bearing toward the next waypoint, then left and right of it.
func (s *Sampler) searchNearby(ctx context.Context, p, next models.Waypoint) (models.TrafficLevel, float64, bool) {
	bearing := spatial.Bearing(p.Lat, p.Lon, next.Lat, next.Lon)

	offsets := []struct {
		bearing float64
		meters  float64
	}{
		{bearing, forwardSearchMeters},
		{bearing + 90, perpendicularSearchMeters},
		{bearing - 90, perpendicularSearchMeters},
	}

	for _, off := range offsets {
		lat, lon := spatial.DestinationPoint(p.Lat, p.Lon, off.bearing, off.meters)
		lvl := s.classifyAt(ctx, lat, lon)
		if speed, ok := SpeedForLevel(lvl); ok {
			return lvl, speed, true
		}
	}
	return models.TrafficNoData, 0, false
}

// classifyAt samples the pixel neighborhood at a coordinate and classifies the
// first overlay-colored pixel it finds, falling back to the center pixel.
func (s *Sampler) classifyAt(ctx context.Context, lat, lon float64) models.TrafficLevel {
	pc := spatial.LatLonToPixel(lat, lon, SampleZoom)

	img := s.loadTile(ctx, pc.Tile.X, pc.Tile.Y)
	if img == nil {
		return models.TrafficNoData
	}

	for dx := -sampleRadius; dx <= sampleRadius; dx++ {
		for dy := -sampleRadius; dy <= sampleRadius; dy++ {
			px := clampPixel(pc.X + dx)
			py := clampPixel(pc.Y + dy)
			if lvl := Classify(pixelAt(img, px, py)); lvl != models.TrafficNoData {
				return lvl
			}
		}
	}

	return Classify(pixelAt(img, pc.X, pc.Y))
}

// loadTile fetches a tile through the session cache
func (s *Sampler) loadTile(ctx context.Context, x, y int) image.Image {
	if img, ok := s.cache.get(x, y, SampleZoom); ok {
		return img
	}

	img, err := s.provider.FetchTile(ctx, x, y, SampleZoom)
	if s.metrics != nil {
		s.metrics.TileFetches.Inc()
		if err != nil || img == nil {
			s.metrics.TileFetchErrors.Inc()
		}
	}
	if err != nil {
		log.Printf("traffic: tile %d/%d fetch error: %v", x, y, err)
		return nil
	}
	if img == nil {
		return nil
	}

	s.cache.put(x, y, SampleZoom, img)
	return img
}

// orderForDestination orders a two-point path so sampling starts at the
// endpoint upstream of the stated destination
func orderForDestination(path []models.Waypoint, dest string) []models.Waypoint {
	if len(path) != 2 || dest == "" {
		return path
	}
	if nameMatches(path[1].Name, dest) {
		return path
	}
	return []models.Waypoint{path[1], path[0]}
}

// nameMatches compares endpoint and destination names loosely
func nameMatches(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func clampPixel(v int) int {
	if v < 0 {
		return 0
	}
	if v > spatial.TileSize-1 {
		return spatial.TileSize - 1
	}
	return v
}

// pixelAt reads one pixel as non-premultiplied RGBA
func pixelAt(img image.Image, x, y int) RGBA {
	b := img.Bounds()
	c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
	return RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
