package traffic

import (
	"math"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

// RGBA is one sampled pixel. Alpha at or below alphaVisible means the traffic
// overlay is absent at that pixel.
type RGBA struct {
	R, G, B, A uint8
}

const (
	// alphaVisible is the minimum alpha for a pixel to count as overlay
	alphaVisible = 100
	// maxColorDistance is the Euclidean RGB threshold for a palette match
	maxColorDistance = 100.0
)

type paletteColor struct {
	r, g, b float64
}

// Canonical traffic-overlay palette anchors per congestion level
var palette = map[models.TrafficLevel][]paletteColor{
	models.TrafficGreen: {
		{99, 214, 104},
		{76, 175, 80},
		{10, 90, 61},
		{102, 187, 106},
	},
	models.TrafficYellow: {
		{251, 192, 45},
		{255, 235, 59},
		{197, 160, 53},
		{255, 193, 7},
	},
	models.TrafficOrange: {
		{245, 124, 0},
		{255, 152, 0},
		{255, 140, 0},
		{239, 108, 0},
	},
	models.TrafficRed: {
		{244, 67, 54},
		{211, 47, 47},
		{229, 57, 53},
		{198, 40, 40},
		{183, 28, 28},
		{139, 0, 0},
	},
}

// levelSpeeds maps a congestion level to the inferred free-road car speed
var levelSpeeds = map[models.TrafficLevel]float64{
	models.TrafficGreen:  40,
	models.TrafficYellow: 25,
	models.TrafficOrange: 15,
	models.TrafficRed:    8,
}

// Classify maps a pixel to a congestion level by nearest palette anchor.
// Text, background and plain-road colors are filtered out first.
func Classify(c RGBA) models.TrafficLevel {
	if c.A <= alphaVisible {
		return models.TrafficNoData
	}

	r, g, b := float64(c.R), float64(c.G), float64(c.B)

	// Black: text and labels
	if r < 20 && g < 20 && b < 20 {
		return models.TrafficNoData
	}
	// White / light gray: no overlay
	if r > 235 && g > 235 && b > 235 {
		return models.TrafficNoData
	}
	// Medium gray: roads without traffic data
	if r > 140 && r < 180 && g > 140 && g < 180 && b > 140 && b < 180 &&
		math.Abs(r-g) < 20 && math.Abs(g-b) < 20 {
		return models.TrafficNoData
	}

	closest := models.TrafficNoData
	minDist := math.Inf(1)
	for level, anchors := range palette {
		for _, a := range anchors {
			d := math.Sqrt((r-a.r)*(r-a.r) + (g-a.g)*(g-a.g) + (b-a.b)*(b-a.b))
			if d < minDist && d < maxColorDistance {
				minDist = d
				closest = level
			}
		}
	}
	return closest
}

// SpeedForLevel converts a congestion level to km/h. ok is false for no-data.
func SpeedForLevel(level models.TrafficLevel) (float64, bool) {
	speed, ok := levelSpeeds[level]
	return speed, ok
}
