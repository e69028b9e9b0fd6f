package traffic

import (
	"testing"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

func TestClassify_PaletteAnchors(t *testing.T) {
	cases := []struct {
		name string
		px   RGBA
		want models.TrafficLevel
	}{
		{"free flowing green", RGBA{99, 214, 104, 255}, models.TrafficGreen},
		{"dark green", RGBA{10, 90, 61, 255}, models.TrafficGreen},
		{"amber", RGBA{251, 192, 45, 255}, models.TrafficYellow},
		{"orange", RGBA{245, 124, 0, 255}, models.TrafficOrange},
		{"red", RGBA{244, 67, 54, 255}, models.TrafficRed},
		{"dark red", RGBA{139, 0, 0, 255}, models.TrafficRed},
	}
	for _, c := range cases {
		if got := Classify(c.px); got != c.want {
			t.Errorf("%s: Classify = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestClassify_NearAnchor(t *testing.T) {
	// Slightly off the green anchor, well inside the distance threshold
	if got := Classify(RGBA{90, 200, 110, 255}); got != models.TrafficGreen {
		t.Errorf("near-green pixel classified as %q", got)
	}
}

func TestClassify_FiltersNonOverlay(t *testing.T) {
	cases := []struct {
		name string
		px   RGBA
	}{
		{"transparent", RGBA{244, 67, 54, 80}},
		{"black label text", RGBA{10, 10, 10, 255}},
		{"white background", RGBA{250, 250, 250, 255}},
		{"plain road gray", RGBA{160, 160, 160, 255}},
		{"far from any anchor", RGBA{60, 60, 255, 255}},
	}
	for _, c := range cases {
		if got := Classify(c.px); got != models.TrafficNoData {
			t.Errorf("%s: Classify = %q, want no-data", c.name, got)
		}
	}
}

func TestSpeedForLevel(t *testing.T) {
	cases := []struct {
		level models.TrafficLevel
		speed float64
		ok    bool
	}{
		{models.TrafficGreen, 40, true},
		{models.TrafficYellow, 25, true},
		{models.TrafficOrange, 15, true},
		{models.TrafficRed, 8, true},
		{models.TrafficNoData, 0, false},
	}
	for _, c := range cases {
		speed, ok := SpeedForLevel(c.level)
		if speed != c.speed || ok != c.ok {
			t.Errorf("SpeedForLevel(%q) = %v/%v, want %v/%v", c.level, speed, ok, c.speed, c.ok)
		}
	}
}
