package models

import "time"

// Waypoint is a named point on a route path
type Waypoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// TrafficLevel classifies a sampled traffic-overlay color
type TrafficLevel string

// Traffic levels as read from the traffic overlay palette
const (
	TrafficGreen  TrafficLevel = "green"
	TrafficYellow TrafficLevel = "yellow"
	TrafficOrange TrafficLevel = "orange"
	TrafficRed    TrafficLevel = "red"
	TrafficNoData TrafficLevel = "no-data"
)

// TrafficSample is a short-lived road-speed estimate attached to a route.
// A sample is only usable while its age is below the refresh interval.
type TrafficSample struct {
	Level     TrafficLevel `json:"level"`
	SpeedKmh  float64      `json:"speedKmh"`
	SampledAt time.Time    `json:"sampledAt"`
}

// Fresh reports whether the sample is still usable at time now
func (s *TrafficSample) Fresh(now time.Time, maxAge time.Duration) bool {
	if s == nil {
		return false
	}
	return now.Sub(s.SampledAt) < maxAge
}

// Route is one bus line departing from a station
type Route struct {
	Number        string     `json:"number"`
	Destination   string     `json:"dest"`
	IntervalMin   int        `json:"interval"`  // minutes between departures
	StartTime     string     `json:"startTime"` // HH:MM, local service time
	EndTime       string     `json:"endTime"`   // HH:MM, may be earlier than StartTime (overnight)
	Path          []Waypoint `json:"path,omitempty"`
	TotalDistance float64    `json:"totalDistance,omitempty"` // km, informational
}

// Station is a fixed boarding point serving an ordered list of routes
type Station struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
	Routes  []Route `json:"routes"`
}
