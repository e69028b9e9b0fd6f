package models

import "time"

// GPSFix is one validated position sample during a tracked trip
type GPSFix struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Accuracy  float64   `json:"accuracy"`        // meters
	SpeedMps  *float64  `json:"speed,omitempty"` // m/s, may be absent
	Timestamp time.Time `json:"timestamp"`
}

// TripSummary is the result of one completed GPS tracking session
type TripSummary struct {
	RouteNumber string    `json:"routeNumber"`
	Completion  float64   `json:"completion"` // 0..1 share of the route covered
	DistanceKm  float64   `json:"distance"`
	DurationMin float64   `json:"duration"`
	FixCount    int       `json:"positionsCount"`
	AvgSpeedKmh float64   `json:"avgSpeed"`
	TrustBonus  float64   `json:"trustBonus"`
	HelpedUsers int       `json:"helpedUsers"`
	EndedAt     time.Time `json:"endedAt"`
}
