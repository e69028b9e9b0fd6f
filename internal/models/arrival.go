package models

// ArrivalStatus is the state of one route's next-bus estimate
type ArrivalStatus string

const (
	ArrivalActive     ArrivalStatus = "Active"
	ArrivalNotStarted ArrivalStatus = "NotStarted"
	ArrivalEnded      ArrivalStatus = "Ended"
	ArrivalLoading    ArrivalStatus = "Loading"
	ArrivalNoData     ArrivalStatus = "NoData"
)

// RouteArrival is the baseline estimate for one route at a station
type RouteArrival struct {
	RouteNumber string        `json:"routeNumber"`
	Destination string        `json:"dest"`
	Status      ArrivalStatus `json:"status"`
	Minutes     int           `json:"minutes,omitempty"` // set when Status == Active
	Message     string        `json:"message,omitempty"`
	TrafficKmh  float64       `json:"trafficKmh,omitempty"` // cached sample, informational
}

// Prediction is the fused final estimate exposed to the presentation layer
type Prediction struct {
	RouteArrival
	Confidence    float64 `json:"confidence"`
	CrowdAdjusted bool    `json:"crowdAdjusted"`
	CrowdReports  int     `json:"crowdReports,omitempty"`
}
