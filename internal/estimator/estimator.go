// Package estimator produces the baseline next-bus estimate per route from
// the static timetable and the live traffic speed.
package estimator

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/internal/spatial"
)

const (
	// TrafficRefreshInterval bounds how long a traffic sample is reused
	TrafficRefreshInterval = 3 * time.Minute

	// UrbanFactor converts straight-line distance to expected road distance
	// for a hilly coastal street grid
	UrbanFactor = 1.7

	// fallbackRouteKm is assumed when a route has no usable path
	fallbackRouteKm = 3.5

	// Dwell model: base seconds per stop plus per-passenger boarding time
	dwellBaseSeconds         = 5.0
	dwellPerPassengerSeconds = 2.75
	peakPassengersPerStop    = 10.0
	offPeakPassengersPerStop = 4.0
	fallbackStopCount        = 5
)

// SpeedSource supplies a live car-speed estimate for a route
type SpeedSource interface {
	EstimateSpeed(ctx context.Context, route models.Route) (float64, models.TrafficLevel, bool)
}

// Clock supplies the current time; injected for deterministic tests
type Clock func() time.Time

// UpdateFunc is invoked after an async traffic refresh resolves so the caller
// can re-render
type UpdateFunc func(routeNumber, stationID string)

// Estimator computes baseline arrivals for a station
type Estimator struct {
	sched    *schedule.Schedule
	source   SpeedSource
	now      Clock
	onUpdate UpdateFunc

	mu      sync.Mutex
	samples map[string]*models.TrafficSample
	loading map[string]bool
	seq     map[string]uint64
}

// New creates an estimator over the schedule and speed source
func New(sched *schedule.Schedule, source SpeedSource, now Clock, onUpdate UpdateFunc) *Estimator {
	return &Estimator{
		sched:    sched,
		source:   source,
		now:      now,
		onUpdate: onUpdate,
		samples:  make(map[string]*models.TrafficSample),
		loading:  make(map[string]bool),
		seq:      make(map[string]uint64),
	}
}

// Estimate returns one arrival per route at the station, Active entries
// first in ascending minutes. A station id that is not in the schedule is a
// programming error and panics.
func (e *Estimator) Estimate(ctx context.Context, stationID string) []models.RouteArrival {
	station, ok := e.sched.Station(stationID)
	if !ok {
		panic("estimator: unknown station " + stationID)
	}

	now := e.now()
	arrivals := make([]models.RouteArrival, 0, len(station.Routes))
	for _, route := range station.Routes {
		arrivals = append(arrivals, e.estimateRoute(ctx, route, stationID, now))
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		a, b := arrivals[i], arrivals[j]
		if a.Status == models.ArrivalActive && b.Status == models.ArrivalActive {
			return a.Minutes < b.Minutes
		}
		return a.Status == models.ArrivalActive && b.Status != models.ArrivalActive
	})
	return arrivals
}

func (e *Estimator) estimateRoute(ctx context.Context, route models.Route, stationID string, now time.Time) models.RouteArrival {
	arrival := models.RouteArrival{RouteNumber: route.Number, Destination: route.Destination}

	startMins, err := schedule.TimeToMinutes(route.StartTime)
	if err != nil {
		panic("estimator: bad timetable for route " + route.Number + ": " + err.Error())
	}
	endMins, err := schedule.TimeToMinutes(route.EndTime)
	if err != nil {
		panic("estimator: bad timetable for route " + route.Number + ": " + err.Error())
	}

	nowMins := e.sched.NowMinutes(now)
	if !schedule.WindowActive(startMins, endMins, nowMins) {
		if nowMins < startMins {
			arrival.Status = models.ArrivalNotStarted
			arrival.Message = "Starts " + route.StartTime
		} else {
			arrival.Status = models.ArrivalEnded
			arrival.Message = "Service Ended"
		}
		return arrival
	}

	carSpeed, state := e.resolveSpeed(ctx, route, stationID, now)
	switch state {
	case speedLoading:
		arrival.Status = models.ArrivalLoading
		arrival.Message = "..."
		return arrival
	case speedUnavailable:
		arrival.Status = models.ArrivalNoData
		arrival.Message = "No traffic data"
		return arrival
	}

	arrival.TrafficKmh = carSpeed

	journey := e.journeyMinutes(route, carSpeed, now)

	// Where the current departure sits inside the headway cycle
	minutesSinceStart := nowMins - startMins
	if minutesSinceStart < 0 {
		minutesSinceStart += 24 * 60
	}
	cyclePosition := float64(minutesSinceStart % route.IntervalMin)

	arrival.Status = models.ArrivalActive
	if cyclePosition < journey {
		// A bus is already en route to this station
		arrival.Minutes = int(math.Ceil(journey - cyclePosition))
	} else {
		// Wait for the next scheduled departure, then its full journey
		arrival.Minutes = int(math.Ceil(float64(route.IntervalMin) - cyclePosition + journey))
	}
	return arrival
}

// journeyMinutes is movement time plus dwell time for one full run
func (e *Estimator) journeyMinutes(route models.Route, carSpeed float64, now time.Time) float64 {
	busSpeed := carSpeed * busSpeedFactor(carSpeed)

	distanceKm := fallbackRouteKm
	if len(route.Path) >= 2 {
		first := route.Path[0]
		last := route.Path[len(route.Path)-1]
		distanceKm = spatial.HaversineKm(first.Lat, first.Lon, last.Lat, last.Lon) * UrbanFactor
	}

	movementMinutes := distanceKm / busSpeed * 60

	stops := fallbackStopCount
	if len(route.Path) > 0 {
		stops = len(route.Path)
	}
	passengers := offPeakPassengersPerStop
	if isPeakHour(now.In(e.sched.Location()).Hour()) {
		passengers = peakPassengersPerStop
	}
	dwellMinutes := float64(stops) * (dwellBaseSeconds + dwellPerPassengerSeconds*passengers) / 60

	return movementMinutes + dwellMinutes
}

// busSpeedFactor converts car speed to bus speed. The bands reflect stop and
// dwell overhead; the bottom band is deliberately higher than the one above
// it: buses in stopped traffic lose proportionally less than cars do.
func busSpeedFactor(carSpeed float64) float64 {
	switch {
	case carSpeed >= 35:
		return 0.25
	case carSpeed >= 25:
		return 0.22
	case carSpeed >= 15:
		return 0.20
	default:
		return 0.30
	}
}

// isPeakHour reports the two daily rush bands
func isPeakHour(hour int) bool {
	return (hour >= 7 && hour < 9) || (hour >= 16 && hour < 19)
}
