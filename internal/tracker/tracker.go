// Package tracker validates a rider's GPS trace during one trip and converts
// a plausible trace into a trust reward plus a synthetic crowd report.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/crowd"
	"github.com/algiers-transit/arrivals-backend-go/internal/estimator"
	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/internal/spatial"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
)

const (
	// Fix validation thresholds
	maxAccuracyMeters = 100.0
	maxSpeedKmh       = 60.0
	stallWindow       = 30 * time.Second
	minMovementKm     = 0.005 // 5 meters

	// Safety valve: sessions never run longer than this
	maxTrackingDuration = 60 * time.Minute

	// Assumed route length when the path is unknown
	fallbackRouteKm = 3.5

	// Completion tiers and their trust rewards
	fullTripCompletion    = 0.8
	partialTripCompletion = 0.5
	fullTripBonus         = 0.15
	partialTripBonus      = 0.10
	baseTripBonus         = 0.05

	maxStoredTrips = 10
)

// Fix rejection reasons
const (
	ReasonLowAccuracy  = "low_accuracy"
	ReasonSpeedTooHigh = "speed_too_high"
	ReasonNotMoving    = "not_moving"
)

// Session errors
var (
	ErrAlreadyTracking = errors.New("already tracking a route")
	ErrNotTracking     = errors.New("not currently tracking")
)

// FixResult reports whether a fix was appended to the trace
type FixResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	// AutoStopped is set when the fix pushed the session past the safety
	// valve and the trip was finalized
	AutoStopped bool                `json:"autoStopped,omitempty"`
	Summary     *models.TripSummary `json:"summary,omitempty"`
}

// Clock supplies the current time; injected for deterministic tests
type Clock func() time.Time

// Tracker runs at most one GPS tracking session at a time
type Tracker struct {
	mu      sync.Mutex
	sched   *schedule.Schedule
	engine  *crowd.Engine
	st      *store.DurableStore
	now     Clock
	metrics *metrics.Collector

	deviceID string

	tracking    bool
	routeNumber string
	startedAt   time.Time
	fixes       []models.GPSFix
	last        *models.GPSFix
	totalKm     float64
	speedKmh    float64
}

// New creates a tracker bound to the local device
func New(sched *schedule.Schedule, engine *crowd.Engine, st *store.DurableStore,
	deviceID string, now Clock, m *metrics.Collector) *Tracker {
	return &Tracker{
		sched:    sched,
		engine:   engine,
		st:       st,
		now:      now,
		metrics:  m,
		deviceID: deviceID,
	}
}

// Start begins a tracking session for a route
func (t *Tracker) Start(routeNumber string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		return ErrAlreadyTracking
	}

	t.tracking = true
	t.routeNumber = routeNumber
	t.startedAt = t.now()
	t.fixes = nil
	t.last = nil
	t.totalKm = 0
	t.speedKmh = 0

	if t.metrics != nil {
		t.metrics.TrackingActive.Set(1)
	}
	log.Printf("tracker: started tracking route %s", routeNumber)
	return nil
}

// HandleFix validates one position fix, appending it to the trace when
// plausible. Rejected fixes are logged, never stored.
func (t *Tracker) HandleFix(ctx context.Context, fix models.GPSFix) (FixResult, error) {
	t.mu.Lock()

	if !t.tracking {
		t.mu.Unlock()
		return FixResult{}, ErrNotTracking
	}

	if reason, ok := t.validate(fix); !ok {
		t.mu.Unlock()
		log.Printf("tracker: fix rejected: %s", reason)
		return FixResult{Accepted: false, Reason: reason}, nil
	}

	if t.last != nil {
		stepKm := spatial.HaversineKm(t.last.Lat, t.last.Lon, fix.Lat, fix.Lon)
		elapsed := fix.Timestamp.Sub(t.last.Timestamp).Seconds()
		if elapsed > 0 {
			t.speedKmh = stepKm / elapsed * 3600
		}
		t.totalKm += stepKm
	}
	t.fixes = append(t.fixes, fix)
	t.last = &t.fixes[len(t.fixes)-1]

	// Safety valve: never track longer than an hour
	if t.now().Sub(t.startedAt) > maxTrackingDuration {
		summary := t.finishLocked(ctx)
		t.mu.Unlock()
		log.Printf("tracker: auto-stopped after %.0f minutes", maxTrackingDuration.Minutes())
		return FixResult{Accepted: true, AutoStopped: true, Summary: &summary}, nil
	}

	t.mu.Unlock()
	return FixResult{Accepted: true}, nil
}

// validate applies the plausibility checks to a fix
func (t *Tracker) validate(fix models.GPSFix) (string, bool) {
	if fix.Accuracy > maxAccuracyMeters {
		return ReasonLowAccuracy, false
	}

	if t.last != nil {
		elapsed := fix.Timestamp.Sub(t.last.Timestamp)

		// A timestamp that does not advance makes any movement an infinite
		// implied speed
		if elapsed <= 0 {
			return ReasonSpeedTooHigh, false
		}

		stepKm := spatial.HaversineKm(t.last.Lat, t.last.Lon, fix.Lat, fix.Lon)
		impliedKmh := stepKm / elapsed.Seconds() * 3600
		if impliedKmh > maxSpeedKmh {
			return ReasonSpeedTooHigh, false
		}

		// A signal that sits still for half a minute is stalled or faked
		if elapsed > stallWindow && stepKm < minMovementKm {
			return ReasonNotMoving, false
		}
	}

	return "", true
}

// Stop finalizes the session: scores completion, rewards trust, and hands a
// synthetic report to the crowd engine
func (t *Tracker) Stop(ctx context.Context) (models.TripSummary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking {
		return models.TripSummary{}, ErrNotTracking
	}
	return t.finishLocked(ctx), nil
}

func (t *Tracker) finishLocked(ctx context.Context) models.TripSummary {
	now := t.now()
	completion := t.completionLocked()

	bonus := baseTripBonus
	if completion >= fullTripCompletion {
		bonus = fullTripBonus
	} else if completion >= partialTripCompletion {
		bonus = partialTripBonus
	}

	durationMin := now.Sub(t.startedAt).Minutes()
	avgSpeed := 0.0
	if durationMin > 0 {
		avgSpeed = t.totalKm / (durationMin / 60)
	}

	summary := models.TripSummary{
		RouteNumber: t.routeNumber,
		Completion:  completion,
		DistanceKm:  t.totalKm,
		DurationMin: durationMin,
		FixCount:    len(t.fixes),
		AvgSpeedKmh: avgSpeed,
		TrustBonus:  bonus,
		HelpedUsers: int(math.Round(completion * 10)),
		EndedAt:     now,
	}

	t.engine.Trust().Adjust(ctx, t.deviceID, bonus)
	t.engine.StoreTripReport(ctx, t.deviceID, summary)
	t.persistSummary(ctx, summary)

	t.tracking = false
	t.routeNumber = ""
	t.last = nil

	if t.metrics != nil {
		t.metrics.TrackingActive.Set(0)
		t.metrics.TripsCompleted.Inc()
	}
	log.Printf("tracker: stopped, completion %.0f%%, trust bonus +%.2f", completion*100, bonus)
	return summary
}

// completionLocked is traveled distance over expected road length, capped at 1
func (t *Tracker) completionLocked() float64 {
	if len(t.fixes) < 2 {
		return 0
	}

	routeKm := fallbackRouteKm
	if path := t.sched.Path(t.routeNumber); len(path) >= 2 {
		first := path[0]
		last := path[len(path)-1]
		routeKm = spatial.HaversineKm(first.Lat, first.Lon, last.Lat, last.Lon) * estimator.UrbanFactor
	}

	completion := t.totalKm / routeKm
	if completion > 1 {
		completion = 1
	}
	return completion
}

// persistSummary appends to the rolling window of stored trips
func (t *Tracker) persistSummary(ctx context.Context, summary models.TripSummary) {
	var trips []models.TripSummary
	if raw, ok := t.st.Get(ctx, store.KeyGPSTracking); ok {
		if err := json.Unmarshal([]byte(raw), &trips); err != nil {
			log.Printf("tracker: ignoring unreadable trip data: %v", err)
			trips = nil
		}
	}

	trips = append(trips, summary)
	if len(trips) > maxStoredTrips {
		trips = trips[len(trips)-maxStoredTrips:]
	}

	raw, err := json.Marshal(trips)
	if err != nil {
		log.Printf("tracker: failed to encode trip data: %v", err)
		return
	}
	if err := t.st.Set(ctx, store.KeyGPSTracking, string(raw)); err != nil {
		log.Printf("tracker: failed to persist trip data: %v", err)
	}
}

// Status describes the current session for the stats surface
type Status struct {
	Tracking    bool    `json:"tracking"`
	RouteNumber string  `json:"routeNumber,omitempty"`
	DistanceKm  float64 `json:"distance"`
	SpeedKmh    float64 `json:"speed"`
	DurationMin float64 `json:"duration"`
	FixCount    int     `json:"positionsCount"`
}

// Stats returns a snapshot of the current session
func (t *Tracker) Stats() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Status{
		Tracking:    t.tracking,
		RouteNumber: t.routeNumber,
		DistanceKm:  t.totalKm,
		SpeedKmh:    t.speedKmh,
		FixCount:    len(t.fixes),
	}
	if t.tracking {
		s.DurationMin = t.now().Sub(t.startedAt).Minutes()
	}
	return s
}
