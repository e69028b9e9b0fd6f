package estimator

import (
	"context"
	"log"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

type speedState int

const (
	speedReady speedState = iota
	speedLoading
	speedUnavailable
)

// resolveSpeed returns a usable car speed for the route, or the state the
// caller should surface instead. A fresh cached sample is reused; a stale or
// missing one triggers exactly one background refresh per route, guarded by a
// sequence number so a superseded fetch can never overwrite a newer result.
func (e *Estimator) resolveSpeed(ctx context.Context, route models.Route, stationID string, now time.Time) (float64, speedState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sample := e.samples[route.Number]
	if sample.Fresh(now, TrafficRefreshInterval) {
		if sample.Level == models.TrafficNoData {
			return 0, speedUnavailable
		}
		return sample.SpeedKmh, speedReady
	}

	if e.loading[route.Number] {
		return 0, speedLoading
	}

	e.loading[route.Number] = true
	e.seq[route.Number]++
	seq := e.seq[route.Number]

	// Detach from the caller's context: the fetch outlives the request that
	// triggered it
	go e.refresh(context.Background(), route, stationID, seq)

	return 0, speedLoading
}

// refresh fetches a fresh sample in the background and applies it only if it
// is still the newest request for the route
func (e *Estimator) refresh(ctx context.Context, route models.Route, stationID string, seq uint64) {
	speed, level, ok := e.source.EstimateSpeed(ctx, route)

	e.mu.Lock()
	if e.seq[route.Number] != seq {
		// A newer request superseded this one; drop the result
		e.mu.Unlock()
		return
	}

	sample := &models.TrafficSample{Level: models.TrafficNoData, SampledAt: e.now()}
	if ok {
		sample.Level = level
		sample.SpeedKmh = speed
	}
	e.samples[route.Number] = sample
	e.loading[route.Number] = false
	e.mu.Unlock()

	if ok {
		log.Printf("estimator: traffic loaded for route %s: %.1f km/h", route.Number, speed)
	} else {
		log.Printf("estimator: traffic loaded for route %s: no data", route.Number)
	}

	if e.onUpdate != nil {
		e.onUpdate(route.Number, stationID)
	}
}

// CachedSample returns the current traffic sample for a route, if any
func (e *Estimator) CachedSample(routeNumber string) *models.TrafficSample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samples[routeNumber]
}
