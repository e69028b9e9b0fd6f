// Package fusion combines the estimator's baseline with the crowd engine's
// confirmed adjustments into the final (minutes, confidence) pair.
package fusion

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/crowd"
	"github.com/algiers-transit/arrivals-backend-go/internal/estimator"
	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

// UpdateSink receives a notification after an async traffic or crowd update
// changed a prediction. The presentation callback and the event publisher
// both implement it.
type UpdateSink interface {
	PredictionUpdated(routeNumber, stationID string)
}

// Predictor is the top of the signal-fusion pipeline
type Predictor struct {
	est     *estimator.Estimator
	engine  *crowd.Engine
	metrics *metrics.Collector
	sinks   []UpdateSink
}

// New creates a predictor; sinks may be empty
func New(est *estimator.Estimator, engine *crowd.Engine, m *metrics.Collector, sinks ...UpdateSink) *Predictor {
	return &Predictor{est: est, engine: engine, metrics: m, sinks: sinks}
}

// Predict fuses baseline arrivals with crowd corrections for one station
func (p *Predictor) Predict(ctx context.Context, stationID string) []models.Prediction {
	start := time.Now()
	arrivals := p.est.Estimate(ctx, stationID)

	predictions := make([]models.Prediction, 0, len(arrivals))
	for _, a := range arrivals {
		pred := models.Prediction{RouteArrival: a}

		if a.Status != models.ArrivalActive {
			predictions = append(predictions, pred)
			continue
		}

		pred.Confidence = 1.0
		if adj := p.engine.Adjustment(a.RouteNumber, stationID); adj != nil {
			minutes := float64(a.Minutes) + adj.Minutes
			if minutes < 0 {
				minutes = 0
			}
			pred.Minutes = int(math.Round(minutes))
			pred.Confidence = adj.Confidence
			pred.CrowdAdjusted = true
			pred.CrowdReports = adj.ReportCount
			log.Printf("fusion: route %s at %s adjusted %+.1f min from %d confirmed report(s)",
				a.RouteNumber, stationID, adj.Minutes, adj.ReportCount)
		}
		predictions = append(predictions, pred)
	}

	if p.metrics != nil {
		p.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}
	return predictions
}

// NotifyUpdate fans an update event out to all sinks. The estimator calls
// this after an async traffic refresh resolves.
func (p *Predictor) NotifyUpdate(routeNumber, stationID string) {
	for _, s := range p.sinks {
		s.PredictionUpdated(routeNumber, stationID)
	}
}
