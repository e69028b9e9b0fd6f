package crowd

import (
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

const (
	// Confirmed reports older than this no longer influence predictions
	adjustmentWindow = 10 * time.Minute
	// Report count at which confidence saturates
	confidenceSaturation = 3.0
)

// Adjustment fuses the confirmed reports for a route/station from the last
// ten minutes into a single correction in minutes. Returns nil when no
// confirmed report remains in the window.
func (e *Engine) Adjustment(routeNumber, stationID string) *models.Adjustment {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	var totalWeight, weightedSum float64
	count := 0

	for _, r := range e.reports {
		if r.RouteNumber != routeNumber || r.StationID != stationID || !r.Confirmed {
			continue
		}
		age := now.Sub(r.Timestamp)
		if age >= adjustmentWindow || age < 0 {
			continue
		}

		ageMinutes := age.Minutes()
		// Reports lose influence linearly over the window
		timeDecay := 1 - ageMinutes/adjustmentWindow.Minutes()
		if timeDecay < 0 {
			timeDecay = 0
		}
		weight := r.Trust * timeDecay

		var adjustment float64
		switch r.Type {
		case models.ReportBusArrived:
			// Bus was closer than predicted
			adjustment = -ageMinutes
		case models.ReportBusPassed:
			// Bus is now further downstream
			adjustment = ageMinutes
		case models.ReportBusDelayed:
			adjustment = 5 * timeDecay
		case models.ReportNoBus:
			adjustment = 3 * timeDecay
		default:
			continue
		}

		weightedSum += adjustment * weight
		totalWeight += weight
		count++
	}

	if count == 0 || totalWeight == 0 {
		return nil
	}

	confidence := float64(count) / confidenceSaturation
	if confidence > 1 {
		confidence = 1
	}

	return &models.Adjustment{
		Minutes:     weightedSum / totalWeight,
		Confidence:  confidence,
		ReportCount: count,
	}
}
