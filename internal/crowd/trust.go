package crowd

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
)

// TrustTracker maintains clamped per-device trust scores, persisted through
// the store chain. Scores outside [0.1, 2.0] can never be observed: values
// are clamped on load, on every adjustment, and again before persisting.
type TrustTracker struct {
	mu      sync.Mutex
	st      *store.DurableStore
	scores  map[string]float64
	localID string
	metrics *metrics.Collector
}

// NewTrustTracker loads persisted scores, treating missing or unreadable data
// as an empty table
func NewTrustTracker(ctx context.Context, st *store.DurableStore, localDeviceID string, m *metrics.Collector) *TrustTracker {
	t := &TrustTracker{
		st:      st,
		scores:  make(map[string]float64),
		localID: localDeviceID,
		metrics: m,
	}

	if raw, ok := st.Get(ctx, store.KeyUserTrust); ok {
		var loaded map[string]float64
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			log.Printf("crowd: ignoring unreadable trust data: %v", err)
		} else {
			for id, v := range loaded {
				t.scores[id] = models.ClampTrust(v)
			}
		}
	}

	if m != nil {
		m.TrustScore.Set(t.get(localDeviceID))
	}
	return t
}

// Score returns the clamped trust score for a device, defaulting new devices
// to 1.0
func (t *TrustTracker) Score(deviceID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.get(deviceID)
}

func (t *TrustTracker) get(deviceID string) float64 {
	if v, ok := t.scores[deviceID]; ok {
		return models.ClampTrust(v)
	}
	return models.TrustDefault
}

// Adjust applies a delta to a device's trust, clamps, persists, and returns
// the new score
func (t *TrustTracker) Adjust(ctx context.Context, deviceID string, delta float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := models.ClampTrust(t.get(deviceID) + delta)
	t.scores[deviceID] = next

	if t.metrics != nil && deviceID == t.localID {
		t.metrics.TrustScore.Set(next)
	}
	log.Printf("crowd: trust %s adjusted %+.2f -> %.2f", models.MaskDeviceID(deviceID), delta, next)

	t.persist(ctx)
	return next
}

// persist writes the score table; storage failures are logged and the
// in-memory table stays authoritative for the session
func (t *TrustTracker) persist(ctx context.Context) {
	clamped := make(map[string]float64, len(t.scores))
	for id, v := range t.scores {
		clamped[id] = models.ClampTrust(v)
	}
	raw, err := json.Marshal(clamped)
	if err != nil {
		log.Printf("crowd: failed to encode trust data: %v", err)
		return
	}
	if err := t.st.Set(ctx, store.KeyUserTrust, string(raw)); err != nil {
		log.Printf("crowd: failed to persist trust data: %v", err)
	}
}
