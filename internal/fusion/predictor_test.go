package fusion

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/crowd"
	"github.com/algiers-transit/arrivals-backend-go/internal/estimator"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// greenSource always reports free-flowing traffic
type greenSource struct{}

func (greenSource) EstimateSpeed(context.Context, models.Route) (float64, models.TrafficLevel, bool) {
	return 40, models.TrafficGreen, true
}

type recordingSink struct {
	calls []string
}

func (s *recordingSink) PredictionUpdated(routeNumber, stationID string) {
	s.calls = append(s.calls, routeNumber+"@"+stationID)
}

func newTestPredictor(t *testing.T) (*Predictor, *crowd.Engine, *estimator.Estimator, *testClock) {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	st := store.NewDurableStore(store.NewMemoryStore())
	trust := crowd.NewTrustTracker(ctx, st, "dev_local", nil)
	engine := crowd.NewEngine(ctx, st, trust, "dev_local", "fp-local", time.UTC, clock.now, nil)

	updates := make(chan struct{}, 64)
	est := estimator.New(schedule.New(time.UTC), greenSource{}, clock.now,
		func(routeNumber, stationID string) { updates <- struct{}{} })

	// Prime the traffic cache so predictions resolve synchronously
	first := est.Estimate(ctx, "audin")
	for range first {
		select {
		case <-updates:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out priming traffic cache")
		}
	}

	return New(est, engine, nil), engine, est, clock
}

func TestPredict_BaselineWithoutReports(t *testing.T) {
	p, _, est, _ := newTestPredictor(t)
	ctx := context.Background()

	baseline := est.Estimate(ctx, "audin")
	preds := p.Predict(ctx, "audin")
	if len(preds) != len(baseline) {
		t.Fatalf("got %d predictions for %d arrivals", len(preds), len(baseline))
	}

	for i, pred := range preds {
		if pred.Status != models.ArrivalActive {
			t.Errorf("route %s status = %q, want Active", pred.RouteNumber, pred.Status)
			continue
		}
		if pred.CrowdAdjusted {
			t.Errorf("route %s adjusted without any report", pred.RouteNumber)
		}
		if pred.Confidence != 1.0 {
			t.Errorf("route %s confidence = %v, want 1.0", pred.RouteNumber, pred.Confidence)
		}
		if pred.Minutes != baseline[i].Minutes {
			t.Errorf("route %s minutes = %d, baseline %d", pred.RouteNumber, pred.Minutes, baseline[i].Minutes)
		}
	}
}

func TestPredict_AppliesConfirmedCrowdReports(t *testing.T) {
	p, engine, est, clock := newTestPredictor(t)
	ctx := context.Background()

	// Two independent devices report the bus arrived; the pair confirms
	sub := crowd.Submission{
		SubmitRequest: models.SubmitRequest{
			Type: models.ReportBusArrived, RouteNumber: "31", StationID: "audin",
		},
		DeviceID:    "dev_a",
		Fingerprint: "fp-a",
	}
	if res := engine.Submit(ctx, sub); !res.Success {
		t.Fatalf("first report: %v", res.Errors)
	}
	clock.advance(2 * time.Minute)
	sub.DeviceID, sub.Fingerprint = "dev_b", "fp-b"
	if res := engine.Submit(ctx, sub); !res.Success {
		t.Fatalf("second report: %v", res.Errors)
	}

	baseline := est.Estimate(ctx, "audin")
	preds := p.Predict(ctx, "audin")

	var got *models.Prediction
	var base models.RouteArrival
	for i := range preds {
		if preds[i].RouteNumber == "31" {
			got = &preds[i]
			base = baseline[i]
		}
	}
	if got == nil {
		t.Fatal("route 31 missing from predictions")
	}

	if !got.CrowdAdjusted {
		t.Fatal("route 31 should be crowd adjusted")
	}
	if got.CrowdReports != 2 {
		t.Errorf("crowd reports = %d, want 2", got.CrowdReports)
	}
	if math.Abs(got.Confidence-2.0/3.0) > 1e-9 {
		t.Errorf("confidence = %v, want 2/3", got.Confidence)
	}
	// "Bus arrived" reports pull the estimate earlier, floored at zero
	if got.Minutes > base.Minutes {
		t.Errorf("adjusted minutes %d exceed baseline %d", got.Minutes, base.Minutes)
	}
	if got.Minutes < 0 {
		t.Errorf("minutes = %d, must not go negative", got.Minutes)
	}
}

func TestNotifyUpdate_FansOutToSinks(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	p := New(nil, nil, nil, a, b)

	p.NotifyUpdate("31", "audin")

	for _, s := range []*recordingSink{a, b} {
		if len(s.calls) != 1 || s.calls[0] != "31@audin" {
			t.Errorf("sink calls = %v", s.calls)
		}
	}
}
