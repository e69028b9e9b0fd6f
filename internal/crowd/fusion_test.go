package crowd

import (
	"math"
	"testing"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

func confirmedReport(device string, typ models.ReportType, age time.Duration, clock *testClock) models.CrowdReport {
	return models.CrowdReport{
		ID:          "rep_" + device,
		DeviceID:    device,
		RouteNumber: "31",
		StationID:   "audin",
		Type:        typ,
		Timestamp:   clock.now().Add(-age),
		Trust:       1.0,
		Confirmed:   true,
	}
}

func TestAdjustment_NoReports(t *testing.T) {
	e, _ := newTestEngine(t, newTestClock(12, 0))
	if adj := e.Adjustment("31", "audin"); adj != nil {
		t.Errorf("adjustment without reports = %+v, want nil", adj)
	}
}

func TestAdjustment_IgnoresUnconfirmed(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	r := confirmedReport("dev_a", models.ReportBusArrived, 2*time.Minute, clock)
	r.Confirmed = false
	e.reports = append(e.reports, r)

	if adj := e.Adjustment("31", "audin"); adj != nil {
		t.Errorf("unconfirmed report produced adjustment %+v", adj)
	}
}

func TestAdjustment_IgnoresExpired(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	e.reports = append(e.reports, confirmedReport("dev_a", models.ReportBusArrived, 11*time.Minute, clock))

	if adj := e.Adjustment("31", "audin"); adj != nil {
		t.Errorf("expired report produced adjustment %+v", adj)
	}
}

func TestAdjustment_BusArrivedPullsEstimateCloser(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	// Confirmed "bus arrived" 2 minutes ago: the bus runs 2 minutes early
	e.reports = append(e.reports, confirmedReport("dev_a", models.ReportBusArrived, 2*time.Minute, clock))

	adj := e.Adjustment("31", "audin")
	if adj == nil {
		t.Fatal("expected an adjustment")
	}
	if math.Abs(adj.Minutes-(-2.0)) > 1e-9 {
		t.Errorf("adjustment = %v minutes, want -2", adj.Minutes)
	}
	if adj.ReportCount != 1 {
		t.Errorf("report count = %d, want 1", adj.ReportCount)
	}
}

func TestAdjustment_BusPassedPushesEstimateOut(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	e.reports = append(e.reports, confirmedReport("dev_a", models.ReportBusPassed, 3*time.Minute, clock))

	adj := e.Adjustment("31", "audin")
	if adj == nil {
		t.Fatal("expected an adjustment")
	}
	if math.Abs(adj.Minutes-3.0) > 1e-9 {
		t.Errorf("adjustment = %v minutes, want +3", adj.Minutes)
	}
}

func TestAdjustment_ConfidenceSaturatesAtThree(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	devices := []string{"dev_a", "dev_b", "dev_c", "dev_d"}
	for i, dev := range devices {
		e.reports = append(e.reports, confirmedReport(dev, models.ReportBusDelayed, time.Duration(i)*time.Minute, clock))

		adj := e.Adjustment("31", "audin")
		if adj == nil {
			t.Fatal("expected an adjustment")
		}
		wantConf := math.Min(1.0, float64(i+1)/confidenceSaturation)
		if math.Abs(adj.Confidence-wantConf) > 1e-9 {
			t.Errorf("confidence with %d reports = %v, want %v", i+1, adj.Confidence, wantConf)
		}
	}
}

func TestAdjustment_WeighsByTrustAndDecay(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	// A fresh high-trust report against an aging low-trust one
	strong := confirmedReport("dev_a", models.ReportBusPassed, 1*time.Minute, clock)
	strong.Trust = 2.0
	weak := confirmedReport("dev_b", models.ReportBusArrived, 8*time.Minute, clock)
	weak.Trust = 0.1
	e.reports = append(e.reports, strong, weak)

	adj := e.Adjustment("31", "audin")
	if adj == nil {
		t.Fatal("expected an adjustment")
	}
	// strong: +1 min at weight 2.0*0.9 = 1.8; weak: -8 min at weight 0.1*0.2 = 0.02
	want := (1.0*1.8 + (-8.0)*0.02) / (1.8 + 0.02)
	if math.Abs(adj.Minutes-want) > 1e-9 {
		t.Errorf("adjustment = %v, want %v", adj.Minutes, want)
	}
}

func TestAdjustment_ScopedToRouteAndStation(t *testing.T) {
	clock := newTestClock(12, 0)
	e, _ := newTestEngine(t, clock)

	e.reports = append(e.reports, confirmedReport("dev_a", models.ReportBusArrived, 2*time.Minute, clock))

	if adj := e.Adjustment("31", "martyrs"); adj != nil {
		t.Error("adjustment leaked to another station")
	}
	if adj := e.Adjustment("67", "audin"); adj != nil {
		t.Error("adjustment leaked to another route")
	}
}
