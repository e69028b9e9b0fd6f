package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/crowd"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/internal/spatial"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
)

const testDevice = "dev_tracker-test-0000"

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(t *testing.T) (*Tracker, *crowd.Engine, *store.DurableStore, *testClock) {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	st := store.NewDurableStore(store.NewMemoryStore())
	trust := crowd.NewTrustTracker(ctx, st, testDevice, nil)
	engine := crowd.NewEngine(ctx, st, trust, testDevice, "fp-test", time.UTC, clock.now, nil)
	sched := schedule.New(time.UTC)

	return New(sched, engine, st, testDevice, clock.now, nil), engine, st, clock
}

func TestStart_RejectsSecondSession(t *testing.T) {
	trk, _, _, _ := newTestTracker(t)

	if err := trk.Start("31"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := trk.Start("67"); !errors.Is(err, ErrAlreadyTracking) {
		t.Errorf("second Start error = %v, want ErrAlreadyTracking", err)
	}
}

func TestHandleFix_RequiresSession(t *testing.T) {
	trk, _, _, _ := newTestTracker(t)

	if _, err := trk.HandleFix(context.Background(), models.GPSFix{}); !errors.Is(err, ErrNotTracking) {
		t.Errorf("HandleFix error = %v, want ErrNotTracking", err)
	}
	if _, err := trk.Stop(context.Background()); !errors.Is(err, ErrNotTracking) {
		t.Errorf("Stop error = %v, want ErrNotTracking", err)
	}
}

func TestHandleFix_RejectsLowAccuracy(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)
	trk.Start("31")

	res, err := trk.HandleFix(context.Background(), models.GPSFix{
		Lat: 36.7692, Lon: 3.0549, Accuracy: 150, Timestamp: clock.now(),
	})
	if err != nil {
		t.Fatalf("HandleFix: %v", err)
	}
	if res.Accepted || res.Reason != ReasonLowAccuracy {
		t.Errorf("result = %+v, want rejection %s", res, ReasonLowAccuracy)
	}
}

func TestHandleFix_RejectsImplausibleSpeed(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)
	trk.Start("31")
	ctx := context.Background()

	trk.HandleFix(ctx, models.GPSFix{Lat: 36.7692, Lon: 3.0549, Accuracy: 10, Timestamp: clock.now()})

	// One kilometer in ten seconds
	clock.advance(10 * time.Second)
	lat, lon := spatial.DestinationPoint(36.7692, 3.0549, 180, 1000)
	res, _ := trk.HandleFix(ctx, models.GPSFix{Lat: lat, Lon: lon, Accuracy: 10, Timestamp: clock.now()})
	if res.Accepted || res.Reason != ReasonSpeedTooHigh {
		t.Errorf("result = %+v, want rejection %s", res, ReasonSpeedTooHigh)
	}
}

func TestHandleFix_RejectsNonAdvancingTimestamp(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)
	trk.Start("31")
	ctx := context.Background()

	trk.HandleFix(ctx, models.GPSFix{Lat: 36.7692, Lon: 3.0549, Accuracy: 10, Timestamp: clock.now()})

	// One kilometer away at the exact same timestamp: a teleport
	lat, lon := spatial.DestinationPoint(36.7692, 3.0549, 180, 1000)
	res, _ := trk.HandleFix(ctx, models.GPSFix{Lat: lat, Lon: lon, Accuracy: 10, Timestamp: clock.now()})
	if res.Accepted || res.Reason != ReasonSpeedTooHigh {
		t.Errorf("same-timestamp result = %+v, want rejection %s", res, ReasonSpeedTooHigh)
	}

	// Out-of-order timestamps are no better
	res, _ = trk.HandleFix(ctx, models.GPSFix{
		Lat: lat, Lon: lon, Accuracy: 10, Timestamp: clock.now().Add(-time.Minute),
	})
	if res.Accepted || res.Reason != ReasonSpeedTooHigh {
		t.Errorf("out-of-order result = %+v, want rejection %s", res, ReasonSpeedTooHigh)
	}

	// Rejected teleports must not count toward the trip
	if d := trk.Stats().DistanceKm; d != 0 {
		t.Errorf("distance after rejected fixes = %v, want 0", d)
	}
}

func TestHandleFix_RejectsStalledSignal(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)
	trk.Start("31")
	ctx := context.Background()

	trk.HandleFix(ctx, models.GPSFix{Lat: 36.7692, Lon: 3.0549, Accuracy: 10, Timestamp: clock.now()})

	// Two meters in forty seconds
	clock.advance(40 * time.Second)
	lat, lon := spatial.DestinationPoint(36.7692, 3.0549, 180, 2)
	res, _ := trk.HandleFix(ctx, models.GPSFix{Lat: lat, Lon: lon, Accuracy: 10, Timestamp: clock.now()})
	if res.Accepted || res.Reason != ReasonNotMoving {
		t.Errorf("result = %+v, want rejection %s", res, ReasonNotMoving)
	}
}

// driveAlongRoute feeds plausible fixes heading south from Place Audin,
// 200 meters every 30 seconds
func driveAlongRoute(t *testing.T, trk *Tracker, clock *testClock, steps int) {
	t.Helper()
	ctx := context.Background()
	lat, lon := 36.7692, 3.0549

	for i := 0; i < steps; i++ {
		res, err := trk.HandleFix(ctx, models.GPSFix{Lat: lat, Lon: lon, Accuracy: 10, Timestamp: clock.now()})
		if err != nil {
			t.Fatalf("fix %d: %v", i, err)
		}
		if !res.Accepted {
			t.Fatalf("fix %d rejected: %s", i, res.Reason)
		}
		clock.advance(30 * time.Second)
		lat, lon = spatial.DestinationPoint(lat, lon, 190, 200)
	}
}

func TestStop_FullTripEarnsFullBonus(t *testing.T) {
	trk, engine, _, clock := newTestTracker(t)
	trk.Start("31")

	// 30 fixes, about 5.8 km: past the whole route
	driveAlongRoute(t, trk, clock, 30)

	summary, err := trk.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if summary.Completion != 1.0 {
		t.Errorf("completion = %v, want 1.0", summary.Completion)
	}
	if summary.TrustBonus != fullTripBonus {
		t.Errorf("bonus = %v, want %v", summary.TrustBonus, fullTripBonus)
	}
	if summary.FixCount != 30 {
		t.Errorf("fix count = %d, want 30", summary.FixCount)
	}
	if summary.DistanceKm <= 0 || summary.AvgSpeedKmh <= 0 {
		t.Errorf("summary distance/speed not populated: %+v", summary)
	}

	if got := engine.Trust().Score(testDevice); got != models.TrustDefault+fullTripBonus {
		t.Errorf("trust after trip = %v, want %v", got, models.TrustDefault+fullTripBonus)
	}

	// The synthetic trip report lands in the crowd store
	if stats := engine.Stats(); stats.TotalReports != 1 {
		t.Errorf("crowd reports after trip = %d, want 1", stats.TotalReports)
	}

	if trk.Stats().Tracking {
		t.Error("tracker should be idle after Stop")
	}
}

func TestStop_ShortTripEarnsBaseBonus(t *testing.T) {
	trk, engine, _, clock := newTestTracker(t)
	trk.Start("31")

	// Two fixes, 200 meters: a token trip
	driveAlongRoute(t, trk, clock, 2)

	summary, err := trk.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if summary.Completion >= partialTripCompletion {
		t.Fatalf("completion = %v, expected a short trip", summary.Completion)
	}
	if summary.TrustBonus != baseTripBonus {
		t.Errorf("bonus = %v, want %v", summary.TrustBonus, baseTripBonus)
	}
	if got := engine.Trust().Score(testDevice); got != models.TrustDefault+baseTripBonus {
		t.Errorf("trust = %v, want %v", got, models.TrustDefault+baseTripBonus)
	}
}

func TestCompletion_AgainstRouteLength(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)
	trk.Start("31")

	path := schedule.New(time.UTC).Path("31")
	routeKm := spatial.HaversineKm(path[0].Lat, path[0].Lon, path[1].Lat, path[1].Lon) * 1.7

	// Drive roughly 60% of the expected road length
	steps := int(routeKm*0.6/0.2) + 1
	driveAlongRoute(t, trk, clock, steps)

	summary, err := trk.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if summary.Completion < partialTripCompletion || summary.Completion >= fullTripCompletion {
		t.Fatalf("completion = %v, expected a partial trip", summary.Completion)
	}
	if summary.TrustBonus != partialTripBonus {
		t.Errorf("bonus = %v, want %v", summary.TrustBonus, partialTripBonus)
	}
}

func TestHandleFix_AutoStopAfterAnHour(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)
	trk.Start("31")
	ctx := context.Background()

	trk.HandleFix(ctx, models.GPSFix{Lat: 36.7692, Lon: 3.0549, Accuracy: 10, Timestamp: clock.now()})

	clock.advance(61 * time.Minute)
	lat, lon := spatial.DestinationPoint(36.7692, 3.0549, 190, 500)
	res, err := trk.HandleFix(ctx, models.GPSFix{Lat: lat, Lon: lon, Accuracy: 10, Timestamp: clock.now()})
	if err != nil {
		t.Fatalf("HandleFix: %v", err)
	}
	if !res.AutoStopped || res.Summary == nil {
		t.Fatalf("result = %+v, want auto-stop with summary", res)
	}
	if trk.Stats().Tracking {
		t.Error("tracker should be idle after auto-stop")
	}
}

func TestStop_PersistsTripSummary(t *testing.T) {
	trk, _, st, clock := newTestTracker(t)
	trk.Start("31")
	driveAlongRoute(t, trk, clock, 3)
	trk.Stop(context.Background())

	if _, ok := st.Get(context.Background(), store.KeyGPSTracking); !ok {
		t.Error("trip summary not persisted")
	}
}

func TestStats_LiveSession(t *testing.T) {
	trk, _, _, clock := newTestTracker(t)

	if s := trk.Stats(); s.Tracking {
		t.Error("fresh tracker should be idle")
	}

	trk.Start("31")
	driveAlongRoute(t, trk, clock, 3)

	s := trk.Stats()
	if !s.Tracking || s.RouteNumber != "31" {
		t.Errorf("stats = %+v", s)
	}
	if s.FixCount != 3 || s.DistanceKm <= 0 {
		t.Errorf("stats = %+v, want 3 fixes with distance", s)
	}
}
