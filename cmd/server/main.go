package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/api"
	"github.com/algiers-transit/arrivals-backend-go/internal/config"
	"github.com/algiers-transit/arrivals-backend-go/internal/crowd"
	"github.com/algiers-transit/arrivals-backend-go/internal/estimator"
	"github.com/algiers-transit/arrivals-backend-go/internal/fusion"
	"github.com/algiers-transit/arrivals-backend-go/internal/handler"
	"github.com/algiers-transit/arrivals-backend-go/internal/identity"
	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/publisher"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
	"github.com/algiers-transit/arrivals-backend-go/internal/tracker"
	"github.com/algiers-transit/arrivals-backend-go/internal/traffic"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Storage tiers, highest priority first. Postgres is optional; SQLite and
	// memory always run so the service degrades instead of failing.
	var tiers []store.KeyValueStore

	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("postgres tier unavailable, continuing without it: %v", err)
		} else {
			defer pg.Close()
			tiers = append(tiers, pg)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}
	sq, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to initialize sqlite store:", err)
	}
	defer sq.Close()
	tiers = append(tiers, sq, store.NewMemoryStore())

	st := store.NewDurableStore(tiers...)

	collector := metrics.NewCollector()

	ident := identity.NewManager(ctx, st, identity.CollectSignals())
	trust := crowd.NewTrustTracker(ctx, st, ident.DeviceID(), collector)
	engine := crowd.NewEngine(ctx, st, trust,
		ident.DeviceID(), ident.DeviceFingerprint(), cfg.Location, time.Now, collector)

	sched := schedule.New(cfg.Location)
	sampler := traffic.NewSampler(traffic.NewHTTPTileProvider(cfg.TileURL), collector)

	// The estimator notifies the predictor after async traffic refreshes, and
	// the predictor wraps the estimator. Late-bind through a closure.
	var predictor *fusion.Predictor
	est := estimator.New(sched, sampler, time.Now, func(routeNumber, stationID string) {
		if predictor != nil {
			predictor.NotifyUpdate(routeNumber, stationID)
		}
	})

	var sinks []fusion.UpdateSink
	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, collector)
		if err != nil {
			log.Printf("nats publisher unavailable, continuing without it: %v", err)
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}
	predictor = fusion.New(est, engine, collector, sinks...)

	trk := tracker.New(sched, engine, st, ident.DeviceID(), time.Now, collector)

	router := api.SetupRouter(api.Handlers{
		Arrivals: handler.NewArrivalsHandler(sched, predictor),
		Reports:  handler.NewReportHandler(engine),
		Tracking: handler.NewTrackingHandler(trk),
	}, collector)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
