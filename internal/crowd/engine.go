// Package crowd validates, stores, clusters and fuses anonymous rider
// reports, and keeps the per-device trust accounting honest.
package crowd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/algiers-transit/arrivals-backend-go/internal/metrics"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/internal/spatial"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
)

const (
	// Reporters must stand within this distance of the stop
	geofenceMeters = 100.0

	// Citywide service hours, wrapping past midnight
	serviceStartMins = 6 * 60 // 06:00
	serviceEndMins   = 5 * 60 // 05:00 next day

	// One report per (route, station) per device in this window
	rateLimitWindow = 10 * time.Minute

	// Anti-cheat lookback windows
	fingerprintWindow   = 30 * time.Minute
	ipWindow            = 5 * time.Minute
	volumeWindow        = 30 * time.Minute
	maxReportsPerWindow = 5

	// Confirmation clustering window
	confirmWindow = 5 * time.Minute

	// Trust deltas
	penaltyDuplicateFingerprint = -0.5
	penaltySuspiciousIP         = -0.3
	penaltyTooManyReports       = -0.8
	rewardConfirmation          = 0.05

	// Retention
	reportRetention  = 24 * time.Hour
	maxStoredReports = 100
)

// Clock supplies the current time; injected for deterministic tests
type Clock func() time.Time

// Engine is the crowd trust engine
type Engine struct {
	mu         sync.Mutex
	st         *store.DurableStore
	trust      *TrustTracker
	reports    []models.CrowdReport
	lastReport map[string]time.Time // deviceID|route|station -> last accepted
	loc        *time.Location
	now        Clock
	metrics    *metrics.Collector

	localDeviceID    string
	localFingerprint string
}

// NewEngine loads persisted reports (dropping anything older than 24h) and
// wires the trust tracker
func NewEngine(ctx context.Context, st *store.DurableStore, trust *TrustTracker,
	localDeviceID, localFingerprint string, loc *time.Location, now Clock, m *metrics.Collector) *Engine {

	e := &Engine{
		st:               st,
		trust:            trust,
		lastReport:       make(map[string]time.Time),
		loc:              loc,
		now:              now,
		metrics:          m,
		localDeviceID:    localDeviceID,
		localFingerprint: localFingerprint,
	}
	e.loadReports(ctx)
	return e
}

// Trust exposes the trust tracker for collaborating components
func (e *Engine) Trust() *TrustTracker { return e.trust }

// Submission carries a submit request plus the pseudonymous identity and
// network context attached by the transport layer
type Submission struct {
	models.SubmitRequest
	DeviceID    string
	Fingerprint string
	IPAddress   string
}

// Submit runs the full validation pipeline and stores the report when it
// passes. Anti-cheat flags penalize trust but do not block storage; only
// user-correctable rejections do.
func (e *Engine) Submit(ctx context.Context, sub Submission) models.SubmitResult {
	if sub.DeviceID == "" {
		sub.DeviceID = e.localDeviceID
	}
	if sub.Fingerprint == "" {
		sub.Fingerprint = e.localFingerprint
	}

	if !models.ValidReportType(sub.Type) || sub.Type == models.ReportGPSTracking {
		return models.SubmitResult{
			Success: false,
			Errors:  []string{models.ErrInvalidType},
			Message: "Report rejected: unsupported report type",
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	report := models.CrowdReport{
		ID:          fmt.Sprintf("rep_%s", uuid.NewString()),
		DeviceID:    sub.DeviceID,
		Fingerprint: sub.Fingerprint,
		IPAddress:   sub.IPAddress,
		RouteNumber: sub.RouteNumber,
		StationID:   sub.StationID,
		Type:        sub.Type,
		Timestamp:   now,
		Trust:       e.trust.Score(sub.DeviceID),
	}

	rejections, flags := e.validate(ctx, report, sub)
	all := append(append([]string{}, rejections...), flags...)
	if e.metrics != nil {
		for _, reason := range all {
			e.metrics.ReportsRejected.WithLabelValues(reason).Inc()
		}
	}

	if len(rejections) > 0 {
		return models.SubmitResult{
			Success: false,
			Errors:  all,
			Message: "Report rejected: " + strings.Join(all, ", "),
		}
	}

	e.reports = append(e.reports, report)
	e.lastReport[rateKey(report.DeviceID, report.RouteNumber, report.StationID)] = now
	e.confirmMatches(ctx, len(e.reports)-1)
	e.saveReports(ctx)

	if e.metrics != nil {
		e.metrics.ReportsSubmitted.Inc()
	}
	log.Printf("crowd: report %s accepted: %s route %s at %s (flags: %v)",
		report.ID, report.Type, report.RouteNumber, report.StationID, flags)

	msg := "Report submitted successfully"
	if len(flags) > 0 {
		msg = "Report submitted with flags: " + strings.Join(flags, ", ")
	}
	return models.SubmitResult{Success: true, ReportID: report.ID, Errors: flags, Message: msg}
}

// validate runs every check and returns user-correctable rejections separately
// from anti-cheat flags. The anti-cheat checks run unconditionally and apply
// their trust penalties as a side effect.
func (e *Engine) validate(ctx context.Context, report models.CrowdReport, sub Submission) (rejections, flags []string) {
	now := report.Timestamp

	// Geofence: only checked when both positions are supplied
	if sub.UserLat != nil && sub.UserLon != nil && sub.StationLat != nil && sub.StationLon != nil {
		d := spatial.HaversineMeters(*sub.UserLat, *sub.UserLon, *sub.StationLat, *sub.StationLon)
		if d > geofenceMeters {
			rejections = append(rejections, models.ErrTooFar)
			log.Printf("crowd: report rejected, user %.0fm from stop", d)
		}
	}

	// Service hours
	local := now.In(e.loc)
	nowMins := local.Hour()*60 + local.Minute()
	if !schedule.WindowActive(serviceStartMins, serviceEndMins, nowMins) {
		rejections = append(rejections, models.ErrOutsideServiceHours)
	}

	// Rate limit per (device, route, station)
	if last, ok := e.lastReport[rateKey(report.DeviceID, report.RouteNumber, report.StationID)]; ok {
		if now.Sub(last) < rateLimitWindow {
			rejections = append(rejections, models.ErrRateLimited)
		}
	}

	// Duplicate fingerprint: another device id presenting this fingerprint
	for _, r := range e.recent(now, fingerprintWindow) {
		if r.Fingerprint == report.Fingerprint && r.DeviceID != report.DeviceID {
			flags = append(flags, models.ErrDuplicateFingerprint)
			e.trust.Adjust(ctx, report.DeviceID, penaltyDuplicateFingerprint)
			break
		}
	}

	// IP clustering: more than 2 other reports from this IP in 5 minutes
	if report.IPAddress != "" {
		sameIP := 0
		for _, r := range e.recent(now, ipWindow) {
			if r.IPAddress == report.IPAddress && r.DeviceID != report.DeviceID {
				sameIP++
			}
		}
		if sameIP > 2 {
			flags = append(flags, models.ErrSuspiciousIP)
			e.trust.Adjust(ctx, report.DeviceID, penaltySuspiciousIP)
		}
	}

	// Volume: counting this submission, more than 5 own reports in 30 minutes
	own := 1
	for _, r := range e.recent(now, volumeWindow) {
		if r.DeviceID == report.DeviceID {
			own++
		}
	}
	if own > maxReportsPerWindow {
		flags = append(flags, models.ErrTooManyReports)
		e.trust.Adjust(ctx, report.DeviceID, penaltyTooManyReports)
	}

	return rejections, flags
}

// confirmMatches marks the report at idx and any independent matches as
// confirmed. A match is the same (route, station, type) within 5 minutes from
// a different device id AND a different fingerprint.
func (e *Engine) confirmMatches(ctx context.Context, idx int) {
	newReport := &e.reports[idx]

	var matched []*models.CrowdReport
	for i := range e.reports {
		if i == idx {
			continue
		}
		r := &e.reports[i]
		if r.RouteNumber == newReport.RouteNumber &&
			r.StationID == newReport.StationID &&
			r.Type == newReport.Type &&
			absDuration(r.Timestamp.Sub(newReport.Timestamp)) < confirmWindow &&
			r.DeviceID != newReport.DeviceID &&
			r.Fingerprint != newReport.Fingerprint {
			matched = append(matched, r)
		}
	}

	if len(matched) == 0 {
		return
	}

	newReport.Confirmed = true
	e.trust.Adjust(ctx, newReport.DeviceID, rewardConfirmation)
	if e.metrics != nil {
		e.metrics.ReportsConfirmed.Inc()
	}
	for _, r := range matched {
		r.Confirmed = true
		e.trust.Adjust(ctx, r.DeviceID, rewardConfirmation)
	}
	log.Printf("crowd: report %s confirmed by %d independent device(s)", newReport.ID, len(matched))
}

// StoreTripReport persists a synthetic gps_tracking report. It is
// self-attested telemetry, so it bypasses validation and confirmation.
func (e *Engine) StoreTripReport(ctx context.Context, deviceID string, summary models.TripSummary) {
	if deviceID == "" {
		deviceID = e.localDeviceID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, models.CrowdReport{
		ID:          fmt.Sprintf("rep_%s", uuid.NewString()),
		DeviceID:    deviceID,
		Fingerprint: e.localFingerprint,
		RouteNumber: summary.RouteNumber,
		Type:        models.ReportGPSTracking,
		Timestamp:   summary.EndedAt,
		Trust:       e.trust.Score(deviceID),
	})
	e.saveReports(ctx)
}

// Stats returns the debug surface for the local device
func (e *Engine) Stats() models.CrowdStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0
	confirmed := 0
	for _, r := range e.reports {
		if r.DeviceID != e.localDeviceID {
			continue
		}
		total++
		if r.Confirmed {
			confirmed++
		}
	}

	rate := 0.0
	if total > 0 {
		rate = float64(confirmed) / float64(total)
	}

	return models.CrowdStats{
		DeviceID:         models.MaskDeviceID(e.localDeviceID),
		Fingerprint:      e.localFingerprint,
		TrustScore:       e.trust.Score(e.localDeviceID),
		TotalReports:     total,
		ConfirmedCount:   confirmed,
		ConfirmationRate: rate,
	}
}

// recent returns reports no older than window relative to now
func (e *Engine) recent(now time.Time, window time.Duration) []models.CrowdReport {
	var out []models.CrowdReport
	for _, r := range e.reports {
		if now.Sub(r.Timestamp) < window {
			out = append(out, r)
		}
	}
	return out
}

// loadReports restores the report list, silently starting empty on any
// storage or decode problem
func (e *Engine) loadReports(ctx context.Context) {
	raw, ok := e.st.Get(ctx, store.KeyCrowdReports)
	if !ok {
		return
	}
	var loaded []models.CrowdReport
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		log.Printf("crowd: ignoring unreadable report data: %v", err)
		return
	}

	cutoff := e.now().Add(-reportRetention)
	for _, r := range loaded {
		if r.Timestamp.After(cutoff) {
			e.reports = append(e.reports, r)
		}
	}
}

// saveReports trims to retention and cap, then persists. Storage failures are
// logged; the in-memory list stays authoritative for the session.
func (e *Engine) saveReports(ctx context.Context) {
	cutoff := e.now().Add(-reportRetention)
	kept := e.reports[:0]
	for _, r := range e.reports {
		if r.Timestamp.After(cutoff) {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp.Before(kept[j].Timestamp) })
	if len(kept) > maxStoredReports {
		kept = kept[len(kept)-maxStoredReports:]
	}
	e.reports = kept

	raw, err := json.Marshal(e.reports)
	if err != nil {
		log.Printf("crowd: failed to encode reports: %v", err)
		return
	}
	if err := e.st.Set(ctx, store.KeyCrowdReports, string(raw)); err != nil {
		log.Printf("crowd: failed to persist reports: %v", err)
	}
}

func rateKey(deviceID, route, station string) string {
	return deviceID + "|" + route + "|" + station
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
