package models

import "time"

// ReportType is the closed set of crowd report kinds
type ReportType string

const (
	ReportBusArrived  ReportType = "bus_arrived"
	ReportBusPassed   ReportType = "bus_passed"
	ReportBusDelayed  ReportType = "bus_delayed"
	ReportNoBus       ReportType = "no_bus"
	ReportGPSTracking ReportType = "gps_tracking"
)

// ValidReportType reports whether t is one of the accepted report kinds
func ValidReportType(t ReportType) bool {
	switch t {
	case ReportBusArrived, ReportBusPassed, ReportBusDelayed, ReportNoBus, ReportGPSTracking:
		return true
	}
	return false
}

// Validation failure codes returned to the submitter
const (
	ErrTooFar               = "too_far"
	ErrOutsideServiceHours  = "outside_service_hours"
	ErrRateLimited          = "rate_limited"
	ErrDuplicateFingerprint = "duplicate_fingerprint"
	ErrSuspiciousIP         = "suspicious_ip"
	ErrTooManyReports       = "too_many_reports"
	ErrNotReady             = "not_ready"
	ErrInvalidType          = "invalid_type"
)

// CrowdReport is a single pseudonymous rider report. Reports are immutable
// after creation except for the confirmed flag.
type CrowdReport struct {
	ID          string     `json:"id"`
	DeviceID    string     `json:"deviceId"`
	Fingerprint string     `json:"fingerprint"`
	IPAddress   string     `json:"ipAddress,omitempty"`
	RouteNumber string     `json:"routeNumber"`
	StationID   string     `json:"stationId"`
	Type        ReportType `json:"type"`
	Timestamp   time.Time  `json:"timestamp"`
	Trust       float64    `json:"trust"` // reporter's trust at submission time
	Confirmed   bool       `json:"confirmed"`
}

// SubmitRequest is the wire shape of a report submission
type SubmitRequest struct {
	Type        ReportType `json:"type" binding:"required"`
	RouteNumber string     `json:"routeNumber" binding:"required"`
	StationID   string     `json:"stationId" binding:"required"`
	UserLat     *float64   `json:"userLat,omitempty"`
	UserLon     *float64   `json:"userLon,omitempty"`
	StationLat  *float64   `json:"stationLat,omitempty"`
	StationLon  *float64   `json:"stationLon,omitempty"`
}

// SubmitResult is the structured outcome of a submission. Validation failures
// are reported here, never as errors.
type SubmitResult struct {
	Success  bool     `json:"success"`
	ReportID string   `json:"reportId,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Message  string   `json:"message"`
}

// Adjustment is the fused crowd correction for one route at one station
type Adjustment struct {
	Minutes     float64 `json:"adjustmentMinutes"`
	Confidence  float64 `json:"confidence"`
	ReportCount int     `json:"reportCount"`
}

// CrowdStats is the debug/stats surface for the local device
type CrowdStats struct {
	DeviceID         string  `json:"deviceId"` // masked
	Fingerprint      string  `json:"fingerprint"`
	TrustScore       float64 `json:"trustScore"`
	TotalReports     int     `json:"totalReports"`
	ConfirmedCount   int     `json:"confirmedCount"`
	ConfirmationRate float64 `json:"confirmationRate"`
}
