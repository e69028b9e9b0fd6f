package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/tracker"
	"github.com/algiers-transit/arrivals-backend-go/pkg/response"
)

// TrackingHandler drives the GPS trip tracking session
type TrackingHandler struct {
	tracker *tracker.Tracker
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(t *tracker.Tracker) *TrackingHandler {
	return &TrackingHandler{tracker: t}
}

type startRequest struct {
	RouteNumber string `json:"routeNumber" binding:"required"`
}

// Start begins a tracking session
func (h *TrackingHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid start payload: "+err.Error())
		return
	}

	if err := h.tracker.Start(req.RouteNumber); err != nil {
		if errors.Is(err, tracker.ErrAlreadyTracking) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "GPS tracking started"})
}

type fixRequest struct {
	Lat       float64  `json:"lat" binding:"required"`
	Lon       float64  `json:"lon" binding:"required"`
	Accuracy  float64  `json:"accuracy"`
	SpeedMps  *float64 `json:"speed,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"` // unix millis, defaults to now
}

// Fix feeds one position fix into the session
func (h *TrackingHandler) Fix(c *gin.Context) {
	var req fixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid fix payload: "+err.Error())
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = time.UnixMilli(*req.Timestamp)
	}

	result, err := h.tracker.HandleFix(c.Request.Context(), models.GPSFix{
		Lat:       req.Lat,
		Lon:       req.Lon,
		Accuracy:  req.Accuracy,
		SpeedMps:  req.SpeedMps,
		Timestamp: ts,
	})
	if err != nil {
		if errors.Is(err, tracker.ErrNotTracking) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// Stop finalizes the session and returns the trip summary
func (h *TrackingHandler) Stop(c *gin.Context) {
	summary, err := h.tracker.Stop(c.Request.Context())
	if err != nil {
		if errors.Is(err, tracker.ErrNotTracking) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, summary)
}

// Status returns a snapshot of the current session
func (h *TrackingHandler) Status(c *gin.Context) {
	response.Success(c, h.tracker.Stats())
}
