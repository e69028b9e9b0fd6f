package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/algiers-transit/arrivals-backend-go/internal/fusion"
	"github.com/algiers-transit/arrivals-backend-go/internal/schedule"
	"github.com/algiers-transit/arrivals-backend-go/pkg/response"
)

// ArrivalsHandler serves stations and fused arrival predictions
type ArrivalsHandler struct {
	sched     *schedule.Schedule
	predictor *fusion.Predictor
}

// NewArrivalsHandler creates a new arrivals handler
func NewArrivalsHandler(sched *schedule.Schedule, predictor *fusion.Predictor) *ArrivalsHandler {
	return &ArrivalsHandler{sched: sched, predictor: predictor}
}

// ListStations returns the static station dataset
func (h *ArrivalsHandler) ListStations(c *gin.Context) {
	response.Success(c, h.sched.Stations())
}

// GetArrivals returns fused predictions for one station
func (h *ArrivalsHandler) GetArrivals(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.sched.Station(id); !ok {
		response.NotFound(c, "unknown station: "+id)
		return
	}

	response.Success(c, h.predictor.Predict(c.Request.Context(), id))
}
