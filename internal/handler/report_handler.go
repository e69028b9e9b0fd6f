package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/algiers-transit/arrivals-backend-go/internal/crowd"
	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/pkg/response"
)

// Optional pseudonymous identity headers. Requests without them are
// attributed to the service's own device identity.
const (
	headerDeviceID    = "X-Device-Id"
	headerFingerprint = "X-Device-Fingerprint"
)

// ReportHandler accepts crowd reports and exposes the stats surface
type ReportHandler struct {
	engine *crowd.Engine
}

// NewReportHandler creates a new report handler
func NewReportHandler(engine *crowd.Engine) *ReportHandler {
	return &ReportHandler{engine: engine}
}

// Submit runs a report through the validation pipeline. Rejections are part
// of the result payload, not HTTP errors.
func (h *ReportHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid report payload: "+err.Error())
		return
	}

	result := h.engine.Submit(c.Request.Context(), crowd.Submission{
		SubmitRequest: req,
		DeviceID:      c.GetHeader(headerDeviceID),
		Fingerprint:   c.GetHeader(headerFingerprint),
		IPAddress:     c.ClientIP(),
	})

	response.Success(c, result)
}

// Stats returns the local device's crowd statistics
func (h *ReportHandler) Stats(c *gin.Context) {
	response.Success(c, h.engine.Stats())
}
