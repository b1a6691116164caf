package handler

import (
	"errors"
	"net/http"

	"cityvoice/backend/internal/admission"
	"cityvoice/backend/internal/triage"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, triage.ErrCitizenNotFound), errors.Is(err, triage.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, triage.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, triage.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type rejectionResponse struct {
	Reason         admission.Reason `json:"reason"`
	TrustLevel     string           `json:"trust_level"`
	Limit          *int             `json:"limit"`
	SubmittedToday int64            `json:"submitted_today"`
	Message        string           `json:"message"`
}

func writeRejection(c *gin.Context, r *admission.Rejection) {
	status := http.StatusForbidden
	if r.Reason == admission.ReasonDailyLimitReached {
		status = http.StatusTooManyRequests
	}

	resp := rejectionResponse{
		Reason:         r.Reason,
		TrustLevel:     string(r.Level),
		SubmittedToday: r.SubmittedToday,
		Message:        r.Error(),
	}
	if !r.Limit.Unlimited {
		limit := r.Limit.Max
		resp.Limit = &limit
	}
	c.JSON(status, resp)
}
