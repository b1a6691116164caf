package handler

import (
	"net/http"
	"strconv"

	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/triage"

	"github.com/gin-gonic/gin"
)

// SubmitReport handles POST /api/v1/reports. A citizen token attaches the report to
// that citizen; without one the report is anonymous.
func (h *Handler) SubmitReport(c *gin.Context) {
	var draft triage.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := triage.SubmitRequest{Draft: draft, Policy: h.Policy}
	if claims := claimsFrom(c); claims != nil && claims.Role == models.RoleCitizen {
		id := claims.Subject
		req.CitizenID = &id
	}

	ctx, cancel := h.requestContext(c.Request.Context())
	defer cancel()

	result, err := h.Triage.Submit(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.Rejection != nil {
		writeRejection(c, result.Rejection)
		return
	}

	d := result.Decision
	var dailyLimit *int
	if !d.Limit.Unlimited {
		limit := d.Limit.Max
		dailyLimit = &limit
	}
	c.JSON(http.StatusCreated, gin.H{
		"report":          result.Report,
		"trust_level":     d.Level,
		"manual_review":   d.ManualReview,
		"daily_limit":     dailyLimit,
		"submitted_today": d.SubmittedToday,
	})
}

type transitionBody struct {
	Status  *string `json:"status"`
	Message string  `json:"message"`
}

// TransitionReport handles POST /api/v1/reports/:id/transition.
func (h *Handler) TransitionReport(c *gin.Context) {
	var body transitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Status == nil && body.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status or message is required"})
		return
	}

	claims := claimsFrom(c)
	req := triage.TransitionRequest{
		ReportID:  c.Param("id"),
		ActorID:   claims.Subject,
		ActorRole: claims.Role,
		Message:   body.Message,
	}
	if body.Status != nil {
		s := models.ReportStatus(*body.Status)
		req.NewStatus = &s
	}

	ctx, cancel := h.requestContext(c.Request.Context())
	defer cancel()

	result, err := h.Triage.Transition(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":          result.Report,
		"previous_status": result.PreviousStatus,
		"trust_delta":     result.Outcome.Delta,
		"adjustments":     result.Adjustments,
		"trust_score":     result.TrustScore,
	})
}

// GetReport handles GET /api/v1/reports/:id. Citizens only see their own reports.
func (h *Handler) GetReport(c *gin.Context) {
	ctx, cancel := h.requestContext(c.Request.Context())
	defer cancel()

	view, err := h.Triage.GetReport(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	claims := claimsFrom(c)
	if !claims.Role.IsStaff() {
		if view.Report.IsAnonymous() || *view.Report.CitizenID != claims.Subject {
			writeError(c, triage.ErrForbidden)
			return
		}
	}
	c.JSON(http.StatusOK, view)
}

// ListReports handles GET /api/v1/reports for staff.
func (h *Handler) ListReports(c *gin.Context) {
	filter := storage.ReportFilter{CitizenID: c.Query("citizen_id")}

	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			writeError(c, triage.ErrInvalidStatus)
			return
		}
		filter.Status = status
	}
	if raw := c.Query("manual_review"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manual_review must be a boolean"})
			return
		}
		filter.ManualReview = &v
	}
	var err error
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	if filter.Offset, err = intQuery(c, "offset"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	ctx, cancel := h.requestContext(c.Request.Context())
	defer cancel()

	reports, err := h.Triage.ListReports(ctx, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// ListAdjustments handles GET /api/v1/reports/:id/adjustments for staff.
func (h *Handler) ListAdjustments(c *gin.Context) {
	ctx, cancel := h.requestContext(c.Request.Context())
	defer cancel()

	adjustments, err := h.Triage.ListAdjustments(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adjustments": adjustments})
}

// GetCitizenTrust handles GET /api/v1/citizens/:id/trust for the citizen or staff.
func (h *Handler) GetCitizenTrust(c *gin.Context) {
	id := c.Param("id")
	claims := claimsFrom(c)
	if !claims.Role.IsStaff() && claims.Subject != id {
		writeError(c, triage.ErrForbidden)
		return
	}

	ctx, cancel := h.requestContext(c.Request.Context())
	defer cancel()

	summary, err := h.Triage.TrustSummary(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.Health != nil {
		ctx, cancel := h.requestContext(c.Request.Context())
		defer cancel()
		if err := h.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
