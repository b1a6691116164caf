package triage

import (
	"context"
	"errors"

	"cityvoice/backend/internal/config"
	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/trust"

	"github.com/shopspring/decimal"
)

// ReportView is a report with its status history.
type ReportView struct {
	Report  *models.Report        `json:"report"`
	History []models.StatusChange `json:"history"`
}

func (r *Router) GetReport(ctx context.Context, rawID string) (*ReportView, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, ErrReportNotFound
	}
	report, err := r.Storage.GetReportByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	history, err := r.Storage.ListStatusChanges(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return &ReportView{Report: report, History: history}, nil
}

func (r *Router) ListReports(ctx context.Context, filter storage.ReportFilter) ([]models.Report, error) {
	if filter.CitizenID != "" {
		id, ok := parseID(filter.CitizenID)
		if !ok {
			return []models.Report{}, nil
		}
		filter.CitizenID = id
	}
	reports, err := r.Storage.ListReports(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return reports, nil
}

// ListAdjustments returns the trust audit trail of a report.
func (r *Router) ListAdjustments(ctx context.Context, rawID string) ([]models.TrustAdjustment, error) {
	reportID, ok := parseID(rawID)
	if !ok {
		return nil, ErrReportNotFound
	}
	if _, err := r.Storage.GetReportByID(ctx, reportID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storeErr(err)
	}

	adjustments, err := r.Storage.ListAdjustments(ctx, reportID)
	if err != nil {
		return nil, storeErr(err)
	}
	return adjustments, nil
}

// TrustSummary is what a citizen (or staff) sees about a citizen's standing.
type TrustSummary struct {
	CitizenID string          `json:"citizen_id"`
	Verified  bool            `json:"verified"`
	Score     decimal.Decimal `json:"trust_score"`
	Level     trust.Level     `json:"trust_level"`
	// DailyLimit and Remaining are nil when the level has no quota.
	DailyLimit     *int  `json:"daily_limit"`
	SubmittedToday int64 `json:"submitted_today"`
	Remaining      *int  `json:"remaining"`
	ManualReview   bool  `json:"manual_review"`
}

func (r *Router) TrustSummary(ctx context.Context, rawID string) (*TrustSummary, error) {
	citizenID, ok := parseID(rawID)
	if !ok {
		return nil, ErrCitizenNotFound
	}
	citizen, err := r.Storage.GetCitizenByID(ctx, citizenID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCitizenNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	today, err := r.Storage.CountReportsSince(ctx, citizen.ID, r.now().Add(-config.SubmissionWindow))
	if err != nil {
		return nil, storeErr(err)
	}

	policy := trust.PolicyFor(citizen.TrustScore)
	summary := &TrustSummary{
		CitizenID:      citizen.ID,
		Verified:       citizen.Verified,
		Score:          citizen.TrustScore,
		Level:          policy.Level,
		SubmittedToday: today,
		ManualReview:   policy.ManualReview,
	}
	if !policy.DailyLimit.Unlimited {
		limit := policy.DailyLimit.Max
		remaining := limit - int(today)
		if remaining < 0 {
			remaining = 0
		}
		summary.DailyLimit = &limit
		summary.Remaining = &remaining
	}
	return summary, nil
}
