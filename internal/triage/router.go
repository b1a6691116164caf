// Package triage routes new reports through admission and applies status transitions
// together with their trust ledger adjustments.
package triage

import (
	"context"
	"errors"
	"time"

	"cityvoice/backend/internal/admission"
	"cityvoice/backend/internal/ledger"
	"cityvoice/backend/internal/metrics"
	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/notify"
	"cityvoice/backend/internal/storage"

	"github.com/apex/log"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Router is the entry point for submissions and transitions.
type Router struct {
	Storage  storage.Storage
	Notifier notify.Notifier
	now      func() time.Time
}

// NewRouter creates a router. A nil notifier disables notifications.
func NewRouter(s storage.Storage, n notify.Notifier) *Router {
	if n == nil {
		n = notify.NewMulti()
	}
	return &Router{Storage: s, Notifier: n, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Draft is the citizen-provided content of a new report.
type Draft struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Attachments []string `json:"attachments"`
}

type SubmitRequest struct {
	Draft Draft
	// CitizenID is nil for anonymous submissions.
	CitizenID *string
	Policy    admission.Policy
}

// SubmitResult holds either the created report or the rejection.
type SubmitResult struct {
	Report    *models.Report
	Decision  admission.Decision
	Rejection *admission.Rejection
}

// Submit admits and stores a new report. The citizen row stays locked while the quota is
// counted, so concurrent submissions by the same citizen are serialized.
func (r *Router) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	var ownerID string
	if req.CitizenID != nil && *req.CitizenID != "" {
		id, ok := parseID(*req.CitizenID)
		if !ok {
			return nil, ErrCitizenNotFound
		}
		ownerID = id
	}

	result := &SubmitResult{}
	var citizen *models.Citizen

	err := r.Storage.InTx(ctx, func(tx storage.Storage) error {
		if ownerID != "" {
			c, err := tx.GetCitizenForUpdate(ctx, ownerID)
			if errors.Is(err, storage.ErrNotFound) {
				return ErrCitizenNotFound
			}
			if err != nil {
				return storeErr(err)
			}
			citizen = c
		}

		decision, err := admission.NewController(tx).WithClock(r.now).Evaluate(ctx, citizen, req.Policy)
		if err != nil {
			return storeErr(err)
		}
		result.Decision = decision
		if !decision.Admitted {
			result.Rejection = decision.Rejection
			return nil
		}

		report := &models.Report{
			Title:        req.Draft.Title,
			Description:  req.Draft.Description,
			Category:     req.Draft.Category,
			Latitude:     req.Draft.Latitude,
			Longitude:    req.Draft.Longitude,
			Attachments:  pq.StringArray(req.Draft.Attachments),
			Status:       decision.InitialStatus,
			ManualReview: decision.ManualReview,
			Ledger:       models.LedgerNone,
		}
		if citizen != nil {
			id := citizen.ID
			report.CitizenID = &id
		}
		if err := tx.CreateReport(ctx, report); err != nil {
			return storeErr(err)
		}
		result.Report = report
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	if result.Rejection != nil {
		metrics.AdmissionsTotal.WithLabelValues(string(result.Rejection.Reason), string(result.Decision.Level)).Inc()
		log.WithFields(log.Fields{
			"citizen_id":      citizenID(citizen),
			"reason":          result.Rejection.Reason,
			"trust_level":     result.Rejection.Level,
			"submitted_today": result.Rejection.SubmittedToday,
		}).Info("submission rejected")
		return result, nil
	}

	metrics.AdmissionsTotal.WithLabelValues("admitted", string(result.Decision.Level)).Inc()
	log.WithFields(log.Fields{
		"report_id":     result.Report.ID,
		"citizen_id":    citizenID(citizen),
		"status":        result.Report.Status,
		"manual_review": result.Report.ManualReview,
	}).Info("report submitted")

	r.notify(ctx, notify.Notification{
		Citizen: citizen,
		Event: models.TriageEvent{
			Type:         models.EventReportSubmitted,
			ReportID:     result.Report.ID,
			Title:        result.Report.Title,
			CitizenID:    citizenID(citizen),
			Status:       result.Report.Status,
			ManualReview: result.Report.ManualReview,
			OccurredAt:   r.now(),
		},
	})
	return result, nil
}

type TransitionRequest struct {
	ReportID string
	// ActorID identifies the caller; only checked for citizens acting on their own report.
	ActorID   string
	ActorRole models.Role
	// NewStatus nil records a message without changing the status.
	NewStatus *models.ReportStatus
	Message   string
}

type TransitionResult struct {
	Report         *models.Report
	PreviousStatus models.ReportStatus
	Outcome        ledger.Outcome
	Adjustments    []models.TrustAdjustment
	// TrustScore is the owner's score after the transition; nil for anonymous reports.
	TrustScore *decimal.Decimal
}

// Transition changes a report's status and applies the trust ledger atomically. Report and
// owner rows are locked in that order for the duration of the transaction.
func (r *Router) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	var newStatus *models.ReportStatus
	if req.NewStatus != nil {
		s, ok := models.ParseStatus(string(*req.NewStatus))
		if !ok {
			return nil, ErrInvalidStatus
		}
		newStatus = &s
	}
	reportID, ok := parseID(req.ReportID)
	if !ok {
		return nil, ErrReportNotFound
	}

	result := &TransitionResult{}
	var citizen *models.Citizen
	var resolvedNow bool

	err := r.Storage.InTx(ctx, func(tx storage.Storage) error {
		report, err := tx.GetReportForUpdate(ctx, reportID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return storeErr(err)
		}
		if err := authorize(req, report, newStatus); err != nil {
			return err
		}

		prev := report.Status
		result.PreviousStatus = prev

		if !report.IsAnonymous() {
			c, err := tx.GetCitizenForUpdate(ctx, *report.CitizenID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				log.WithField("report_id", report.ID).Warn("owner of report no longer exists, skipping trust ledger")
			case err != nil:
				return storeErr(err)
			default:
				citizen = c
			}
		}

		now := r.now()
		if newStatus != nil {
			if citizen != nil {
				out := ledger.Apply(ledger.Event{PreviousStatus: prev, NewStatus: *newStatus, State: report.Ledger})
				result.Outcome = out
				if out.Changed() {
					score := citizen.TrustScore
					for _, step := range out.Steps {
						score = score.Add(decimal.NewFromInt(int64(step.Delta)))
						adj := models.TrustAdjustment{
							ReportID:   report.ID,
							CitizenID:  citizen.ID,
							Kind:       step.Kind,
							Delta:      step.Delta,
							ScoreAfter: score,
							FromStatus: prev,
							ToStatus:   *newStatus,
							ActorRole:  string(req.ActorRole),
							AppliedAt:  now,
						}
						if err := tx.SaveAdjustment(ctx, &adj); err != nil {
							return storeErr(err)
						}
						result.Adjustments = append(result.Adjustments, adj)
					}
					if err := tx.UpdateCitizenScore(ctx, citizen.ID, score); err != nil {
						return storeErr(err)
					}
					citizen.TrustScore = score
				}
				report.Ledger = out.State
			}

			report.Status = *newStatus
			switch {
			case *newStatus != models.StatusResolved:
				report.ResolvedAt = nil
			case prev.Normalized() != models.StatusResolved.Normalized() || report.ResolvedAt == nil:
				report.ResolvedAt = &now
				resolvedNow = true
			}

			if err := tx.UpdateReport(ctx, report); err != nil {
				return storeErr(err)
			}
		}

		change := &models.StatusChange{
			ReportID:   report.ID,
			FromStatus: prev,
			ToStatus:   report.Status,
			ActorRole:  string(req.ActorRole),
			Message:    req.Message,
		}
		if err := tx.SaveStatusChange(ctx, change); err != nil {
			return storeErr(err)
		}

		result.Report = report
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	if citizen != nil {
		score := citizen.TrustScore
		result.TrustScore = &score
	}
	r.recordTransition(result, newStatus, resolvedNow)

	ev := models.TriageEvent{
		Type:         models.EventReportStatus,
		ReportID:     result.Report.ID,
		Title:        result.Report.Title,
		CitizenID:    citizenID(citizen),
		FromStatus:   result.PreviousStatus,
		Status:       result.Report.Status,
		ManualReview: result.Report.ManualReview,
		ActorRole:    string(req.ActorRole),
		Message:      req.Message,
		TrustDelta:   result.Outcome.Delta,
		OccurredAt:   r.now(),
	}
	if newStatus == nil {
		ev.Type = models.EventReportMessage
	}
	r.notify(ctx, notify.Notification{Event: ev, Citizen: citizen})

	return result, nil
}

// authorize applies the role rules: staff may set any status, a citizen may only cancel their own report.
func authorize(req TransitionRequest, report *models.Report, newStatus *models.ReportStatus) error {
	switch {
	case req.ActorRole.IsStaff():
		return nil
	case req.ActorRole == models.RoleCitizen:
		if report.IsAnonymous() || *report.CitizenID != req.ActorID {
			return ErrForbidden
		}
		if newStatus == nil || *newStatus != models.StatusCancelled {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

func (r *Router) recordTransition(result *TransitionResult, newStatus *models.ReportStatus, resolvedNow bool) {
	for _, step := range result.Outcome.Steps {
		metrics.LedgerStepsTotal.WithLabelValues(string(step.Kind)).Inc()
	}
	if newStatus != nil {
		metrics.TransitionsTotal.WithLabelValues(string(*newStatus)).Inc()
	}
	if resolvedNow && !result.Report.CreatedAt.IsZero() {
		metrics.ResolutionSeconds.Observe(result.Report.ResolvedAt.Sub(result.Report.CreatedAt).Seconds())
	}

	log.WithFields(log.Fields{
		"report_id":   result.Report.ID,
		"from":        result.PreviousStatus,
		"to":          result.Report.Status,
		"ledger":      result.Report.Ledger,
		"trust_delta": result.Outcome.Delta,
	}).Info("report transitioned")
}

// notify runs after commit. Failures never affect the committed change.
func (r *Router) notify(ctx context.Context, n notify.Notification) {
	if err := r.Notifier.Notify(ctx, n); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(r.Notifier.Name()).Inc()
		log.WithError(err).WithField("report_id", n.Event.ReportID).Warn("notification failed")
	}
}

func citizenID(c *models.Citizen) string {
	if c == nil {
		return ""
	}
	return c.ID
}
