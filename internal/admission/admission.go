// Package admission decides whether a citizen may file a new report right now.
package admission

import (
	"context"
	"fmt"
	"time"

	"cityvoice/backend/internal/config"
	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/trust"
)

// Policy selects how strictly submissions are gated. It is chosen once per request
// from configuration.
type Policy int

const (
	PolicyNormal Policy = iota
	// PolicyUnrestricted admits every submission. Used for synthetic load outside production.
	PolicyUnrestricted
)

func (p Policy) String() string {
	if p == PolicyUnrestricted {
		return "unrestricted"
	}
	return "normal"
}

// PolicyFromConfig maps the gating switch onto a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg != nil && cfg.DisableAdmissionGating && !cfg.IsProduction() {
		return PolicyUnrestricted
	}
	return PolicyNormal
}

// Reason names why a submission was rejected.
type Reason string

const (
	ReasonVerificationRequired Reason = "VerificationRequired"
	ReasonDailyLimitReached    Reason = "DailyLimitReached"
)

// Rejection carries the details shown to a rejected submitter.
type Rejection struct {
	Reason         Reason      `json:"reason"`
	Level          trust.Level `json:"trust_level"`
	Limit          trust.Limit `json:"-"`
	SubmittedToday int64       `json:"submitted_today"`
}

func (r *Rejection) Error() string {
	if r.Reason == ReasonDailyLimitReached {
		return fmt.Sprintf("daily limit reached: %d of %s reports in 24h at trust level %s",
			r.SubmittedToday, r.Limit, r.Level)
	}
	return "verification required before submitting more reports"
}

// Decision is the result of an admission check. Exactly one of Admitted and Rejection is meaningful.
// Limit and SubmittedToday describe the quota the submission was counted against; unlimited
// submissions report a zero count.
type Decision struct {
	Admitted       bool
	Level          trust.Level
	InitialStatus  models.ReportStatus
	ManualReview   bool
	Limit          trust.Limit
	SubmittedToday int64
	Rejection      *Rejection
}

// Counter is the read side of the report store that admission needs.
type Counter interface {
	CountReportsByCitizen(ctx context.Context, citizenID string) (int64, error)
	CountReportsSince(ctx context.Context, citizenID string, since time.Time) (int64, error)
}

// Controller evaluates submissions against the trust policy.
type Controller struct {
	counter Counter
	now     func() time.Time
}

// NewController creates a controller reading counts from counter.
func NewController(counter Counter) *Controller {
	return &Controller{counter: counter, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Evaluate decides whether citizen may submit a report. A nil citizen is an anonymous
// submitter. Business rejections are returned in the Decision; the error is only set when
// the counter fails.
func (c *Controller) Evaluate(ctx context.Context, citizen *models.Citizen, policy Policy) (Decision, error) {
	if citizen == nil {
		return admit(trust.LevelMedium, models.StatusPending, false, unlimited, 0), nil
	}

	level := trust.ComputeLevel(citizen.TrustScore)
	status, review := trust.InitialStatusForLevel(level)

	if policy == PolicyUnrestricted {
		return admit(level, status, review, unlimited, 0), nil
	}

	if !citizen.Verified {
		total, err := c.counter.CountReportsByCitizen(ctx, citizen.ID)
		if err != nil {
			return Decision{}, fmt.Errorf("count reports for citizen %s: %w", citizen.ID, err)
		}
		if total >= config.UnverifiedFreeSubmissions {
			return reject(ReasonVerificationRequired, level, trust.DailyReportLimit(level), 0), nil
		}
	}

	limit := trust.DailyReportLimit(level)
	if limit.Unlimited {
		return admit(level, status, review, limit, 0), nil
	}

	since := c.now().Add(-config.SubmissionWindow)
	today, err := c.counter.CountReportsSince(ctx, citizen.ID, since)
	if err != nil {
		return Decision{}, fmt.Errorf("count recent reports for citizen %s: %w", citizen.ID, err)
	}
	if limit.Reached(today) {
		return reject(ReasonDailyLimitReached, level, limit, today), nil
	}

	return admit(level, status, review, limit, today), nil
}

var unlimited = trust.Limit{Unlimited: true}

func admit(level trust.Level, status models.ReportStatus, review bool, limit trust.Limit, today int64) Decision {
	return Decision{
		Admitted:       true,
		Level:          level,
		InitialStatus:  status,
		ManualReview:   review,
		Limit:          limit,
		SubmittedToday: today,
	}
}

func reject(reason Reason, level trust.Level, limit trust.Limit, today int64) Decision {
	return Decision{
		Level:          level,
		Limit:          limit,
		SubmittedToday: today,
		Rejection: &Rejection{
			Reason:         reason,
			Level:          level,
			Limit:          limit,
			SubmittedToday: today,
		},
	}
}
