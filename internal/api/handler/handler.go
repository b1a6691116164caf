package handler

import (
	"context"
	"time"

	"cityvoice/backend/internal/admission"
	"cityvoice/backend/internal/hub"
	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/triage"
)

// TriageService is implemented by *triage.Router.
type TriageService interface {
	Submit(ctx context.Context, req triage.SubmitRequest) (*triage.SubmitResult, error)
	Transition(ctx context.Context, req triage.TransitionRequest) (*triage.TransitionResult, error)
	GetReport(ctx context.Context, id string) (*triage.ReportView, error)
	ListReports(ctx context.Context, filter storage.ReportFilter) ([]models.Report, error)
	ListAdjustments(ctx context.Context, reportID string) ([]models.TrustAdjustment, error)
	TrustSummary(ctx context.Context, citizenID string) (*triage.TrustSummary, error)
}

// Handler serves the intake HTTP API.
type Handler struct {
	Triage TriageService
	Hub    *hub.ManagerService
	Auth   *Authenticator
	// Policy is fixed at startup from configuration.
	Policy  admission.Policy
	Timeout time.Duration
	// Health checks the backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

func NewHandler(t TriageService, h *hub.ManagerService, auth *Authenticator, policy admission.Policy, timeout time.Duration) *Handler {
	return &Handler{Triage: t, Hub: h, Auth: auth, Policy: policy, Timeout: timeout}
}

func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.Timeout)
}
