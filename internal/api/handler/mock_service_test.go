package handler

import (
	"context"

	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/triage"

	"github.com/stretchr/testify/mock"
)

type MockTriage struct {
	mock.Mock
}

func (m *MockTriage) Submit(ctx context.Context, req triage.SubmitRequest) (*triage.SubmitResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*triage.SubmitResult)
	return res, args.Error(1)
}

func (m *MockTriage) Transition(ctx context.Context, req triage.TransitionRequest) (*triage.TransitionResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*triage.TransitionResult)
	return res, args.Error(1)
}

func (m *MockTriage) GetReport(ctx context.Context, id string) (*triage.ReportView, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*triage.ReportView)
	return v, args.Error(1)
}

func (m *MockTriage) ListReports(ctx context.Context, filter storage.ReportFilter) ([]models.Report, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]models.Report)
	return r, args.Error(1)
}

func (m *MockTriage) ListAdjustments(ctx context.Context, reportID string) ([]models.TrustAdjustment, error) {
	args := m.Called(ctx, reportID)
	a, _ := args.Get(0).([]models.TrustAdjustment)
	return a, args.Error(1)
}

func (m *MockTriage) TrustSummary(ctx context.Context, citizenID string) (*triage.TrustSummary, error) {
	args := m.Called(ctx, citizenID)
	s, _ := args.Get(0).(*triage.TrustSummary)
	return s, args.Error(1)
}
