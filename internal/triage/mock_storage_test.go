package triage_test

import (
	"context"
	"time"

	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/notify"
	"cityvoice/backend/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStorage runs InTx callbacks against itself. CommitErr simulates a failed commit.
type MockStorage struct {
	mock.Mock
	CommitErr error
}

func (m *MockStorage) InTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	if err := fn(m); err != nil {
		return err
	}
	return m.CommitErr
}

func (m *MockStorage) GetCitizenByID(ctx context.Context, id string) (*models.Citizen, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Citizen)
	return c, args.Error(1)
}

func (m *MockStorage) GetCitizenForUpdate(ctx context.Context, id string) (*models.Citizen, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Citizen)
	return c, args.Error(1)
}

func (m *MockStorage) GetCitizenByTelegramChatID(ctx context.Context, chatID int64) (*models.Citizen, error) {
	args := m.Called(ctx, chatID)
	c, _ := args.Get(0).(*models.Citizen)
	return c, args.Error(1)
}

func (m *MockStorage) UpdateCitizenLanguage(ctx context.Context, id, lang string) error {
	args := m.Called(ctx, id, lang)
	return args.Error(0)
}

func (m *MockStorage) UpdateCitizenScore(ctx context.Context, id string, score decimal.Decimal) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *MockStorage) SetCitizenVerified(ctx context.Context, id string, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

func (m *MockStorage) CountReportsByCitizen(ctx context.Context, citizenID string) (int64, error) {
	args := m.Called(ctx, citizenID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CountReportsSince(ctx context.Context, citizenID string, since time.Time) (int64, error) {
	args := m.Called(ctx, citizenID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CreateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockStorage) GetReportByID(ctx context.Context, id string) (*models.Report, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

func (m *MockStorage) GetReportForUpdate(ctx context.Context, id string) (*models.Report, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

func (m *MockStorage) UpdateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockStorage) ListReports(ctx context.Context, filter storage.ReportFilter) ([]models.Report, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) SaveAdjustment(ctx context.Context, adj *models.TrustAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *MockStorage) ListAdjustments(ctx context.Context, reportID string) ([]models.TrustAdjustment, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]models.TrustAdjustment), args.Error(1)
}

func (m *MockStorage) SaveStatusChange(ctx context.Context, change *models.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockStorage) ListStatusChanges(ctx context.Context, reportID string) ([]models.StatusChange, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]models.StatusChange), args.Error(1)
}

// MockNotifier collects notifications on a channel.
type MockNotifier struct {
	Sent chan notify.Notification
	Err  error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Sent: make(chan notify.Notification, 10)}
}

func (m *MockNotifier) Name() string { return "mock" }

func (m *MockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	m.Sent <- n
	return m.Err
}
