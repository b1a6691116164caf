package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cityvoice/backend/internal/models"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a citizen or report row does not exist.
var ErrNotFound = errors.New("record not found")

// Storage is the persistence boundary of the intake core. Methods ending in ForUpdate
// lock the returned row until the surrounding InTx callback returns.
type Storage interface {
	InTx(ctx context.Context, fn func(tx Storage) error) error

	GetCitizenByID(ctx context.Context, id string) (*models.Citizen, error)
	GetCitizenForUpdate(ctx context.Context, id string) (*models.Citizen, error)
	GetCitizenByTelegramChatID(ctx context.Context, chatID int64) (*models.Citizen, error)
	UpdateCitizenLanguage(ctx context.Context, id, lang string) error
	UpdateCitizenScore(ctx context.Context, id string, score decimal.Decimal) error
	SetCitizenVerified(ctx context.Context, id string, verified bool) error

	CountReportsByCitizen(ctx context.Context, citizenID string) (int64, error)
	CountReportsSince(ctx context.Context, citizenID string, since time.Time) (int64, error)

	CreateReport(ctx context.Context, report *models.Report) error
	GetReportByID(ctx context.Context, id string) (*models.Report, error)
	GetReportForUpdate(ctx context.Context, id string) (*models.Report, error)
	UpdateReport(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, error)

	SaveAdjustment(ctx context.Context, adj *models.TrustAdjustment) error
	ListAdjustments(ctx context.Context, reportID string) ([]models.TrustAdjustment, error)
	SaveStatusChange(ctx context.Context, change *models.StatusChange) error
	ListStatusChanges(ctx context.Context, reportID string) ([]models.StatusChange, error)
}

// ReportFilter narrows ListReports. Zero values mean "any".
type ReportFilter struct {
	Status       models.ReportStatus
	ManualReview *bool
	CitizenID    string
	Limit        int
	Offset       int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates the intake tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Citizen{},
		&models.Report{},
		&models.TrustAdjustment{},
		&models.StatusChange{},
	)
}

// InTx runs fn inside one database transaction. The transaction commits when fn returns nil.
func (s *Service) InTx(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

// Ping checks both backing stores.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) GetCitizenByID(ctx context.Context, id string) (*models.Citizen, error) {
	var citizen models.Citizen
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&citizen).Error; err != nil {
		return nil, notFound(err)
	}
	return &citizen, nil
}

// GetCitizenForUpdate loads the citizen and locks the row for the rest of the transaction.
func (s *Service) GetCitizenForUpdate(ctx context.Context, id string) (*models.Citizen, error) {
	var citizen models.Citizen
	err := s.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&citizen).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &citizen, nil
}

func (s *Service) GetCitizenByTelegramChatID(ctx context.Context, chatID int64) (*models.Citizen, error) {
	var citizen models.Citizen
	if err := s.DB.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&citizen).Error; err != nil {
		return nil, notFound(err)
	}
	return &citizen, nil
}

// UpdateCitizenLanguage writes only the language column; the score is owned by the ledger.
func (s *Service) UpdateCitizenLanguage(ctx context.Context, id, lang string) error {
	return s.updateCitizen(ctx, id, "language", lang)
}

func (s *Service) UpdateCitizenScore(ctx context.Context, id string, score decimal.Decimal) error {
	return s.updateCitizen(ctx, id, "trust_score", score)
}

// SetCitizenVerified is written by the account subsystem; the intake core only reads the flag.
func (s *Service) SetCitizenVerified(ctx context.Context, id string, verified bool) error {
	return s.updateCitizen(ctx, id, "verified", verified)
}

func (s *Service) updateCitizen(ctx context.Context, id, column string, value interface{}) error {
	result := s.DB.WithContext(ctx).Model(&models.Citizen{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReportsByCitizen returns the lifetime number of reports filed by the citizen.
func (s *Service) CountReportsByCitizen(ctx context.Context, citizenID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("citizen_id = ?", citizenID).
		Count(&count).Error
	return count, err
}

// CountReportsSince returns the number of reports filed by the citizen at or after since.
func (s *Service) CountReportsSince(ctx context.Context, citizenID string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("citizen_id = ? AND created_at >= ?", citizenID, since).
		Count(&count).Error
	return count, err
}

func (s *Service) CreateReport(ctx context.Context, report *models.Report) error {
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		log.WithError(err).WithField("title", report.Title).Error("failed to save report")
		return err
	}
	return nil
}

func (s *Service) GetReportByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// GetReportForUpdate loads the report and locks the row for the rest of the transaction.
func (s *Service) GetReportForUpdate(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := s.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &report, nil
}

// UpdateReport writes the fields a transition may change.
func (s *Service) UpdateReport(ctx context.Context, report *models.Report) error {
	result := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", report.ID).
		Updates(map[string]interface{}{
			"status":        report.Status,
			"manual_review": report.ManualReview,
			"ledger":        report.Ledger.OrNone(),
			"resolved_at":   report.ResolvedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	q := s.DB.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ManualReview != nil {
		q = q.Where("manual_review = ?", *filter.ManualReview)
	}
	if filter.CitizenID != "" {
		q = q.Where("citizen_id = ?", filter.CitizenID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var reports []models.Report
	err := q.Order("created_at desc").Limit(limit).Offset(filter.Offset).Find(&reports).Error
	return reports, err
}

func (s *Service) SaveAdjustment(ctx context.Context, adj *models.TrustAdjustment) error {
	return s.DB.WithContext(ctx).Create(adj).Error
}

// ListAdjustments returns the audit trail of a report, oldest first.
func (s *Service) ListAdjustments(ctx context.Context, reportID string) ([]models.TrustAdjustment, error) {
	var adjustments []models.TrustAdjustment
	err := s.DB.WithContext(ctx).Where("report_id = ?", reportID).Order("id asc").Find(&adjustments).Error
	return adjustments, err
}

func (s *Service) SaveStatusChange(ctx context.Context, change *models.StatusChange) error {
	return s.DB.WithContext(ctx).Create(change).Error
}

// ListStatusChanges returns the history of a report, oldest first.
func (s *Service) ListStatusChanges(ctx context.Context, reportID string) ([]models.StatusChange, error) {
	var changes []models.StatusChange
	err := s.DB.WithContext(ctx).Where("report_id = ?", reportID).Order("id asc").Find(&changes).Error
	return changes, err
}
