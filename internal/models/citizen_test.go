package models_test

import (
	"reflect"
	"testing"

	"cityvoice/backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestCitizenBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestCitizenBeforeCreate_GeneratesUUID(t *testing.T) {
	citizen := &models.Citizen{Verified: true, TrustScore: decimal.NewFromInt(2)}
	assert.Empty(t, citizen.ID)

	err := citizen.BeforeCreate(nil) // nil *gorm.DB is acceptable for this hook

	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(citizen.ID)
	assert.NoError(t, parseErr, "Citizen ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestCitizenBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestCitizenBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	citizen := &models.Citizen{ID: existingID}

	assert.NoError(t, citizen.BeforeCreate(nil))
	assert.Equal(t, existingID, citizen.ID)
}

// TestReportBeforeCreate_Defaults verifies ID generation and the ledger default.
func TestReportBeforeCreate_Defaults(t *testing.T) {
	report := &models.Report{Title: "Broken streetlight", Status: models.StatusPending}

	assert.NoError(t, report.BeforeCreate(nil))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, models.LedgerNone, report.Ledger)
}

func TestReportIsAnonymous(t *testing.T) {
	empty := ""
	owner := uuid.New().String()

	assert.True(t, (&models.Report{}).IsAnonymous())
	assert.True(t, (&models.Report{CitizenID: &empty}).IsAnonymous())
	assert.False(t, (&models.Report{CitizenID: &owner}).IsAnonymous())
}

func TestLedgerStateViews(t *testing.T) {
	tests := []struct {
		state   models.LedgerState
		credit  bool
		penalty bool
	}{
		{models.LedgerNone, false, false},
		{models.LedgerCreditApplied, true, false},
		{models.LedgerPenaltyApplied, false, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state.OrNone()), func(t *testing.T) {
			assert.Equal(t, tt.credit, tt.state.CreditApplied())
			assert.Equal(t, tt.penalty, tt.state.PenaltyApplied())
		})
	}
	assert.Equal(t, models.LedgerNone, models.LedgerState("").OrNone())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   models.ReportStatus
		wantOK bool
	}{
		{"Pending", models.StatusPending, true},
		{"in progress", models.StatusInProgress, true},
		{"  RESOLVED ", models.StatusResolved, true},
		{"manual review", models.StatusManualReview, true},
		{"invalid", models.StatusInvalid, true},
		{"archived", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := models.ParseStatus(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReportStructTags catches accidental removal of storage tags the ledger depends on.
func TestReportStructTags(t *testing.T) {
	reportType := reflect.TypeOf(models.Report{})

	idField, found := reportType.FieldByName("ID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")

	ledgerField, found := reportType.FieldByName("Ledger")
	assert.True(t, found)
	assert.Contains(t, ledgerField.Tag.Get("gorm"), "default:'none'")

	attachments, found := reportType.FieldByName("Attachments")
	assert.True(t, found)
	assert.Contains(t, attachments.Tag.Get("gorm"), "type:text[]")
}

func TestParseRole(t *testing.T) {
	r, ok := models.ParseRole(" Staff ")
	assert.True(t, ok)
	assert.Equal(t, models.RoleStaff, r)
	assert.True(t, r.IsStaff())
	assert.True(t, models.RoleAdmin.IsStaff())
	assert.False(t, models.RoleCitizen.IsStaff())

	_, ok = models.ParseRole("mayor")
	assert.False(t, ok)
}
