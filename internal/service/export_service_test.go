package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/models"
	"github.com/noah-isme/sia-validation-api/pkg/storage"
)

type invalidRecordListerStub struct {
	entries []models.InvalidRecordLog
	filters []models.InvalidRecordFilter
}

func (s *invalidRecordListerStub) List(ctx context.Context, filter models.InvalidRecordFilter) ([]models.InvalidRecordLog, error) {
	s.filters = append(s.filters, filter)
	return s.entries, nil
}

type actionLogListerStub struct {
	entries []models.ValidationActionLog
}

func (s *actionLogListerStub) List(ctx context.Context, filter models.ActionLogFilter) ([]models.ValidationActionLog, error) {
	return s.entries, nil
}

type memoryStorageStub struct {
	files map[string][]byte
}

func newMemoryStorageStub() *memoryStorageStub {
	return &memoryStorageStub{files: make(map[string][]byte)}
}

func (m *memoryStorageStub) Save(filename string, data []byte) (string, error) {
	m.files[filename] = data
	return filename, nil
}

func (m *memoryStorageStub) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *memoryStorageStub) Delete(filename string) error {
	delete(m.files, filename)
	return nil
}

func (m *memoryStorageStub) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func sampleLedgerEntries() []models.InvalidRecordLog {
	return []models.InvalidRecordLog{
		{
			RecordType:      models.RecordKindGrade,
			EntityID:        "S-001",
			UserEmail:       "admin@school.test",
			RejectionReason: "Grade record rejected with 1 validation error(s)",
			AttemptedAt:     time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
			ValidationErrors: models.ValidationErrorList{
				{Field: "score", Message: "score must be between 0 and 100", Severity: models.SeverityError},
			},
		},
	}
}

func newExportFixture(ledger *invalidRecordListerStub, actions *actionLogListerStub) (*ExportService, *memoryStorageStub) {
	files := newMemoryStorageStub()
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	svc := NewExportService(ledger, actions, files, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
	return svc, files
}

func TestGenerateInvalidRecordCSV(t *testing.T) {
	ledger := &invalidRecordListerStub{entries: sampleLedgerEntries()}
	svc, files := newExportFixture(ledger, &actionLogListerStub{})

	job := &models.ExportJob{
		ID:     "job-1",
		Type:   models.ExportTypeInvalidRecords,
		Params: models.ExportJobParams{Format: models.ExportFormatCSV, RecordType: models.RecordKindGrade},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download/"))
	assert.Equal(t, models.ExportFormatCSV, result.Format)

	require.Len(t, files.files, 1)
	var content string
	for name, data := range files.files {
		assert.True(t, strings.HasPrefix(name, "invalid_records_"))
		assert.True(t, strings.HasSuffix(name, ".csv"))
		content = string(data)
	}
	assert.Contains(t, content, "Attempted At,Record Type,Entity ID,Submitted By,Rejection Reason,Errors")
	assert.Contains(t, content, "S-001")
	assert.Contains(t, content, "score: score must be between 0 and 100")

	// The ledger query carries the requested filters.
	require.Len(t, ledger.filters, 1)
	assert.Equal(t, models.RecordKindGrade, ledger.filters[0].RecordType)
	assert.Equal(t, 500, ledger.filters[0].Limit)
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	svc, _ := newExportFixture(&invalidRecordListerStub{entries: sampleLedgerEntries()}, &actionLogListerStub{})

	job := &models.ExportJob{
		ID:     "job-7",
		Type:   models.ExportTypeInvalidRecords,
		Params: models.ExportJobParams{Format: models.ExportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-7", jobID)
	assert.Equal(t, result.RelativePath, relPath)
}

func TestGenerateActionLogPDF(t *testing.T) {
	actions := &actionLogListerStub{entries: []models.ValidationActionLog{
		{
			Timestamp:         time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
			ActionType:        models.ActionMarkOfficial,
			ActionStatus:      models.ActionStatusSuccess,
			AdminEmail:        "admin@school.test",
			TargetType:        "student_record",
			TargetID:          "S-001",
			RecordsProcessed:  1,
			RecordsSuccessful: 1,
			Details:           "marked student record S-001 as official",
		},
	}}
	svc, files := newExportFixture(&invalidRecordListerStub{}, actions)

	job := &models.ExportJob{
		ID:     "job-2",
		Type:   models.ExportTypeValidationActions,
		Params: models.ExportJobParams{Format: models.ExportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatPDF, result.Format)

	require.Len(t, files.files, 1)
	for name, data := range files.files {
		assert.True(t, strings.HasSuffix(name, ".pdf"))
		assert.True(t, len(data) > 0)
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	svc, _ := newExportFixture(&invalidRecordListerStub{}, &actionLogListerStub{})
	_, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-3",
		Type:   "students",
		Params: models.ExportJobParams{Format: models.ExportFormatCSV},
	})
	require.Error(t, err)
}

func TestRenderCSVForcesFormat(t *testing.T) {
	svc, files := newExportFixture(&invalidRecordListerStub{entries: sampleLedgerEntries()}, &actionLogListerStub{})

	payload, filename, err := svc.RenderCSV(context.Background(), models.ExportTypeInvalidRecords, models.ExportJobParams{Format: models.ExportFormatPDF})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"), "synchronous exports are always CSV")
	assert.Contains(t, string(payload), "Rejection Reason")
	assert.Empty(t, files.files, "synchronous exports are not persisted")
}

func TestFlattenFindings(t *testing.T) {
	assert.Equal(t, "", flattenFindings(nil))
	out := flattenFindings(models.ValidationErrorList{
		{Field: "a", Message: "m1"},
		{Field: "b", Message: "m2"},
	})
	assert.Equal(t, "a: m1; b: m2", out)
}
