package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/models"
)

type fieldAuditorStub struct {
	entries []models.ValidationActionLog
	err     error
}

func (s *fieldAuditorStub) LogBulkFieldValidation(ctx context.Context, actor models.Actor, processed, successful, failed int, rowErrors models.ValidationErrorList) (*models.ValidationActionLog, error) {
	entry := models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionFieldValidation,
		RecordsProcessed:  processed,
		RecordsSuccessful: successful,
		RecordsFailed:     failed,
		ValidationErrors:  rowErrors,
	}
	s.entries = append(s.entries, entry)
	if s.err != nil {
		return nil, s.err
	}
	return &entry, nil
}

func validStudentRow() models.StudentRecordInput {
	return models.StudentRecordInput{
		StudentID: "STU-2024-001",
		FirstName: "Maria",
		LastName:  "Santos",
		Year:      "10",
		Section:   "A",
	}
}

func TestValidateStudentRecordPasses(t *testing.T) {
	svc := NewStudentFieldValidationService(nil, nil, nil)
	result := svc.ValidateStudentRecord(validStudentRow(), 0)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.MissingFields)
	assert.Empty(t, result.InvalidFields)
	assert.Empty(t, result.Errors)
}

func TestValidateStudentRecordMissingVsInvalid(t *testing.T) {
	svc := NewStudentFieldValidationService(nil, nil, nil)

	rec := validStudentRow()
	rec.FirstName = ""    // missing
	rec.StudentID = "ab"  // present but too short
	rec.Section = "7-B!"  // present but malformed
	result := svc.ValidateStudentRecord(rec, 3)

	assert.Equal(t, 3, result.RowIndex)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"first_name"}, result.MissingFields)
	assert.ElementsMatch(t, []string{"student_id", "section"}, result.InvalidFields)
}

func TestValidateStudentRecordMissingFieldMessageUsesDisplayName(t *testing.T) {
	svc := NewStudentFieldValidationService(nil, nil, nil)
	rec := validStudentRow()
	rec.Year = "   "
	result := svc.ValidateStudentRecord(rec, 0)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "year", result.Errors[0].Field)
	assert.Equal(t, "Year Level is required", result.Errors[0].Message)
}

func TestValidateStudentRecordOptionalEmail(t *testing.T) {
	svc := NewStudentFieldValidationService(nil, nil, nil)

	rec := validStudentRow()
	result := svc.ValidateStudentRecord(rec, 0)
	assert.True(t, result.IsValid, "empty email is not required by default")

	rec.Email = "not-an-email"
	result = svc.ValidateStudentRecord(rec, 0)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"email"}, result.InvalidFields)

	rec.Email = "maria.santos@school.test"
	result = svc.ValidateStudentRecord(rec, 0)
	assert.True(t, result.IsValid)
}

func TestValidateStudentRecordNameCharacters(t *testing.T) {
	svc := NewStudentFieldValidationService(nil, nil, nil)
	for _, name := range []string{"O'Brien", "Mary Jane", "Del-Rosario"} {
		rec := validStudentRow()
		rec.LastName = name
		result := svc.ValidateStudentRecord(rec, 0)
		assert.True(t, result.IsValid, "name %q should be accepted", name)
	}
	for _, name := range []string{"X", "42", "-Lee"} {
		rec := validStudentRow()
		rec.LastName = name
		result := svc.ValidateStudentRecord(rec, 0)
		assert.False(t, result.IsValid, "name %q should be rejected", name)
	}
}

func TestValidateBatchPartitionsAndCounts(t *testing.T) {
	svc := NewStudentFieldValidationService(nil, nil, nil)

	bad1 := validStudentRow()
	bad1.StudentID = ""
	bad2 := validStudentRow()
	bad2.StudentID = ""
	bad2.Section = ""

	result := svc.ValidateBatch([]models.StudentRecordInput{validStudentRow(), bad1, bad2})
	assert.Equal(t, 3, result.Processed)
	assert.Len(t, result.Valid, 1)
	assert.Len(t, result.Invalid, 2)
	assert.Equal(t, 2, result.MissingCounts["student_id"])
	assert.Equal(t, 1, result.MissingCounts["section"])
}

func TestValidateBatchWithLoggingSingleAuditEntry(t *testing.T) {
	auditor := &fieldAuditorStub{}
	svc := NewStudentFieldValidationService(nil, auditor, nil)

	bad := validStudentRow()
	bad.FirstName = ""
	actor := models.Actor{ID: "admin-1", Email: "admin@school.test"}
	result := svc.ValidateBatchWithLogging(context.Background(), []models.StudentRecordInput{validStudentRow(), bad, validStudentRow()}, actor)

	assert.Equal(t, 3, result.Processed)
	require.Len(t, auditor.entries, 1, "exactly one audit entry per batch")
	entry := auditor.entries[0]
	assert.Equal(t, "admin-1", entry.AdminID)
	assert.Equal(t, 3, entry.RecordsProcessed)
	assert.Equal(t, 2, entry.RecordsSuccessful)
	assert.Equal(t, 1, entry.RecordsFailed)
	require.Len(t, entry.ValidationErrors, 1)
	assert.Equal(t, "row 1: first_name", entry.ValidationErrors[0].Field)
}

func TestValidateBatchWithLoggingAuditFailureIgnored(t *testing.T) {
	auditor := &fieldAuditorStub{err: errors.New("audit store down")}
	svc := NewStudentFieldValidationService(nil, auditor, nil)

	result := svc.ValidateBatchWithLogging(context.Background(), []models.StudentRecordInput{validStudentRow()}, models.Actor{ID: "admin-1"})
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, result.Valid, 1)
}

func TestRequiredFieldsFromNames(t *testing.T) {
	fields := RequiredFieldsFromNames([]string{"student_id", "guardian_name"})
	require.Len(t, fields, 2)
	assert.Equal(t, "Student ID", fields[0].DisplayName)
	assert.Equal(t, "Guardian Name", fields[1].DisplayName)

	assert.Nil(t, RequiredFieldsFromNames(nil))
}
