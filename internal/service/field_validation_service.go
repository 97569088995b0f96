package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sia-validation-api/internal/models"
)

var (
	studentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	namePattern      = regexp.MustCompile(`^[A-Za-z][A-Za-z' -]*$`)
	yearPattern      = regexp.MustCompile(`^([0-9]{1,2}|[A-Za-z])$`)
	sectionPattern   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	emailPattern     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type fieldValidationAuditor interface {
	LogBulkFieldValidation(ctx context.Context, actor models.Actor, processed, successful, failed int, rowErrors models.ValidationErrorList) (*models.ValidationActionLog, error)
}

// StudentFieldValidationService checks imported student rows field by field.
// The pure validators perform no I/O; only the WithLogging variant writes a
// single audit entry per call.
type StudentFieldValidationService struct {
	required []models.RequiredField
	auditor  fieldValidationAuditor
	logger   *zap.Logger
}

// NewStudentFieldValidationService constructs the service. An empty required
// slice falls back to the default required-field table.
func NewStudentFieldValidationService(required []models.RequiredField, auditor fieldValidationAuditor, logger *zap.Logger) *StudentFieldValidationService {
	if len(required) == 0 {
		required = models.DefaultRequiredStudentFields
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentFieldValidationService{required: required, auditor: auditor, logger: logger}
}

// RequiredFieldsFromNames maps configured field names onto the known
// display-name table, so deployments can trim or reorder the required set.
func RequiredFieldsFromNames(names []string) []models.RequiredField {
	if len(names) == 0 {
		return nil
	}
	display := make(map[string]string, len(models.DefaultRequiredStudentFields))
	for _, f := range models.DefaultRequiredStudentFields {
		display[f.Name] = f.DisplayName
	}
	fields := make([]models.RequiredField, 0, len(names))
	for _, name := range names {
		label, ok := display[name]
		if !ok {
			label = strings.Title(strings.ReplaceAll(name, "_", " ")) //nolint:staticcheck
		}
		fields = append(fields, models.RequiredField{Name: name, DisplayName: label})
	}
	return fields
}

// ValidateStudentRecord checks one row. Missing fields (empty after trim) and
// invalid fields (present but malformed) are reported in separate sets.
func (s *StudentFieldValidationService) ValidateStudentRecord(rec models.StudentRecordInput, rowIndex int) models.StudentFieldValidationResult {
	result := models.StudentFieldValidationResult{RowIndex: rowIndex, IsValid: true}

	for _, field := range s.required {
		if strings.TrimSpace(fieldValue(rec, field.Name)) == "" {
			result.MissingFields = append(result.MissingFields, field.Name)
			result.Errors = append(result.Errors, models.ValidationError{
				Field:    field.Name,
				Message:  fmt.Sprintf("%s is required", field.DisplayName),
				Severity: models.SeverityError,
			})
			result.IsValid = false
		}
	}

	checks := []struct {
		name    string
		value   string
		valid   func(string) bool
		message string
	}{
		{"student_id", rec.StudentID, validStudentID, "Student ID must be alphanumeric (with - or _) and at least 3 characters"},
		{"first_name", rec.FirstName, validName, "First Name may contain letters, spaces, hyphens and apostrophes and must be at least 2 characters"},
		{"last_name", rec.LastName, validName, "Last Name may contain letters, spaces, hyphens and apostrophes and must be at least 2 characters"},
		{"year", rec.Year, yearPattern.MatchString, "Year Level must be a short number or a single letter code"},
		{"section", rec.Section, sectionPattern.MatchString, "Section must be alphanumeric"},
		{"email", rec.Email, emailPattern.MatchString, "Email must look like local@domain.tld"},
	}
	for _, check := range checks {
		value := strings.TrimSpace(check.value)
		if value == "" {
			continue
		}
		if !check.valid(value) {
			result.InvalidFields = append(result.InvalidFields, check.name)
			result.Errors = append(result.Errors, models.ValidationError{
				Field:    check.name,
				Message:  check.message,
				Severity: models.SeverityError,
			})
			result.IsValid = false
		}
	}

	return result
}

// ValidateBatch partitions a batch into valid and invalid rows and aggregates
// per-field missing counts across the batch.
func (s *StudentFieldValidationService) ValidateBatch(records []models.StudentRecordInput) models.BatchFieldValidationResult {
	result := models.BatchFieldValidationResult{
		Processed:     len(records),
		MissingCounts: make(map[string]int),
	}
	for i, rec := range records {
		rowResult := s.ValidateStudentRecord(rec, i)
		for _, field := range rowResult.MissingFields {
			result.MissingCounts[field]++
		}
		if rowResult.IsValid {
			result.Valid = append(result.Valid, rec)
		} else {
			result.Invalid = append(result.Invalid, rowResult)
		}
	}
	return result
}

// ValidateBatchWithLogging validates a batch and records exactly one audit
// entry summarising it, regardless of batch size. Audit failures do not
// affect the returned result.
func (s *StudentFieldValidationService) ValidateBatchWithLogging(ctx context.Context, records []models.StudentRecordInput, actor models.Actor) models.BatchFieldValidationResult {
	result := s.ValidateBatch(records)

	if s.auditor == nil {
		return result
	}
	var rowErrors models.ValidationErrorList
	for _, invalid := range result.Invalid {
		for _, e := range invalid.Errors {
			rowErrors = append(rowErrors, models.ValidationError{
				Field:    fmt.Sprintf("row %d: %s", invalid.RowIndex, e.Field),
				Message:  e.Message,
				Severity: e.Severity,
			})
		}
	}
	if _, err := s.auditor.LogBulkFieldValidation(ctx, actor, result.Processed, len(result.Valid), len(result.Invalid), rowErrors); err != nil {
		s.logger.Warn("failed to record bulk field validation audit entry", zap.Error(err))
	}
	return result
}

func validStudentID(value string) bool {
	return len(value) >= 3 && studentIDPattern.MatchString(value)
}

func validName(value string) bool {
	return len(value) >= 2 && namePattern.MatchString(value)
}

func fieldValue(rec models.StudentRecordInput, name string) string {
	switch name {
	case "student_id":
		return rec.StudentID
	case "first_name":
		return rec.FirstName
	case "last_name":
		return rec.LastName
	case "year", "grade":
		return rec.Year
	case "section", "block":
		return rec.Section
	case "email":
		return rec.Email
	default:
		return ""
	}
}
