package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type referenceChecker interface {
	StudentExists(ctx context.Context, studentID string) (bool, error)
	ExamExists(ctx context.Context, examID string) (bool, error)
	ClassExists(ctx context.Context, classID string) (bool, error)
}

// ValidationGuardService evaluates candidate grade, attendance and report
// writes before they reach storage. A result with any error-severity finding
// blocks the save; warnings never block. The returned error is reserved for
// infrastructure failures (a reference lookup that could not run), never for
// findings about the record itself.
type ValidationGuardService struct {
	refs     referenceChecker
	metrics  *MetricsService
	maxScore float64
	letters  []string
	now      func() time.Time
	logger   *zap.Logger
}

// NewValidationGuardService constructs the guard. Zero maxScore falls back to
// 100 and an empty letters slice to the default grade letter set.
func NewValidationGuardService(refs referenceChecker, metrics *MetricsService, maxScore float64, letters []string, logger *zap.Logger) *ValidationGuardService {
	if maxScore <= 0 {
		maxScore = 100
	}
	if len(letters) == 0 {
		letters = models.DefaultGradeLetters
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationGuardService{
		refs:     refs,
		metrics:  metrics,
		maxScore: maxScore,
		letters:  letters,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *ValidationGuardService) WithClock(now func() time.Time) *ValidationGuardService {
	s.now = now
	return s
}

// ValidateGradeRecord checks a candidate grade write.
func (s *ValidationGuardService) ValidateGradeRecord(ctx context.Context, rec models.GradeRecord) (*models.ValidationResult, error) {
	result := models.NewValidationResult()

	requireField(result, "student_id", rec.StudentID, "student_id is required")
	requireField(result, "exam_id", rec.ExamID, "exam_id is required")
	requireField(result, "class_id", rec.ClassID, "class_id is required")
	requireField(result, "recorded_by", rec.RecordedBy, "recorded_by is required")

	if rec.Score == nil {
		result.AddError("score", "score is required")
	} else if *rec.Score < 0 || *rec.Score > s.maxScore {
		result.AddError("score", fmt.Sprintf("score must be between 0 and %g", s.maxScore))
	}

	if rec.GradeLetter != "" && !s.knownLetter(rec.GradeLetter) {
		result.AddError("grade_letter", fmt.Sprintf("grade_letter must be one of %s", strings.Join(s.letters, ", ")))
	}

	if err := s.checkReference(ctx, result, "student_id", rec.StudentID, s.refs.StudentExists, "referenced student does not exist"); err != nil {
		return nil, err
	}
	if err := s.checkReference(ctx, result, "exam_id", rec.ExamID, s.refs.ExamExists, "referenced exam does not exist"); err != nil {
		return nil, err
	}
	if err := s.checkReference(ctx, result, "class_id", rec.ClassID, s.refs.ClassExists, "referenced class does not exist"); err != nil {
		return nil, err
	}

	s.metrics.RecordValidationCheck(string(models.RecordKindGrade), result.BlockedFromSave)
	return result, nil
}

// ValidateAttendanceRecord checks a candidate attendance write. The date must
// be an ISO calendar date and must not lie in the future.
func (s *ValidationGuardService) ValidateAttendanceRecord(ctx context.Context, rec models.AttendanceRecord) (*models.ValidationResult, error) {
	result := models.NewValidationResult()

	requireField(result, "student_id", rec.StudentID, "student_id is required")
	requireField(result, "class_id", rec.ClassID, "class_id is required")
	requireField(result, "recorded_by", rec.RecordedBy, "recorded_by is required")

	switch {
	case strings.TrimSpace(rec.Date) == "":
		result.AddError("date", "date is required")
	default:
		parsed, err := time.Parse(dateLayout, rec.Date)
		if err != nil {
			result.AddError("date", "date must be in YYYY-MM-DD format")
		} else if parsed.After(endOfDay(s.now())) {
			result.AddError("date", "date cannot be in the future")
		}
	}

	switch {
	case rec.Status == "":
		result.AddError("status", "status is required")
	case !rec.Status.Valid():
		result.AddError("status", "status must be one of present, absent, late, excused, on-leave")
	}

	if err := s.checkReference(ctx, result, "student_id", rec.StudentID, s.refs.StudentExists, "referenced student does not exist"); err != nil {
		return nil, err
	}
	if err := s.checkReference(ctx, result, "class_id", rec.ClassID, s.refs.ClassExists, "referenced class does not exist"); err != nil {
		return nil, err
	}

	s.metrics.RecordValidationCheck(string(models.RecordKindAttendance), result.BlockedFromSave)
	return result, nil
}

// ValidateReportRecord checks a candidate report definition. An entity that
// cannot be resolved yields a warning rather than a blocking error, since some
// report subjects live outside the student roster.
func (s *ValidationGuardService) ValidateReportRecord(ctx context.Context, rec models.ReportRecord) (*models.ValidationResult, error) {
	result := models.NewValidationResult()

	switch {
	case rec.ReportType == "":
		result.AddError("report_type", "report_type is required")
	case !rec.ReportType.Valid():
		result.AddError("report_type", "report_type must be one of grade_summary, attendance_summary, class_performance, student_progress")
	}

	start, startOK := parseOptionalDate(result, "date_range_start", rec.DateRangeStart)
	end, endOK := parseOptionalDate(result, "date_range_end", rec.DateRangeEnd)
	if startOK && endOK && rec.DateRangeStart != "" && rec.DateRangeEnd != "" && start.After(end) {
		result.AddError("date_range", "date_range_start must be before or equal to date_range_end")
	}

	if strings.TrimSpace(rec.EntityID) != "" {
		exists, err := s.refs.StudentExists(ctx, rec.EntityID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report entity")
		}
		if !exists {
			result.AddWarning("entity_id", "entity_id does not match a known student")
		}
	}

	s.metrics.RecordValidationCheck(string(models.RecordKindReport), result.BlockedFromSave)
	return result, nil
}

// ShouldBlockSave reports whether the result forbids persisting the record.
func (s *ValidationGuardService) ShouldBlockSave(result *models.ValidationResult) bool {
	return result != nil && result.BlockedFromSave
}

// FormatValidationErrors renders findings as a multi-line human-readable
// block for logs and operator-facing messages.
func (s *ValidationGuardService) FormatValidationErrors(kind models.RecordKind, errs []models.ValidationError) string {
	if len(errs) == 0 {
		return fmt.Sprintf("%s record passed validation", kind.Label())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s record validation failed:", kind.Label())
	for _, e := range errs {
		fmt.Fprintf(&b, "\n  - %s: %s", e.Field, e.Message)
	}
	return b.String()
}

// Summary condenses a result into counts and a blocked flag for display.
func (s *ValidationGuardService) Summary(result *models.ValidationResult) models.ValidationSummary {
	summary := models.ValidationSummary{BlockedStatus: "OK"}
	if result == nil {
		return summary
	}
	summary.ErrorCount = len(result.Errors)
	summary.WarningCount = len(result.Warnings)
	if result.BlockedFromSave {
		summary.BlockedStatus = "BLOCKED"
	}
	return summary
}

func (s *ValidationGuardService) checkReference(ctx context.Context, result *models.ValidationResult, field, id string, exists func(context.Context, string) (bool, error), message string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ok, err := exists(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to resolve %s", field))
	}
	if !ok {
		result.AddError(field, message)
	}
	return nil
}

func (s *ValidationGuardService) knownLetter(letter string) bool {
	for _, l := range s.letters {
		if strings.EqualFold(l, letter) {
			return true
		}
	}
	return false
}

func requireField(result *models.ValidationResult, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		result.AddError(field, message)
	}
}

func parseOptionalDate(result *models.ValidationResult, field, value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		result.AddError(field, fmt.Sprintf("%s must be in YYYY-MM-DD format", field))
		return time.Time{}, false
	}
	return parsed, true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
