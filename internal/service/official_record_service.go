package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

type studentRecordStore interface {
	List(ctx context.Context, filter models.StudentRecordFilter) ([]models.StudentRecord, int, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.StudentRecord, error)
	Create(ctx context.Context, rec *models.StudentRecord) error
	SetValidationStatus(ctx context.Context, studentID string, status models.ValidationStatus, validationDate *time.Time, validatedBy *string) error
	CountByStatus(ctx context.Context, status models.ValidationStatus) (int, error)
}

type lifecycleAuditor interface {
	LogMarkAsOfficial(ctx context.Context, actor models.Actor, studentID, studentName string) (*models.ValidationActionLog, error)
	LogMarkAsPending(ctx context.Context, actor models.Actor, studentID, studentName string) (*models.ValidationActionLog, error)
	LogValidationReset(ctx context.Context, actor models.Actor, studentID, studentName, reason string) (*models.ValidationActionLog, error)
	LogBulkMarkAsOfficial(ctx context.Context, actor models.Actor, result models.BulkOfficialResult) (*models.ValidationActionLog, error)
}

// OfficialRecordService drives the student record lifecycle: unvalidated to
// pending to official, with reset always returning to unvalidated. Every
// transition is audited best effort; audit failures never roll back the
// transition itself.
type OfficialRecordService struct {
	records studentRecordStore
	audit   lifecycleAuditor
	metrics *MetricsService
	now     func() time.Time
	logger  *zap.Logger
}

// NewOfficialRecordService constructs the service.
func NewOfficialRecordService(records studentRecordStore, audit lifecycleAuditor, metrics *MetricsService, logger *zap.Logger) *OfficialRecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfficialRecordService{
		records: records,
		audit:   audit,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// CreateStudentRecord registers a new student record in the unvalidated state.
func (s *OfficialRecordService) CreateStudentRecord(ctx context.Context, rec *models.StudentRecord) (*models.StudentRecord, error) {
	if strings.TrimSpace(rec.StudentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	existing, err := s.records.FindByStudentID(ctx, rec.StudentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for existing student record")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student record %s already exists", rec.StudentID))
	}
	rec.ValidationStatus = models.StatusUnvalidated
	rec.ValidationDate = nil
	rec.ValidatedBy = nil
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student record")
	}
	return rec, nil
}

// Get returns a single student record.
func (s *OfficialRecordService) Get(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	rec, err := s.records.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student record %s not found", studentID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}
	return rec, nil
}

// List returns student records matching the filter with the total count.
func (s *OfficialRecordService) List(ctx context.Context, filter models.StudentRecordFilter) ([]models.StudentRecord, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown validation status %q", filter.Status))
	}
	records, total, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student records")
	}
	return records, total, nil
}

// MarkAsOfficial promotes one record to the official state, stamping the
// validation date and validating actor.
func (s *OfficialRecordService) MarkAsOfficial(ctx context.Context, studentID string, actor models.Actor) (*models.StudentRecord, error) {
	rec, err := s.transition(ctx, studentID, models.StatusOfficial, actor)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOfficialAction(string(models.ActionMarkOfficial))
	if _, auditErr := s.audit.LogMarkAsOfficial(ctx, actor, rec.StudentID, recordName(rec)); auditErr != nil {
		s.auditFailed("mark_official", studentID, auditErr)
	}
	return rec, nil
}

// MarkAsPending moves one record into the pending review state.
func (s *OfficialRecordService) MarkAsPending(ctx context.Context, studentID string, actor models.Actor) (*models.StudentRecord, error) {
	rec, err := s.transition(ctx, studentID, models.StatusPending, actor)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOfficialAction(string(models.ActionMarkPending))
	if _, auditErr := s.audit.LogMarkAsPending(ctx, actor, rec.StudentID, recordName(rec)); auditErr != nil {
		s.auditFailed("mark_pending", studentID, auditErr)
	}
	return rec, nil
}

// MarkMultipleAsOfficial promotes records strictly in input order. A failure
// on one ID is collected and the loop continues; one summarising audit entry
// covers the whole batch.
func (s *OfficialRecordService) MarkMultipleAsOfficial(ctx context.Context, studentIDs []string, actor models.Actor) (*models.BulkOfficialResult, error) {
	if len(studentIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one student_id is required")
	}
	result := &models.BulkOfficialResult{Total: len(studentIDs)}
	for _, id := range studentIDs {
		if _, err := s.transition(ctx, id, models.StatusOfficial, actor); err != nil {
			s.logger.Warn("bulk promotion skipped record",
				zap.String("student_id", id),
				zap.Error(err))
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Success++
		s.metrics.RecordOfficialAction(string(models.ActionMarkOfficial))
	}
	if _, auditErr := s.audit.LogBulkMarkAsOfficial(ctx, actor, *result); auditErr != nil {
		s.auditFailed("bulk_validation", "bulk", auditErr)
	}
	return result, nil
}

// ResetValidationStatus returns a record to the unvalidated state, clearing
// the validation date and actor. A reason is mandatory and is preserved in
// the audit trail. Resetting an already-unvalidated record is a no-op that is
// still audited.
func (s *OfficialRecordService) ResetValidationStatus(ctx context.Context, studentID, reason string, actor models.Actor) (*models.StudentRecord, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a reason is required to reset validation status")
	}
	if err := s.records.SetValidationStatus(ctx, studentID, models.StatusUnvalidated, nil, nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student record %s not found", studentID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset validation status")
	}
	rec, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOfficialAction(string(models.ActionValidationReset))
	if _, auditErr := s.audit.LogValidationReset(ctx, actor, rec.StudentID, recordName(rec), reason); auditErr != nil {
		s.auditFailed("validation_reset", studentID, auditErr)
	}
	return rec, nil
}

// Statistics counts records per lifecycle bucket. Each bucket is re-queried
// so the numbers reflect storage, not a cached counter.
func (s *OfficialRecordService) Statistics(ctx context.Context) (*models.ValidationStatistics, error) {
	stats := &models.ValidationStatistics{}
	buckets := []struct {
		status models.ValidationStatus
		dest   *int
	}{
		{models.StatusOfficial, &stats.Official},
		{models.StatusUnvalidated, &stats.Unvalidated},
		{models.StatusPending, &stats.Pending},
	}
	for _, bucket := range buckets {
		count, err := s.records.CountByStatus(ctx, bucket.status)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count student records")
		}
		*bucket.dest = count
	}
	stats.Total = stats.Official + stats.Unvalidated + stats.Pending
	return stats, nil
}

func (s *OfficialRecordService) transition(ctx context.Context, studentID string, status models.ValidationStatus, actor models.Actor) (*models.StudentRecord, error) {
	now := s.now()
	validatedBy := actor.Email
	if err := s.records.SetValidationStatus(ctx, studentID, status, &now, &validatedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student record %s not found", studentID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update validation status")
	}
	return s.Get(ctx, studentID)
}

func (s *OfficialRecordService) auditFailed(action, studentID string, err error) {
	s.logger.Warn("failed to record lifecycle audit entry",
		zap.String("action", action),
		zap.String("student_id", studentID),
		zap.Error(err))
	s.metrics.RecordAuditWriteFailure("validation_actions")
}

func recordName(rec *models.StudentRecord) string {
	return strings.TrimSpace(rec.FirstName + " " + rec.LastName)
}
