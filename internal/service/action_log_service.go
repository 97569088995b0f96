package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

type actionLogStore interface {
	Create(ctx context.Context, log *models.ValidationActionLog) error
	List(ctx context.Context, filter models.ActionLogFilter) ([]models.ValidationActionLog, error)
}

// ActionLogService records deliberate operator actions in the audit trail.
// One entry per action; bulk operations are summarised into a single entry.
type ActionLogService struct {
	store  actionLogStore
	now    func() time.Time
	logger *zap.Logger
}

// NewActionLogService constructs the service.
func NewActionLogService(store actionLogStore, logger *zap.Logger) *ActionLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionLogService{store: store, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

func (s *ActionLogService) record(ctx context.Context, entry *models.ValidationActionLog) (*models.ValidationActionLog, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.ActionStatus == "" {
		entry.ActionStatus = models.ActionStatusSuccess
	}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record audit entry")
	}
	return entry, nil
}

// LogBulkFieldValidation summarises one field-validation batch. The status is
// success when every row passed and warning otherwise.
func (s *ActionLogService) LogBulkFieldValidation(ctx context.Context, actor models.Actor, processed, successful, failed int, rowErrors models.ValidationErrorList) (*models.ValidationActionLog, error) {
	status := models.ActionStatusSuccess
	if failed > 0 {
		status = models.ActionStatusWarning
	}
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionFieldValidation,
		ActionStatus:      status,
		TargetType:        "student_batch",
		TargetID:          "batch",
		RecordsProcessed:  processed,
		RecordsSuccessful: successful,
		RecordsFailed:     failed,
		ValidationErrors:  rowErrors,
		Details:           fmt.Sprintf("validated %d student rows, %d passed, %d failed", processed, successful, failed),
	})
}

// LogQualityCheck records a data quality sweep over a target collection.
func (s *ActionLogService) LogQualityCheck(ctx context.Context, actor models.Actor, targetType, targetID string, issues models.ValidationErrorList, details string) (*models.ValidationActionLog, error) {
	status := models.ActionStatusSuccess
	if len(issues) > 0 {
		status = models.ActionStatusWarning
	}
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:       actor.ID,
		AdminEmail:    actor.Email,
		ActionType:    models.ActionQualityCheck,
		ActionStatus:  status,
		TargetType:    targetType,
		TargetID:      targetID,
		QualityIssues: issues,
		Details:       details,
	})
}

// LogDuplicateDetection records a duplicate scan and how many duplicates it
// found.
func (s *ActionLogService) LogDuplicateDetection(ctx context.Context, actor models.Actor, targetType string, processed, duplicates int, details string) (*models.ValidationActionLog, error) {
	status := models.ActionStatusSuccess
	if duplicates > 0 {
		status = models.ActionStatusWarning
	}
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionDuplicateDetection,
		ActionStatus:      status,
		TargetType:        targetType,
		TargetID:          targetType,
		RecordsProcessed:  processed,
		RecordsFailed:     duplicates,
		RecordsSuccessful: processed - duplicates,
		Details:           details,
	})
}

// LogMarkAsOfficial records the promotion of one student record.
func (s *ActionLogService) LogMarkAsOfficial(ctx context.Context, actor models.Actor, studentID, studentName string) (*models.ValidationActionLog, error) {
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionMarkOfficial,
		TargetType:        "student_record",
		TargetID:          studentID,
		TargetName:        studentName,
		RecordsProcessed:  1,
		RecordsSuccessful: 1,
		Details:           fmt.Sprintf("marked student record %s as official", studentID),
	})
}

// LogBulkMarkAsOfficial summarises a sequential bulk promotion.
func (s *ActionLogService) LogBulkMarkAsOfficial(ctx context.Context, actor models.Actor, result models.BulkOfficialResult) (*models.ValidationActionLog, error) {
	status := models.ActionStatusSuccess
	if len(result.Failed) > 0 {
		status = models.ActionStatusWarning
	}
	var failures models.ValidationErrorList
	for _, id := range result.Failed {
		failures = append(failures, models.ValidationError{
			Field:    id,
			Message:  "could not be marked as official",
			Severity: models.SeverityError,
		})
	}
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionBulkValidation,
		ActionStatus:      status,
		TargetType:        "student_record",
		TargetID:          "bulk",
		RecordsProcessed:  result.Total,
		RecordsSuccessful: result.Success,
		RecordsFailed:     len(result.Failed),
		ValidationErrors:  failures,
		Details:           fmt.Sprintf("bulk promotion: %d of %d records marked official", result.Success, result.Total),
	})
}

// LogMarkAsPending records a record moving into the pending review state.
func (s *ActionLogService) LogMarkAsPending(ctx context.Context, actor models.Actor, studentID, studentName string) (*models.ValidationActionLog, error) {
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionMarkPending,
		TargetType:        "student_record",
		TargetID:          studentID,
		TargetName:        studentName,
		RecordsProcessed:  1,
		RecordsSuccessful: 1,
		Details:           fmt.Sprintf("marked student record %s as pending review", studentID),
	})
}

// LogValidationReset records a reset back to the unvalidated state. The
// operator-supplied reason goes into the details verbatim.
func (s *ActionLogService) LogValidationReset(ctx context.Context, actor models.Actor, studentID, studentName, reason string) (*models.ValidationActionLog, error) {
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:           actor.ID,
		AdminEmail:        actor.Email,
		ActionType:        models.ActionValidationReset,
		ActionStatus:      models.ActionStatusInfo,
		TargetType:        "student_record",
		TargetID:          studentID,
		TargetName:        studentName,
		RecordsProcessed:  1,
		RecordsSuccessful: 1,
		Details:           fmt.Sprintf("validation status reset: %s", reason),
	})
}

// LogOverrideValidation records an explicit bypass of validation findings.
func (s *ActionLogService) LogOverrideValidation(ctx context.Context, actor models.Actor, targetType, targetID, reason string, overridden models.ValidationErrorList) (*models.ValidationActionLog, error) {
	return s.record(ctx, &models.ValidationActionLog{
		AdminID:          actor.ID,
		AdminEmail:       actor.Email,
		ActionType:       models.ActionOverrideValidation,
		ActionStatus:     models.ActionStatusWarning,
		TargetType:       targetType,
		TargetID:         targetID,
		ValidationErrors: overridden,
		Details:          fmt.Sprintf("validation overridden: %s", reason),
	})
}

// List returns audit entries matching the filter, newest first.
func (s *ActionLogService) List(ctx context.Context, filter models.ActionLogFilter) ([]models.ValidationActionLog, error) {
	if filter.ActionType != "" && !filter.ActionType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown action type %q", filter.ActionType))
	}
	logs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit entries")
	}
	return logs, nil
}
