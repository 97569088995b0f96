package models

import "time"

// ActionType identifies the validation action families recorded in the audit
// trail. These are deliberate operator actions, distinct from rejection logs.
type ActionType string

const (
	ActionFieldValidation    ActionType = "field_validation"
	ActionBulkValidation     ActionType = "bulk_validation"
	ActionQualityCheck       ActionType = "quality_check"
	ActionDuplicateDetection ActionType = "duplicate_detection"
	ActionMarkOfficial       ActionType = "mark_official"
	ActionMarkPending        ActionType = "mark_pending"
	ActionValidationReset    ActionType = "validation_reset"
	ActionOverrideValidation ActionType = "override_validation"
)

// Valid returns true when the action type belongs to the taxonomy.
func (t ActionType) Valid() bool {
	switch t {
	case ActionFieldValidation, ActionBulkValidation, ActionQualityCheck, ActionDuplicateDetection,
		ActionMarkOfficial, ActionMarkPending, ActionValidationReset, ActionOverrideValidation:
		return true
	default:
		return false
	}
}

// ActionStatus records the outcome of an audited action.
type ActionStatus string

const (
	ActionStatusSuccess ActionStatus = "success"
	ActionStatusFailed  ActionStatus = "failed"
	ActionStatusWarning ActionStatus = "warning"
	ActionStatusInfo    ActionStatus = "info"
)

// ValidationActionLog is an immutable audit entry for one validation action.
type ValidationActionLog struct {
	ID                string              `db:"id" json:"id"`
	AdminID           string              `db:"admin_id" json:"admin_id"`
	AdminEmail        string              `db:"admin_email" json:"admin_email"`
	Timestamp         time.Time           `db:"timestamp" json:"timestamp"`
	ActionType        ActionType          `db:"action_type" json:"action_type"`
	ActionStatus      ActionStatus        `db:"action_status" json:"action_status"`
	TargetType        string              `db:"target_type" json:"target_type"`
	TargetID          string              `db:"target_id" json:"target_id"`
	TargetName        string              `db:"target_name" json:"target_name,omitempty"`
	RecordsProcessed  int                 `db:"records_processed" json:"records_processed"`
	RecordsSuccessful int                 `db:"records_successful" json:"records_successful"`
	RecordsFailed     int                 `db:"records_failed" json:"records_failed"`
	ValidationErrors  ValidationErrorList `db:"validation_errors" json:"validation_errors,omitempty"`
	QualityIssues     ValidationErrorList `db:"quality_issues" json:"quality_issues,omitempty"`
	Details           string              `db:"details" json:"details,omitempty"`
}

// ActionLogFilter scopes audit trail queries.
type ActionLogFilter struct {
	ActionType ActionType
	AdminID    string
	TargetID   string
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
}
