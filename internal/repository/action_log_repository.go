package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sia-validation-api/internal/models"
)

// ActionLogRepository persists the validation action audit trail.
type ActionLogRepository struct {
	db *sqlx.DB
}

// NewActionLogRepository constructs an ActionLogRepository.
func NewActionLogRepository(db *sqlx.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

const actionLogColumns = `id, admin_id, admin_email, timestamp, action_type, action_status, target_type, target_id, target_name, records_processed, records_successful, records_failed, validation_errors, quality_issues, details`

// Create appends an audit entry.
func (r *ActionLogRepository) Create(ctx context.Context, log *models.ValidationActionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO validation_action_logs (id, admin_id, admin_email, timestamp, action_type, action_status, target_type, target_id, target_name, records_processed, records_successful, records_failed, validation_errors, quality_issues, details)
        VALUES (:id, :admin_id, :admin_email, :timestamp, :action_type, :action_status, :target_type, :target_id, :target_name, :records_processed, :records_successful, :records_failed, :validation_errors, :quality_issues, :details)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create validation action log: %w", err)
	}
	return nil
}

// List returns audit entries matching the filter, newest first.
func (r *ActionLogRepository) List(ctx context.Context, filter models.ActionLogFilter) ([]models.ValidationActionLog, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ActionType != "" {
		conditions = append(conditions, fmt.Sprintf("action_type = $%d", len(args)+1))
		args = append(args, filter.ActionType)
	}
	if filter.AdminID != "" {
		conditions = append(conditions, fmt.Sprintf("admin_id = $%d", len(args)+1))
		args = append(args, filter.AdminID)
	}
	if filter.TargetID != "" {
		conditions = append(conditions, fmt.Sprintf("target_id = $%d", len(args)+1))
		args = append(args, filter.TargetID)
	}
	if filter.FromDate != nil {
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", len(args)+1))
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", len(args)+1))
		args = append(args, *filter.ToDate)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT %s FROM validation_action_logs WHERE %s ORDER BY timestamp DESC LIMIT %d",
		actionLogColumns, strings.Join(conditions, " AND "), limit)

	var logs []models.ValidationActionLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list validation action logs: %w", err)
	}
	return logs, nil
}
