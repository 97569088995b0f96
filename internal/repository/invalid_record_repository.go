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

// InvalidRecordRepository persists the append-only rejection ledger. Rows are
// created on rejected writes and never updated or deleted.
type InvalidRecordRepository struct {
	db *sqlx.DB
}

// NewInvalidRecordRepository constructs an InvalidRecordRepository.
func NewInvalidRecordRepository(db *sqlx.DB) *InvalidRecordRepository {
	return &InvalidRecordRepository{db: db}
}

const invalidRecordColumns = `id, record_type, record_data, validation_errors, rejection_reason, user_id, user_email, entity_id, attempted_at, metadata`

// Create appends a rejection entry to the ledger.
func (r *InvalidRecordRepository) Create(ctx context.Context, log *models.InvalidRecordLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.AttemptedAt.IsZero() {
		log.AttemptedAt = time.Now().UTC()
	}
	const query = `INSERT INTO invalid_record_logs (id, record_type, record_data, validation_errors, rejection_reason, user_id, user_email, entity_id, attempted_at, metadata)
        VALUES (:id, :record_type, :record_data, :validation_errors, :rejection_reason, :user_id, :user_email, :entity_id, :attempted_at, :metadata)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create invalid record log: %w", err)
	}
	return nil
}

// List returns ledger entries matching the filter, newest first.
func (r *InvalidRecordRepository) List(ctx context.Context, filter models.InvalidRecordFilter) ([]models.InvalidRecordLog, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.RecordType != "" {
		conditions = append(conditions, fmt.Sprintf("record_type = $%d", len(args)+1))
		args = append(args, filter.RecordType)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)+1))
		args = append(args, filter.EntityID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.FromDate != nil {
		conditions = append(conditions, fmt.Sprintf("attempted_at >= $%d", len(args)+1))
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		conditions = append(conditions, fmt.Sprintf("attempted_at <= $%d", len(args)+1))
		args = append(args, *filter.ToDate)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT %s FROM invalid_record_logs WHERE %s ORDER BY attempted_at DESC LIMIT %d",
		invalidRecordColumns, strings.Join(conditions, " AND "), limit)

	var logs []models.InvalidRecordLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list invalid record logs: %w", err)
	}
	return logs, nil
}

// CountTotal returns the total number of ledger entries.
func (r *InvalidRecordRepository) CountTotal(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invalid_record_logs"); err != nil {
		return 0, fmt.Errorf("count invalid record logs: %w", err)
	}
	return total, nil
}

// CountByType returns per-record-kind rejection counts.
func (r *InvalidRecordRepository) CountByType(ctx context.Context) (map[models.RecordKind]int, error) {
	rows := []struct {
		RecordType models.RecordKind `db:"record_type"`
		Count      int               `db:"count"`
	}{}
	const query = `SELECT record_type, COUNT(*) AS count FROM invalid_record_logs GROUP BY record_type`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count invalid records by type: %w", err)
	}
	counts := make(map[models.RecordKind]int, len(rows))
	for _, row := range rows {
		counts[row.RecordType] = row.Count
	}
	return counts, nil
}

// TopErrorFields aggregates the most frequently offending fields across all
// stored validation errors.
func (r *InvalidRecordRepository) TopErrorFields(ctx context.Context, limit int) ([]models.FieldErrorCount, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT e->>'field' AS field, COUNT(*) AS count
        FROM invalid_record_logs, jsonb_array_elements(validation_errors) AS e
        GROUP BY e->>'field' ORDER BY count DESC LIMIT $1`
	var fields []models.FieldErrorCount
	if err := r.db.SelectContext(ctx, &fields, query, limit); err != nil {
		return nil, fmt.Errorf("aggregate error fields: %w", err)
	}
	return fields, nil
}
