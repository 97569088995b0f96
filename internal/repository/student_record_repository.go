package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sia-validation-api/internal/models"
)

// StudentRecordRepository manages persistence for student records and their
// validation lifecycle columns.
type StudentRecordRepository struct {
	db *sqlx.DB
}

// NewStudentRecordRepository constructs a StudentRecordRepository.
func NewStudentRecordRepository(db *sqlx.DB) *StudentRecordRepository {
	return &StudentRecordRepository{db: db}
}

const studentRecordColumns = `id, student_id, first_name, last_name, year, section, email, validation_status, validation_date, validated_by, created_at, updated_at`

// List returns student records matching the provided filters.
func (r *StudentRecordRepository) List(ctx context.Context, filter models.StudentRecordFilter) ([]models.StudentRecord, int, error) {
	base := "FROM student_records"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("validation_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(student_id) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"student_id":      "student_id",
		"last_name":       "last_name",
		"validation_date": "validation_date",
		"created_at":      "created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentRecordColumns, base, column, order, size, offset)

	var records []models.StudentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list student records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count student records: %w", err)
	}
	return records, total, nil
}

// FindByStudentID fetches a record by its natural student identifier.
func (r *StudentRecordRepository) FindByStudentID(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM student_records WHERE student_id = $1", studentRecordColumns)
	var record models.StudentRecord
	if err := r.db.GetContext(ctx, &record, query, studentID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new student record in the unvalidated state.
func (r *StudentRecordRepository) Create(ctx context.Context, record *models.StudentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ValidationStatus == "" {
		record.ValidationStatus = models.StatusUnvalidated
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO student_records (id, student_id, first_name, last_name, year, section, email, validation_status, validation_date, validated_by, created_at, updated_at)
        VALUES (:id, :student_id, :first_name, :last_name, :year, :section, :email, :validation_status, :validation_date, :validated_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create student record: %w", err)
	}
	return nil
}

// SetValidationStatus updates the lifecycle columns for a student record.
// validationDate and validatedBy are written as given; pass nil to clear them.
func (r *StudentRecordRepository) SetValidationStatus(ctx context.Context, studentID string, status models.ValidationStatus, validationDate *time.Time, validatedBy *string) error {
	const query = `UPDATE student_records SET validation_status = $2, validation_date = $3, validated_by = $4, updated_at = $5 WHERE student_id = $1`
	res, err := r.db.ExecContext(ctx, query, studentID, status, validationDate, validatedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set validation status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set validation status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns the number of records in the given status bucket.
func (r *StudentRecordRepository) CountByStatus(ctx context.Context, status models.ValidationStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM student_records WHERE validation_status = $1", status); err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return count, nil
}
