package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReferenceRepository answers foreign-key existence checks against the
// student, exam and class master tables. The validation guard uses it to
// verify referenced entities before accepting a dependent record.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// StudentExists reports whether a student with the given natural ID exists.
func (r *ReferenceRepository) StudentExists(ctx context.Context, studentID string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM student_records WHERE student_id = $1 LIMIT 1", studentID)
}

// ExamExists reports whether the exam exists.
func (r *ReferenceRepository) ExamExists(ctx context.Context, examID string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM exams WHERE id = $1 LIMIT 1", examID)
}

// ClassExists reports whether the class exists.
func (r *ReferenceRepository) ClassExists(ctx context.Context, classID string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM classes WHERE id = $1 LIMIT 1", classID)
}

func (r *ReferenceRepository) exists(ctx context.Context, query, id string) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("existence check: %w", err)
	}
	return true, nil
}
