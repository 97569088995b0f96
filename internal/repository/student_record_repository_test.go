package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/models"
)

func newStudentRecordMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRecordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "first_name", "last_name", "year", "section", "email", "validation_status", "validation_date", "validated_by", "created_at", "updated_at"}).
		AddRow("rec-1", "S-001", "Maria", "Santos", "10", "A", nil, "unvalidated", nil, nil, time.Now(), time.Now())
}

func TestStudentRecordRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, first_name, last_name, year, section, email, validation_status, validation_date, validated_by, created_at, updated_at FROM student_records WHERE 1=1 AND validation_status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.StatusUnvalidated).
		WillReturnRows(studentRecordRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_records WHERE 1=1 AND validation_status = $1")).
		WithArgs(models.StatusUnvalidated).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.StudentRecordFilter{Status: models.StatusUnvalidated})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositoryListIgnoresUnknownSort(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(studentRecordRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_records")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.StudentRecordFilter{SortBy: "validation_status; DROP TABLE", SortOrder: "sideways"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositoryFindByStudentID(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, first_name, last_name, year, section, email, validation_status, validation_date, validated_by, created_at, updated_at FROM student_records WHERE student_id = $1")).
		WithArgs("S-001").
		WillReturnRows(studentRecordRows())

	record, err := repo.FindByStudentID(context.Background(), "S-001")
	require.NoError(t, err)
	assert.Equal(t, "S-001", record.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositoryFindByStudentIDNotFound(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectQuery("SELECT .* FROM student_records WHERE student_id").
		WithArgs("S-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentID(context.Background(), "S-404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectExec("INSERT INTO student_records").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.StudentRecord{StudentID: "S-001", FirstName: "Maria", LastName: "Santos", Year: "10", Section: "A"}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.StatusUnvalidated, record.ValidationStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositorySetValidationStatus(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	now := time.Now().UTC()
	by := "admin@school.test"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_records SET validation_status = $2, validation_date = $3, validated_by = $4, updated_at = $5 WHERE student_id = $1")).
		WithArgs("S-001", models.StatusOfficial, now, by, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetValidationStatus(context.Background(), "S-001", models.StatusOfficial, &now, &by)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositorySetValidationStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectExec("UPDATE student_records SET validation_status").
		WithArgs("S-404", models.StatusUnvalidated, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetValidationStatus(context.Background(), "S-404", models.StatusUnvalidated, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRecordRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newStudentRecordMock(t)
	defer cleanup()
	repo := NewStudentRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_records WHERE validation_status = $1")).
		WithArgs(models.StatusOfficial).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByStatus(context.Background(), models.StatusOfficial)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
