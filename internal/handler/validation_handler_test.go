package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/middleware"
	"github.com/noah-isme/sia-validation-api/internal/models"
)

type recordGuardMock struct {
	gradeResult      *models.ValidationResult
	attendanceResult *models.ValidationResult
	reportResult     *models.ValidationResult
	err              error
}

func (m *recordGuardMock) ValidateGradeRecord(ctx context.Context, rec models.GradeRecord) (*models.ValidationResult, error) {
	return m.gradeResult, m.err
}

func (m *recordGuardMock) ValidateAttendanceRecord(ctx context.Context, rec models.AttendanceRecord) (*models.ValidationResult, error) {
	return m.attendanceResult, m.err
}

func (m *recordGuardMock) ValidateReportRecord(ctx context.Context, rec models.ReportRecord) (*models.ValidationResult, error) {
	return m.reportResult, m.err
}

func (m *recordGuardMock) Summary(result *models.ValidationResult) models.ValidationSummary {
	summary := models.ValidationSummary{BlockedStatus: "OK"}
	if result != nil {
		summary.ErrorCount = len(result.Errors)
		summary.WarningCount = len(result.Warnings)
		if result.BlockedFromSave {
			summary.BlockedStatus = "BLOCKED"
		}
	}
	return summary
}

type ledgerEntry struct {
	kind     models.RecordKind
	payload  json.RawMessage
	errs     []models.ValidationError
	actor    models.Actor
	entityID string
	metadata models.Metadata
}

type rejectionLedgerMock struct {
	entries []ledgerEntry
}

func (m *rejectionLedgerMock) LogInvalidRecord(ctx context.Context, kind models.RecordKind, payload json.RawMessage, errs []models.ValidationError, actor models.Actor, entityID string, metadata models.Metadata) {
	m.entries = append(m.entries, ledgerEntry{kind: kind, payload: payload, errs: errs, actor: actor, entityID: entityID, metadata: metadata})
}

type batchFieldValidatorMock struct {
	result models.BatchFieldValidationResult
	actors []models.Actor
}

func (m *batchFieldValidatorMock) ValidateBatchWithLogging(ctx context.Context, records []models.StudentRecordInput, actor models.Actor) models.BatchFieldValidationResult {
	m.actors = append(m.actors, actor)
	return m.result
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Email: "admin@school.test", FullName: "Admin One", Role: models.RoleAdmin}
}

func blockedResult() *models.ValidationResult {
	result := models.NewValidationResult()
	result.AddError("score", "score must be between 0 and 100")
	return result
}

func TestValidateGradeBlockedGoesToLedger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := &rejectionLedgerMock{}
	handler := NewValidationHandler(&recordGuardMock{gradeResult: blockedResult()}, ledger, &batchFieldValidatorMock{})

	payload := []byte(`{"student_id":"S-001","exam_id":"E-001","class_id":"C-001","score":150,"recorded_by":"admin@school.test"}`)
	c, w := newGinContext(http.MethodPost, "/validations/grade", payload)
	c.Set(middleware.ContextUserKey, adminClaims())
	c.Set("request_id", "req-42")

	handler.ValidateGrade(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.Len(t, ledger.entries, 1)
	entry := ledger.entries[0]
	assert.Equal(t, models.RecordKindGrade, entry.kind)
	assert.Equal(t, string(payload), string(entry.payload), "ledger must receive the verbatim request body")
	assert.Equal(t, "S-001", entry.entityID)
	assert.Equal(t, "admin-1", entry.actor.ID)
	assert.Equal(t, "req-42", entry.metadata["request_id"])
	require.Len(t, entry.errs, 1)
	assert.Equal(t, "score", entry.errs[0].Field)

	var envelope struct {
		Data struct {
			Result  *models.ValidationResult `json:"result"`
			Summary models.ValidationSummary `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Result.BlockedFromSave)
	assert.Equal(t, "BLOCKED", envelope.Data.Summary.BlockedStatus)
}

func TestValidateAttendancePassingSkipsLedger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := &rejectionLedgerMock{}
	handler := NewValidationHandler(&recordGuardMock{attendanceResult: models.NewValidationResult()}, ledger, &batchFieldValidatorMock{})

	payload := []byte(`{"student_id":"S-001","class_id":"C-001","date":"2026-08-31","status":"present","recorded_by":"admin@school.test"}`)
	c, w := newGinContext(http.MethodPost, "/validations/attendance", payload)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ValidateAttendance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ledger.entries, "passing records must not be logged")
}

func TestValidateReportUsesEntityID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	result := models.NewValidationResult()
	result.AddError("report_type", "report_type is required")
	ledger := &rejectionLedgerMock{}
	handler := NewValidationHandler(&recordGuardMock{reportResult: result}, ledger, &batchFieldValidatorMock{})

	payload := []byte(`{"entity_id":"S-009"}`)
	c, w := newGinContext(http.MethodPost, "/validations/report", payload)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ValidateReport(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, ledger.entries, 1)
	assert.Equal(t, models.RecordKindReport, ledger.entries[0].kind)
	assert.Equal(t, "S-009", ledger.entries[0].entityID)
}

func TestValidateGradeRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewValidationHandler(&recordGuardMock{}, &rejectionLedgerMock{}, &batchFieldValidatorMock{})

	c, w := newGinContext(http.MethodPost, "/validations/grade", []byte(`{"score":`))
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ValidateGrade(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateStudentBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fields := &batchFieldValidatorMock{result: models.BatchFieldValidationResult{Processed: 2, MissingCounts: map[string]int{}}}
	handler := NewValidationHandler(&recordGuardMock{}, &rejectionLedgerMock{}, fields)

	payload := []byte(`{"records":[{"student_id":"S-001","first_name":"Maria","last_name":"Santos","year":"10","section":"A"},{"student_id":"","first_name":"Juan","last_name":"Cruz","year":"10","section":"A"}]}`)
	c, w := newGinContext(http.MethodPost, "/validations/students/bulk", payload)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ValidateStudentBatch(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fields.actors, 1)
	assert.Equal(t, "admin-1", fields.actors[0].ID)
}

func TestValidateStudentBatchRejectsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewValidationHandler(&recordGuardMock{}, &rejectionLedgerMock{}, &batchFieldValidatorMock{})

	c, w := newGinContext(http.MethodPost, "/validations/students/bulk", []byte(`{"records":[]}`))
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ValidateStudentBatch(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
