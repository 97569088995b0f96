package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/middleware"
	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

type officialRecordServiceMock struct {
	record      *models.StudentRecord
	records     []models.StudentRecord
	total       int
	bulkResult  *models.BulkOfficialResult
	stats       *models.ValidationStatistics
	err         error
	bulkIDs     []string
	resetReason string
}

func (m *officialRecordServiceMock) CreateStudentRecord(ctx context.Context, rec *models.StudentRecord) (*models.StudentRecord, error) {
	return m.record, m.err
}

func (m *officialRecordServiceMock) Get(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	return m.record, m.err
}

func (m *officialRecordServiceMock) List(ctx context.Context, filter models.StudentRecordFilter) ([]models.StudentRecord, int, error) {
	return m.records, m.total, m.err
}

func (m *officialRecordServiceMock) MarkAsOfficial(ctx context.Context, studentID string, actor models.Actor) (*models.StudentRecord, error) {
	return m.record, m.err
}

func (m *officialRecordServiceMock) MarkAsPending(ctx context.Context, studentID string, actor models.Actor) (*models.StudentRecord, error) {
	return m.record, m.err
}

func (m *officialRecordServiceMock) MarkMultipleAsOfficial(ctx context.Context, studentIDs []string, actor models.Actor) (*models.BulkOfficialResult, error) {
	m.bulkIDs = studentIDs
	return m.bulkResult, m.err
}

func (m *officialRecordServiceMock) ResetValidationStatus(ctx context.Context, studentID, reason string, actor models.Actor) (*models.StudentRecord, error) {
	m.resetReason = reason
	return m.record, m.err
}

func (m *officialRecordServiceMock) Statistics(ctx context.Context) (*models.ValidationStatistics, error) {
	return m.stats, m.err
}

func TestOfficialRecordHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{record: &models.StudentRecord{StudentID: "S-001", ValidationStatus: models.StatusUnvalidated}}
	handler := NewOfficialRecordHandler(mockSvc)

	payload := []byte(`{"student_id":"S-001","first_name":"Maria","last_name":"Santos","year":"10","section":"A"}`)
	c, w := newGinContext(http.MethodPost, "/student-records", payload)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestOfficialRecordHandlerMarkOfficial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{record: &models.StudentRecord{StudentID: "S-001", ValidationStatus: models.StatusOfficial}}
	handler := NewOfficialRecordHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/student-records/S-001/official", nil)
	c.Params = gin.Params{{Key: "id", Value: "S-001"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.MarkOfficial(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOfficialRecordHandlerMarkOfficialRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOfficialRecordHandler(&officialRecordServiceMock{})

	c, w := newGinContext(http.MethodPost, "/student-records/S-001/official", nil)
	c.Params = gin.Params{{Key: "id", Value: "S-001"}}

	handler.MarkOfficial(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOfficialRecordHandlerBulkOfficialPartialFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{bulkResult: &models.BulkOfficialResult{Success: 2, Failed: []string{"S-404"}, Total: 3}}
	handler := NewOfficialRecordHandler(mockSvc)

	payload := []byte(`{"student_ids":["S-001","S-002","S-404"]}`)
	c, w := newGinContext(http.MethodPost, "/student-records/official", payload)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.BulkOfficial(c)
	require.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Equal(t, []string{"S-001", "S-002", "S-404"}, mockSvc.bulkIDs)

	var envelope struct {
		Data models.BulkOfficialResult `json:"data"`
		Meta map[string]interface{}    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Success)
	assert.Equal(t, "2 of 3 records marked official", envelope.Meta["message"])
}

func TestOfficialRecordHandlerBulkOfficialAllSucceed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{bulkResult: &models.BulkOfficialResult{Success: 2, Total: 2}}
	handler := NewOfficialRecordHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/student-records/official", []byte(`{"student_ids":["S-001","S-002"]}`))
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.BulkOfficial(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOfficialRecordHandlerResetPassesReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{record: &models.StudentRecord{StudentID: "S-001", ValidationStatus: models.StatusUnvalidated}}
	handler := NewOfficialRecordHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/student-records/S-001/reset", []byte(`{"reason":"duplicate entry found"}`))
	c.Params = gin.Params{{Key: "id", Value: "S-001"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Reset(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate entry found", mockSvc.resetReason)
}

func TestOfficialRecordHandlerResetMissingReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "a reason is required to reset validation status")}
	handler := NewOfficialRecordHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/student-records/S-001/reset", []byte(`{"reason":""}`))
	c.Params = gin.Params{{Key: "id", Value: "S-001"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Reset(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfficialRecordHandlerStatistics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{stats: &models.ValidationStatistics{Official: 5, Unvalidated: 3, Pending: 2, Total: 10}}
	handler := NewOfficialRecordHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/student-records/statistics", nil)

	handler.Statistics(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.ValidationStatistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 10, envelope.Data.Total)
}

func TestOfficialRecordHandlerListDefaultsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &officialRecordServiceMock{
		records: []models.StudentRecord{{StudentID: "S-001"}},
		total:   1,
	}
	handler := NewOfficialRecordHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/student-records", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Pagination.Page)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}
