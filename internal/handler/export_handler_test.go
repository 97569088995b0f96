package handler

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sia-validation-api/internal/middleware"
	"github.com/noah-isme/sia-validation-api/internal/models"
	"github.com/noah-isme/sia-validation-api/internal/service"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

type exportJobServiceMock struct {
	job         *models.ExportJob
	createErr   error
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportJobServiceMock) CreateJob(ctx context.Context, req service.ExportJobRequest, actorID string) (*models.ExportJob, error) {
	return m.job, m.createErr
}

func (m *exportJobServiceMock) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*models.ExportJob, error) {
	return m.job, m.statusErr
}

func (m *exportJobServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func TestExportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{job: &models.ExportJob{ID: "job-1", Status: models.ExportStatusQueued}}
	handler := NewExportHandler(mockSvc)

	payload := []byte(`{"type":"invalid_records","params":{"format":"csv"}}`)
	c, w := newGinContext(http.MethodPost, "/exports", payload)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Create(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestExportHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportJobServiceMock{})

	c, w := newGinContext(http.MethodPost, "/exports", []byte(`{"type":"invalid_records","params":{"format":"csv"}}`))

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{job: &models.ExportJob{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100}}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportHandlerDownloadStreamsFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp("", "export*.csv")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	_, _ = file.WriteString("Attempted At,Record Type\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportJobServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "invalid_records_20260901_090000.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invalid_records_20260901_090000.csv")
	assert.Equal(t, "Attempted At,Record Type\n", w.Body.String())
}

func TestExportHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
