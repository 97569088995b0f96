package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sia-validation-api/internal/models"
	"github.com/noah-isme/sia-validation-api/pkg/export"
	"github.com/noah-isme/sia-validation-api/pkg/storage"
)

type invalidRecordLister interface {
	List(ctx context.Context, filter models.InvalidRecordFilter) ([]models.InvalidRecordLog, error)
}

type actionLogLister interface {
	List(ctx context.Context, filter models.ActionLogFilter) ([]models.ValidationActionLog, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders audit ledgers into CSV or PDF files and persists
// them behind signed download URLs.
type ExportService struct {
	invalidRecords invalidRecordLister
	actionLogs     actionLogLister
	storage        fileStorage
	csv            csvRenderer
	pdf            pdfRenderer
	signer         *storage.SignedURLSigner
	logger         *zap.Logger
	cfg            ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(invalidRecords invalidRecordLister, actionLogs actionLogLister, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		invalidRecords: invalidRecords,
		actionLogs:     actionLogs,
		storage:        files,
		csv:            csv,
		pdf:            pdf,
		signer:         signer,
		logger:         logger,
		cfg:            cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenderCSV builds a one-shot CSV payload for the given export type without
// going through the job queue. Used by the synchronous export endpoints.
func (s *ExportService) RenderCSV(ctx context.Context, typ models.ExportType, params models.ExportJobParams) ([]byte, string, error) {
	params.Format = models.ExportFormatCSV
	job := &models.ExportJob{Type: typ, Params: params}
	dataset, _, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", err
	}
	return payload, s.buildFilename(job), nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypeInvalidRecords:
		return s.buildInvalidRecordDataset(ctx, job.Params)
	case models.ExportTypeValidationActions:
		return s.buildActionLogDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (s *ExportService) buildInvalidRecordDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	entries, err := s.invalidRecords.List(ctx, models.InvalidRecordFilter{
		RecordType: params.RecordType,
		EntityID:   params.EntityID,
		FromDate:   params.FromDate,
		ToDate:     params.ToDate,
		Limit:      500,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Attempted At":     entry.AttemptedAt.UTC().Format(time.RFC3339),
			"Record Type":      string(entry.RecordType),
			"Entity ID":        entry.EntityID,
			"Submitted By":     entry.UserEmail,
			"Rejection Reason": entry.RejectionReason,
			"Errors":           flattenFindings(entry.ValidationErrors),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Attempted At", "Record Type", "Entity ID", "Submitted By", "Rejection Reason", "Errors"},
		Rows:    rows,
	}
	return dataset, "Invalid Record Log", nil
}

func (s *ExportService) buildActionLogDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	entries, err := s.actionLogs.List(ctx, models.ActionLogFilter{
		ActionType: params.ActionType,
		FromDate:   params.FromDate,
		ToDate:     params.ToDate,
		Limit:      500,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Timestamp":   entry.Timestamp.UTC().Format(time.RFC3339),
			"Action Type": string(entry.ActionType),
			"Status":      string(entry.ActionStatus),
			"Admin":       entry.AdminEmail,
			"Target":      fmt.Sprintf("%s %s", entry.TargetType, entry.TargetID),
			"Processed":   fmt.Sprintf("%d", entry.RecordsProcessed),
			"Successful":  fmt.Sprintf("%d", entry.RecordsSuccessful),
			"Failed":      fmt.Sprintf("%d", entry.RecordsFailed),
			"Details":     entry.Details,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Timestamp", "Action Type", "Status", "Admin", "Target", "Processed", "Successful", "Failed", "Details"},
		Rows:    rows,
	}
	return dataset, "Validation Action Log", nil
}

func flattenFindings(errs models.ValidationErrorList) string {
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
