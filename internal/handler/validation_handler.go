package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
	"github.com/noah-isme/sia-validation-api/pkg/response"
)

type recordGuard interface {
	ValidateGradeRecord(ctx context.Context, rec models.GradeRecord) (*models.ValidationResult, error)
	ValidateAttendanceRecord(ctx context.Context, rec models.AttendanceRecord) (*models.ValidationResult, error)
	ValidateReportRecord(ctx context.Context, rec models.ReportRecord) (*models.ValidationResult, error)
	Summary(result *models.ValidationResult) models.ValidationSummary
}

type rejectionLedger interface {
	LogInvalidRecord(ctx context.Context, kind models.RecordKind, payload json.RawMessage, errs []models.ValidationError, actor models.Actor, entityID string, metadata models.Metadata)
}

type batchFieldValidator interface {
	ValidateBatchWithLogging(ctx context.Context, records []models.StudentRecordInput, actor models.Actor) models.BatchFieldValidationResult
}

// ValidationHandler exposes the record validation guard. Blocked submissions
// are appended to the rejection ledger with the verbatim request payload
// before the error response is returned.
type ValidationHandler struct {
	guard  recordGuard
	ledger rejectionLedger
	fields batchFieldValidator
}

// NewValidationHandler constructs the handler.
func NewValidationHandler(guard recordGuard, ledger rejectionLedger, fields batchFieldValidator) *ValidationHandler {
	return &ValidationHandler{guard: guard, ledger: ledger, fields: fields}
}

type verdictResponse struct {
	Result  *models.ValidationResult `json:"result"`
	Summary models.ValidationSummary `json:"summary"`
}

// ValidateGrade godoc
// @Summary Validate a candidate grade record
// @Tags Validation
// @Accept json
// @Produce json
// @Param payload body models.GradeRecord true "Grade record"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /validations/grade [post]
func (h *ValidationHandler) ValidateGrade(c *gin.Context) {
	raw, rec, ok := bindRawJSON[models.GradeRecord](c)
	if !ok {
		return
	}
	result, err := h.guard.ValidateGradeRecord(c.Request.Context(), rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondVerdict(c, models.RecordKindGrade, raw, result, rec.StudentID)
}

// ValidateAttendance godoc
// @Summary Validate a candidate attendance record
// @Tags Validation
// @Accept json
// @Produce json
// @Param payload body models.AttendanceRecord true "Attendance record"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /validations/attendance [post]
func (h *ValidationHandler) ValidateAttendance(c *gin.Context) {
	raw, rec, ok := bindRawJSON[models.AttendanceRecord](c)
	if !ok {
		return
	}
	result, err := h.guard.ValidateAttendanceRecord(c.Request.Context(), rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondVerdict(c, models.RecordKindAttendance, raw, result, rec.StudentID)
}

// ValidateReport godoc
// @Summary Validate a candidate report definition
// @Tags Validation
// @Accept json
// @Produce json
// @Param payload body models.ReportRecord true "Report definition"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /validations/report [post]
func (h *ValidationHandler) ValidateReport(c *gin.Context) {
	raw, rec, ok := bindRawJSON[models.ReportRecord](c)
	if !ok {
		return
	}
	result, err := h.guard.ValidateReportRecord(c.Request.Context(), rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondVerdict(c, models.RecordKindReport, raw, result, rec.EntityID)
}

type bulkStudentValidationRequest struct {
	Records []models.StudentRecordInput `json:"records"`
}

// ValidateStudentBatch godoc
// @Summary Field-validate a batch of imported student rows
// @Tags Validation
// @Accept json
// @Produce json
// @Param payload body bulkStudentValidationRequest true "Student rows"
// @Success 200 {object} response.Envelope
// @Router /validations/students/bulk [post]
func (h *ValidationHandler) ValidateStudentBatch(c *gin.Context) {
	var req bulkStudentValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student batch payload"))
		return
	}
	if len(req.Records) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "records must not be empty"))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result := h.fields.ValidateBatchWithLogging(c.Request.Context(), req.Records, actor)
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *ValidationHandler) respondVerdict(c *gin.Context, kind models.RecordKind, raw json.RawMessage, result *models.ValidationResult, entityID string) {
	verdict := verdictResponse{Result: result, Summary: h.guard.Summary(result)}
	if !result.BlockedFromSave {
		response.JSON(c, http.StatusOK, verdict, nil)
		return
	}

	actor, _ := actorFromContext(c)
	metadata := models.Metadata{}
	if requestID := c.GetString("request_id"); requestID != "" {
		metadata["request_id"] = requestID
	}
	h.ledger.LogInvalidRecord(c.Request.Context(), kind, raw, result.Errors, actor, entityID, metadata)

	response.JSON(c, http.StatusUnprocessableEntity, verdict, nil)
}

// bindRawJSON captures the verbatim request body and decodes it into the
// target type. The raw bytes are preserved so rejected payloads can be stored
// exactly as submitted.
func bindRawJSON[T any](c *gin.Context) (json.RawMessage, T, bool) {
	var target T
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "failed to read request body"))
		return nil, target, false
	}
	if err := json.Unmarshal(raw, &target); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid JSON payload"))
		return nil, target, false
	}
	return raw, target, true
}
