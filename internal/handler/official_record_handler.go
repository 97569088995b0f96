package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
	"github.com/noah-isme/sia-validation-api/pkg/response"
)

type officialRecordService interface {
	CreateStudentRecord(ctx context.Context, rec *models.StudentRecord) (*models.StudentRecord, error)
	Get(ctx context.Context, studentID string) (*models.StudentRecord, error)
	List(ctx context.Context, filter models.StudentRecordFilter) ([]models.StudentRecord, int, error)
	MarkAsOfficial(ctx context.Context, studentID string, actor models.Actor) (*models.StudentRecord, error)
	MarkAsPending(ctx context.Context, studentID string, actor models.Actor) (*models.StudentRecord, error)
	MarkMultipleAsOfficial(ctx context.Context, studentIDs []string, actor models.Actor) (*models.BulkOfficialResult, error)
	ResetValidationStatus(ctx context.Context, studentID, reason string, actor models.Actor) (*models.StudentRecord, error)
	Statistics(ctx context.Context) (*models.ValidationStatistics, error)
}

// OfficialRecordHandler exposes the student record lifecycle endpoints.
type OfficialRecordHandler struct {
	service officialRecordService
}

// NewOfficialRecordHandler constructs the handler.
func NewOfficialRecordHandler(service officialRecordService) *OfficialRecordHandler {
	return &OfficialRecordHandler{service: service}
}

type createStudentRecordRequest struct {
	StudentID string  `json:"student_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Year      string  `json:"year"`
	Section   string  `json:"section"`
	Email     *string `json:"email,omitempty"`
}

// Create godoc
// @Summary Register a student record
// @Tags StudentRecords
// @Accept json
// @Produce json
// @Param payload body createStudentRecordRequest true "Student record"
// @Success 201 {object} response.Envelope
// @Router /student-records [post]
func (h *OfficialRecordHandler) Create(c *gin.Context) {
	var req createStudentRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student record payload"))
		return
	}
	rec, err := h.service.CreateStudentRecord(c.Request.Context(), &models.StudentRecord{
		StudentID: req.StudentID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Year:      req.Year,
		Section:   req.Section,
		Email:     req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Get godoc
// @Summary Fetch one student record
// @Tags StudentRecords
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student-records/{id} [get]
func (h *OfficialRecordHandler) Get(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// List godoc
// @Summary List student records
// @Tags StudentRecords
// @Produce json
// @Param status query string false "Validation status"
// @Param search query string false "Name or student ID search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /student-records [get]
func (h *OfficialRecordHandler) List(c *gin.Context) {
	filter := models.StudentRecordFilter{
		Status:    models.ValidationStatus(c.Query("status")),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			filter.PageSize = size
		}
	}
	records, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 {
		pagination.PageSize = len(records)
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Statistics godoc
// @Summary Count records per validation status
// @Tags StudentRecords
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student-records/statistics [get]
func (h *OfficialRecordHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// MarkOfficial godoc
// @Summary Promote one record to official
// @Tags StudentRecords
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student-records/{id}/official [post]
func (h *OfficialRecordHandler) MarkOfficial(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rec, err := h.service.MarkAsOfficial(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// MarkPending godoc
// @Summary Move one record into pending review
// @Tags StudentRecords
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student-records/{id}/pending [post]
func (h *OfficialRecordHandler) MarkPending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rec, err := h.service.MarkAsPending(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

type bulkOfficialRequest struct {
	StudentIDs []string `json:"student_ids"`
}

// BulkOfficial godoc
// @Summary Promote multiple records to official
// @Tags StudentRecords
// @Accept json
// @Produce json
// @Param payload body bulkOfficialRequest true "Student IDs"
// @Success 200 {object} response.Envelope
// @Router /student-records/official [post]
func (h *OfficialRecordHandler) BulkOfficial(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req bulkOfficialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bulk promotion payload"))
		return
	}
	result, err := h.service.MarkMultipleAsOfficial(c.Request.Context(), req.StudentIDs, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil, map[string]interface{}{
		"message": fmt.Sprintf("%d of %d records marked official", result.Success, result.Total),
	})
}

type resetValidationRequest struct {
	Reason string `json:"reason"`
}

// Reset godoc
// @Summary Reset a record to the unvalidated state
// @Tags StudentRecords
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body resetValidationRequest true "Reset reason"
// @Success 200 {object} response.Envelope
// @Router /student-records/{id}/reset [post]
func (h *OfficialRecordHandler) Reset(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req resetValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reset payload"))
		return
	}
	rec, err := h.service.ResetValidationStatus(c.Request.Context(), c.Param("id"), req.Reason, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}
