package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
	"github.com/noah-isme/sia-validation-api/pkg/response"
)

type invalidRecordQuerier interface {
	Query(ctx context.Context, filter models.InvalidRecordFilter) ([]models.InvalidRecordLog, error)
	Summary(ctx context.Context) (*models.InvalidRecordSummary, error)
}

type csvExporter interface {
	RenderCSV(ctx context.Context, typ models.ExportType, params models.ExportJobParams) ([]byte, string, error)
}

// InvalidRecordHandler exposes the rejection ledger.
type InvalidRecordHandler struct {
	service  invalidRecordQuerier
	exporter csvExporter
}

// NewInvalidRecordHandler constructs the handler.
func NewInvalidRecordHandler(service invalidRecordQuerier, exporter csvExporter) *InvalidRecordHandler {
	return &InvalidRecordHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List rejection ledger entries
// @Tags InvalidRecords
// @Produce json
// @Param record_type query string false "Record type (grade, attendance, report)"
// @Param entity_id query string false "Entity ID"
// @Param user_id query string false "Submitting user ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /invalid-records [get]
func (h *InvalidRecordHandler) List(c *gin.Context) {
	filter, err := invalidRecordFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Summary godoc
// @Summary Aggregate the rejection ledger
// @Tags InvalidRecords
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /invalid-records/summary [get]
func (h *InvalidRecordHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Download the rejection ledger as CSV
// @Tags InvalidRecords
// @Produce text/csv
// @Param record_type query string false "Record type"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /invalid-records/export [get]
func (h *InvalidRecordHandler) Export(c *gin.Context) {
	filter, err := invalidRecordFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params := models.ExportJobParams{
		RecordType: filter.RecordType,
		EntityID:   filter.EntityID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	payload, filename, err := h.exporter.RenderCSV(c.Request.Context(), models.ExportTypeInvalidRecords, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

func invalidRecordFilterFromQuery(c *gin.Context) (models.InvalidRecordFilter, error) {
	filter := models.InvalidRecordFilter{
		RecordType: models.RecordKind(c.Query("record_type")),
		EntityID:   c.Query("entity_id"),
		UserID:     c.Query("user_id"),
	}
	if filter.RecordType != "" && !filter.RecordType.Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown record type %q", filter.RecordType))
	}
	from, err := parseQueryDate(c.Query("from"))
	if err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, "from must be in YYYY-MM-DD format")
	}
	filter.FromDate = from
	to, err := parseQueryDate(c.Query("to"))
	if err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, "to must be in YYYY-MM-DD format")
	}
	filter.ToDate = to
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func parseQueryDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
