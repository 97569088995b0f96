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

type actionLogQuerier interface {
	List(ctx context.Context, filter models.ActionLogFilter) ([]models.ValidationActionLog, error)
}

// ActionLogHandler exposes the validation action audit trail.
type ActionLogHandler struct {
	service  actionLogQuerier
	exporter csvExporter
}

// NewActionLogHandler constructs the handler.
func NewActionLogHandler(service actionLogQuerier, exporter csvExporter) *ActionLogHandler {
	return &ActionLogHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List validation action audit entries
// @Tags ValidationActions
// @Produce json
// @Param action_type query string false "Action type"
// @Param admin_id query string false "Admin ID"
// @Param target_id query string false "Target ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /validation-actions [get]
func (h *ActionLogHandler) List(c *gin.Context) {
	filter, err := actionLogFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Export godoc
// @Summary Download the action audit trail as CSV
// @Tags ValidationActions
// @Produce text/csv
// @Param action_type query string false "Action type"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /validation-actions/export [get]
func (h *ActionLogHandler) Export(c *gin.Context) {
	filter, err := actionLogFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params := models.ExportJobParams{
		ActionType: filter.ActionType,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	payload, filename, err := h.exporter.RenderCSV(c.Request.Context(), models.ExportTypeValidationActions, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

func actionLogFilterFromQuery(c *gin.Context) (models.ActionLogFilter, error) {
	filter := models.ActionLogFilter{
		ActionType: models.ActionType(c.Query("action_type")),
		AdminID:    c.Query("admin_id"),
		TargetID:   c.Query("target_id"),
	}
	if filter.ActionType != "" && !filter.ActionType.Valid() {
		return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown action type %q", filter.ActionType))
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
