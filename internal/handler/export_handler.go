package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satlab/sat-prep-api/internal/service"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
	"github.com/satlab/sat-prep-api/pkg/response"
)

// ExportHandler streams rendered progress reports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ProgressReport godoc
// @Summary Download progress report
// @Description Renders the caller's progress as a CSV or PDF download
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Report format" Enums(csv, pdf) default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /exports/progress [get]
func (h *ExportHandler) ProgressReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	doc, err := h.service.ProgressReport(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
