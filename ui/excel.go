package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"cardiorisk/adapters/excel"
	"cardiorisk/internal/eda"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport reruns the submitted assessment and returns it as a workbook
func (s *Server) handleExport(c *gin.Context) {
	_, _, a, err := s.assess(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteAssessment(&buf, a); err != nil {
		s.logger.Error("[handleExport] assessment %s: %v", a.ID, err)
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="assessment-%s.xlsx"`, a.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// handleSummaryExport returns the EDA report and every feature's describe() table as a workbook
func (s *Server) handleSummaryExport(c *gin.Context) {
	a, err := s.analyzer()
	if err != nil {
		writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	report, err := a.Report(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	features, err := a.Features(ctx, eda.FeatureOptions())
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteDatasetSummary(&buf, report, features); err != nil {
		s.logger.Error("[handleSummaryExport] %v", err)
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="heart-disease-summary.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
