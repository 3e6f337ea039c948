package api

import (
	"net/http"
	"strconv"

	"datalens/app"
	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/report"
	apperrors "datalens/internal/errors"
	"datalens/internal/render"

	"github.com/gin-gonic/gin"
)

type generateReportRequest struct {
	Dataset         string                               `json:"dataset" binding:"required"`
	TargetColumn    string                               `json:"target_column"`
	ConfigurationID string                               `json:"configuration_id"`
	Preset          string                               `json:"preset"`
	Configuration   *configuration.AnalysisConfiguration `json:"configuration"`
}

func (s *Server) handleGenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid report request: "+err.Error()))
		return
	}
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	rec, err := s.deps.Reports.Generate(c.Request.Context(), app.GenerateRequest{
		OwnerID:         ownerFrom(c),
		Handle:          dataset.Handle(req.Dataset),
		TargetColumn:    req.TargetColumn,
		ConfigurationID: core.ConfigurationID(req.ConfigurationID),
		Preset:          req.Preset,
		Configuration:   req.Configuration,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", "/api/v1/reports/"+rec.ID.String())
	if format == render.FormatJSON {
		c.JSON(http.StatusCreated, rec)
		return
	}
	writeRendered(c, http.StatusCreated, rec.Result, format)
}

func (s *Server) handleGetReport(c *gin.Context) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	rec, err := s.deps.Reports.Get(c.Request.Context(), ownerFrom(c), core.ReportID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	if format == render.FormatJSON {
		c.JSON(http.StatusOK, rec)
		return
	}
	writeRendered(c, http.StatusOK, rec.Result, format)
}

func (s *Server) handleListDatasetReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	records, err := s.deps.Reports.ListByDataset(c.Request.Context(), ownerFrom(c), dataset.Handle(c.Param("handle")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": records, "count": len(records)})
}

func writeRendered(c *gin.Context, status int, res report.Result, format render.Format) {
	body, err := render.Encode(&res, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(status, format.ContentType(), body)
}
