package api

import (
	"net/http"

	"datalens/app"
	"datalens/domain/dataset"
	apperrors "datalens/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRegisterDataset(c *gin.Context) {
	var req app.RegisterDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid dataset request: "+err.Error()))
		return
	}
	ds, err := s.deps.Datasets.Register(c.Request.Context(), ownerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ds)
}

func (s *Server) handleGetDataset(c *gin.Context) {
	ds, err := s.deps.Datasets.Get(c.Request.Context(), ownerFrom(c), dataset.Handle(c.Param("handle")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	if err := s.deps.Datasets.Delete(c.Request.Context(), ownerFrom(c), dataset.Handle(c.Param("handle"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
