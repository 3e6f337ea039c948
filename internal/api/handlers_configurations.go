package api

import (
	"net/http"

	"datalens/domain/configuration"
	"datalens/domain/core"
	apperrors "datalens/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListPresets(c *gin.Context) {
	presets := make(map[string]*configuration.AnalysisConfiguration)
	for _, name := range configuration.PresetNames() {
		cfg, _ := configuration.Preset(name)
		presets[name] = cfg
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

func (s *Server) handleListConfigurations(c *gin.Context) {
	list, err := s.deps.Configurations.List(c.Request.Context(), ownerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configurations": list, "count": len(list)})
}

func (s *Server) handleGetDefaultConfiguration(c *gin.Context) {
	cfg, err := s.deps.Configurations.GetDefault(c.Request.Context(), ownerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleGetConfiguration(c *gin.Context) {
	cfg, err := s.deps.Configurations.Get(c.Request.Context(), ownerFrom(c), core.ConfigurationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// bindConfiguration decodes a body over the default preset (or ?preset=) so
// omitted fields keep their stock values.
func bindConfiguration(c *gin.Context) (*configuration.AnalysisConfiguration, bool) {
	base := configuration.Default()
	if name := c.Query("preset"); name != "" {
		preset, ok := configuration.Preset(name)
		if !ok {
			respondError(c, apperrors.InvalidInput("unknown preset "+name))
			return nil, false
		}
		base = preset
	}
	if err := c.ShouldBindJSON(base); err != nil {
		respondError(c, apperrors.InvalidInput("invalid configuration body: "+err.Error()))
		return nil, false
	}
	return base, true
}

func (s *Server) handleCreateConfiguration(c *gin.Context) {
	cfg, ok := bindConfiguration(c)
	if !ok {
		return
	}
	created, err := s.deps.Configurations.Create(c.Request.Context(), ownerFrom(c), cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateConfiguration(c *gin.Context) {
	cfg, ok := bindConfiguration(c)
	if !ok {
		return
	}
	updated, err := s.deps.Configurations.Update(c.Request.Context(), ownerFrom(c), core.ConfigurationID(c.Param("id")), cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteConfiguration(c *gin.Context) {
	if err := s.deps.Configurations.Delete(c.Request.Context(), ownerFrom(c), core.ConfigurationID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetDefaultConfiguration(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ownerFrom(c)
	id := core.ConfigurationID(c.Param("id"))
	if err := s.deps.Configurations.SetDefault(ctx, owner, id); err != nil {
		respondError(c, err)
		return
	}
	cfg, err := s.deps.Configurations.Get(ctx, owner, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
