package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/service"
)

// SettingsHandler manages athlete settings and the computed zone table
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the athlete's settings, creating defaults on first access
func (h *SettingsHandler) Get(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.GetOrCreate(c.Request.Context(), athleteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// Update applies a partial settings update
func (h *SettingsHandler) Update(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	var req dto.SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), athleteID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// ChangeZoneModel switches the zone model, resetting zones to its defaults
func (h *SettingsHandler) ChangeZoneModel(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	var req dto.ChangeZoneModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	settings, err := h.settingsService.ChangeZoneModel(c.Request.Context(), athleteID, req.ZoneModelType)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// Reset restores the default settings
func (h *SettingsHandler) Reset(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Reset(c.Request.Context(), athleteID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// Zones returns the computed zone table under the current settings
func (h *SettingsHandler) Zones(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	zones, err := h.settingsService.Zones(c.Request.Context(), athleteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, zones)
}

func (h *SettingsHandler) writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrValidation) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}
