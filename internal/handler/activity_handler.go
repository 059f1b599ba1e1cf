package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/service"
)

// ActivityHandler serves stored activities and the calendar view
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns a filtered page of the athlete's activities
func (h *ActivityHandler) List(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	var query dto.ActivityListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	response, err := h.activityService.List(c.Request.Context(), athleteID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Detail returns one activity with its derived analytics
func (h *ActivityHandler) Detail(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	activityID, err := strconv.ParseInt(c.Param("activityID"), 10, 64)
	if err != nil || activityID < 1 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid activity ID",
		})
		return
	}

	detail, err := h.activityService.Detail(c.Request.Context(), athleteID, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Activity not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Calendar returns week-bucketed activities for a local date range
func (h *ActivityHandler) Calendar(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "from must be a YYYY-MM-DD date",
		})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "to must be a YYYY-MM-DD date",
		})
		return
	}

	response, err := h.activityService.Calendar(c.Request.Context(), athleteID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
