package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/service"
	"github.com/talaria-app/talaria/internal/strava"
)

// SyncHandler triggers activity sync runs
type SyncHandler struct {
	syncService *service.SyncService
	lock        *service.SyncLock
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncService *service.SyncService, lock *service.SyncLock) *SyncHandler {
	return &SyncHandler{syncService: syncService, lock: lock}
}

// Sync runs one sync for the athlete. Runs are serialized per athlete; a
// request that finds the lease taken fails fast with 409 instead of queueing.
func (h *SyncHandler) Sync(c *gin.Context) {
	athleteID, ok := pathAthleteID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	token, err := h.lock.Acquire(ctx, athleteID)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "Conflict",
				Message: "A sync is already running for this athlete",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}
	defer func() {
		_ = h.lock.Release(ctx, athleteID, token)
	}()

	result, err := h.syncService.Sync(ctx, athleteID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Athlete not found",
			})
		case errors.Is(err, service.ErrAuthentication):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Strava authorization expired, please reconnect",
			})
		case errors.Is(err, strava.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Strava rate limit reached, try again later",
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal server error",
				Message: err.Error(),
			})
		}
		return
	}

	lastSync := result.LastSync
	c.JSON(http.StatusOK, dto.SyncResponse{
		Success:           true,
		ActivitiesSynced:  result.Created,
		ActivitiesUpdated: result.Updated,
		Total:             result.Total,
		LastSync:          &lastSync,
		Message:           fmt.Sprintf("Synced %d new and updated %d existing activities", result.Created, result.Updated),
	})
}
