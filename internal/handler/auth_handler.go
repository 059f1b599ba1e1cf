package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/service"
)

// AuthHandler handles the Strava OAuth flow and athlete profile requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GetAuthorizeURL returns the Strava OAuth authorize URL for the frontend
func (h *AuthHandler) GetAuthorizeURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authorize_url": h.authService.AuthorizationURL(),
	})
}

// Callback exchanges the OAuth authorization code for a local session
func (h *AuthHandler) Callback(c *gin.Context) {
	var req dto.TokenExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	response, err := h.authService.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrAuthentication):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization code was rejected by Strava",
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal server error",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMe returns the authenticated athlete's profile
func (h *AuthHandler) GetMe(c *gin.Context) {
	athleteID := c.GetInt64("athlete_id")
	if athleteID == 0 {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Athlete ID not found in context",
		})
		return
	}

	athlete, err := h.authService.GetAthlete(c.Request.Context(), athleteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, athlete)
}
