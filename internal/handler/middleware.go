package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/utils"
)

// SessionMiddleware validates the session token and adds athlete info to
// context
func SessionMiddleware(sessions *utils.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := sessions.Validate(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired session token",
			})
			c.Abort()
			return
		}

		c.Set("athlete_id", claims.AthleteID)
		c.Set("strava_id", claims.StravaID)

		c.Next()
	}
}

// pathAthleteID parses the :athleteID route param and checks it against the
// session claim. A mismatch writes the response and returns false; routes
// only ever act on the session owner's data.
func pathAthleteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("athleteID"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid athlete ID",
		})
		return 0, false
	}

	if claim := c.GetInt64("athlete_id"); claim != id {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: "Athlete ID does not match session",
		})
		return 0, false
	}

	return id, true
}
