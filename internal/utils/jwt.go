package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/talaria-app/talaria/internal/domain"
)

// SessionManager mints and validates the local session tokens handed to the
// frontend after the Strava OAuth exchange. These are unrelated to the Strava
// tokens stored on the athlete record.
type SessionManager struct {
	secret []byte
	expiry time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Mint generates a signed session token for an athlete
func (m *SessionManager) Mint(athleteID, stravaID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"athlete_id": athleteID,
		"strava_id":  stravaID,
		"exp":        now.Add(m.expiry).Unix(),
		"iat":        now.Unix(),
		"jti":        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate validates a session token and returns its claims
func (m *SessionManager) Validate(tokenString string) (*domain.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session token claims")
	}

	athleteID, ok := claims["athlete_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid athlete_id in session token")
	}

	stravaID, ok := claims["strava_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid strava_id in session token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in session token")
	}
	if time.Now().Unix() > int64(exp) {
		return nil, fmt.Errorf("session token is expired")
	}

	return &domain.SessionClaims{
		AthleteID: int64(athleteID),
		StravaID:  int64(stravaID),
	}, nil
}

// ExpirySeconds returns the session token lifetime in seconds
func (m *SessionManager) ExpirySeconds() int64 {
	return int64(m.expiry.Seconds())
}
