package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/strava"
	"go.uber.org/zap"
)

// TokenService keeps athletes' Strava access tokens valid. Refreshed tokens
// are persisted before they are handed out, so a crash between refresh and
// use never strands a rotated refresh token.
type TokenService struct {
	athleteRepo repository.AthleteRepository
	client      StravaAPI
	retry       strava.RetryPolicy
	metrics     *SyncMetrics
	logger      *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(
	athleteRepo repository.AthleteRepository,
	client StravaAPI,
	retry strava.RetryPolicy,
	metrics *SyncMetrics,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		athleteRepo: athleteRepo,
		client:      client,
		retry:       retry,
		metrics:     metrics,
		logger:      logger,
	}
}

// EnsureValidToken returns a usable access token for the athlete, refreshing
// and persisting it first when the stored one is past its expiry. The athlete
// struct is updated in place on refresh.
func (s *TokenService) EnsureValidToken(ctx context.Context, athlete *domain.Athlete) (string, error) {
	if !athlete.TokenExpired(time.Now()) {
		return athlete.AccessToken, nil
	}
	return s.Refresh(ctx, athlete)
}

// Refresh exchanges the athlete's refresh token for a new triple. Strava
// rotates refresh tokens on use, so when two runs race the loser's token is
// already spent; the loser re-reads the credential the winner persisted and
// uses that instead.
func (s *TokenService) Refresh(ctx context.Context, athlete *domain.Athlete) (string, error) {
	var token *strava.TokenResponse
	err := s.retry.Do(ctx, func() error {
		var opErr error
		token, opErr = s.client.RefreshAccessToken(ctx, athlete.RefreshToken)
		return opErr
	})
	if err != nil {
		if errors.Is(err, strava.ErrAuthExpired) || errors.Is(err, strava.ErrForbidden) {
			if access, rereadErr := s.rereadCredential(ctx, athlete); rereadErr == nil {
				return access, nil
			}
			return "", fmt.Errorf("%w: strava refresh rejected: %v", ErrAuthentication, err)
		}
		return "", fmt.Errorf("failed to refresh strava token: %w", err)
	}

	if err := s.athleteRepo.UpdateTokens(ctx, athlete.ID, token.AccessToken, token.RefreshToken, token.ExpiresAt); err != nil {
		return "", fmt.Errorf("%w: failed to persist refreshed tokens: %v", ErrPersistence, err)
	}

	athlete.AccessToken = token.AccessToken
	athlete.RefreshToken = token.RefreshToken
	athlete.ExpiresAt = token.ExpiresAt

	if s.metrics != nil {
		s.metrics.TokenRefreshes.Add(ctx, 1)
	}
	s.logger.Info("refreshed strava token",
		zap.Int64("athlete_id", athlete.ID),
		zap.Int64("expires_at", token.ExpiresAt),
	)

	return token.AccessToken, nil
}

// rereadCredential checks whether a concurrent run already rotated the
// tokens. It succeeds only when the stored credential differs from the one we
// tried and is still fresh.
func (s *TokenService) rereadCredential(ctx context.Context, athlete *domain.Athlete) (string, error) {
	stored, err := s.athleteRepo.GetByID(ctx, athlete.ID)
	if err != nil {
		return "", err
	}
	if stored.RefreshToken == athlete.RefreshToken || stored.TokenExpired(time.Now()) {
		return "", errors.New("stored credential unchanged")
	}

	athlete.AccessToken = stored.AccessToken
	athlete.RefreshToken = stored.RefreshToken
	athlete.ExpiresAt = stored.ExpiresAt
	return stored.AccessToken, nil
}
