package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/strava"
	"github.com/talaria-app/talaria/internal/utils"
	"go.uber.org/zap"
)

// AuthService handles the Strava OAuth flow and local session issuance
type AuthService struct {
	athleteRepo  repository.AthleteRepository
	settingsRepo repository.SettingsRepository
	client       StravaAPI
	sessions     *utils.SessionManager
	redirectURI  string
	logger       *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	athleteRepo repository.AthleteRepository,
	settingsRepo repository.SettingsRepository,
	client StravaAPI,
	sessions *utils.SessionManager,
	redirectURI string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		athleteRepo:  athleteRepo,
		settingsRepo: settingsRepo,
		client:       client,
		sessions:     sessions,
		redirectURI:  redirectURI,
		logger:       logger,
	}
}

// AuthorizationURL returns the Strava OAuth authorize URL for the frontend
func (s *AuthService) AuthorizationURL() string {
	return s.client.AuthorizationURL(s.redirectURI)
}

// ExchangeCode swaps an OAuth authorization code for a local session. The
// athlete record is created or updated from the embedded profile, and a
// default settings row is created on first login.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*dto.SessionResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrValidation)
	}

	token, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, strava.ErrAuthExpired) || errors.Is(err, strava.ErrForbidden) {
			return nil, fmt.Errorf("%w: code exchange rejected: %v", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.Athlete == nil || token.Athlete.ID == 0 {
		return nil, fmt.Errorf("%w: token response missing athlete profile", ErrAuthentication)
	}

	athlete := &domain.Athlete{
		StravaID:      token.Athlete.ID,
		Username:      optionalString(token.Athlete.Username),
		Firstname:     optionalString(token.Athlete.Firstname),
		Lastname:      optionalString(token.Athlete.Lastname),
		ProfileMedium: optionalString(token.Athlete.ProfileMedium),
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		ExpiresAt:     token.ExpiresAt,
	}
	if err := s.athleteRepo.Upsert(ctx, athlete); err != nil {
		return nil, fmt.Errorf("%w: failed to store athlete: %v", ErrPersistence, err)
	}

	if _, err := s.settingsRepo.GetByAthleteID(ctx, athlete.ID); errors.Is(err, repository.ErrNotFound) {
		if err := s.settingsRepo.Create(ctx, domain.NewDefaultSettings(athlete.ID)); err != nil {
			return nil, fmt.Errorf("%w: failed to create default settings: %v", ErrPersistence, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to load settings: %v", ErrPersistence, err)
	}

	session, err := s.sessions.Mint(athlete.ID, athlete.StravaID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	s.logger.Info("athlete authenticated",
		zap.Int64("athlete_id", athlete.ID),
		zap.Int64("strava_id", athlete.StravaID),
	)

	return &dto.SessionResponse{
		AccessToken: session,
		TokenType:   "Bearer",
		ExpiresIn:   s.sessions.ExpirySeconds(),
		Athlete:     dto.NewAthleteResponse(athlete),
	}, nil
}

// GetAthlete returns the public profile of an athlete
func (s *AuthService) GetAthlete(ctx context.Context, athleteID int64) (*dto.AthleteResponse, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete: %w", err)
	}
	resp := dto.NewAthleteResponse(athlete)
	return &resp, nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
