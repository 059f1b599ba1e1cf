package service

import (
	"context"

	"github.com/talaria-app/talaria/internal/strava"
)

// StravaAPI is the slice of the Strava client the services consume. Tests
// substitute a fake here.
type StravaAPI interface {
	AuthorizationURL(redirectURI string) string
	ExchangeCode(ctx context.Context, code string) (*strava.TokenResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*strava.TokenResponse, error)
	ListActivities(ctx context.Context, accessToken string, opts strava.ListOptions) ([]strava.Activity, error)
	GetActivityDetail(ctx context.Context, accessToken string, activityID int64) (*strava.Activity, error)
	GetActivityStreams(ctx context.Context, accessToken string, activityID int64, keys []string) (strava.StreamSet, error)
}
