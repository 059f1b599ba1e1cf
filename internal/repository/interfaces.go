package repository

import (
	"context"
	"time"

	"github.com/talaria-app/talaria/internal/domain"
)

// AthleteRepository defines methods for athlete operations
type AthleteRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Athlete, error)
	GetByStravaID(ctx context.Context, stravaID int64) (*domain.Athlete, error)
	Upsert(ctx context.Context, athlete *domain.Athlete) error
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt int64) error
}

// ActivityFilter narrows and orders activity list queries. SortBy must be
// one of the allow-listed column names; anything else falls back to
// start_date.
type ActivityFilter struct {
	SportType string
	SortBy    string
	Order     string
	Limit     int
	Offset    int
}

// ActivityRepository defines methods for activity operations
type ActivityRepository interface {
	GetByID(ctx context.Context, athleteID, id int64) (*domain.Activity, error)
	GetByStravaID(ctx context.Context, stravaID int64) (*domain.Activity, error)
	GetLatestByStartDate(ctx context.Context, athleteID int64) (*domain.Activity, error)
	List(ctx context.Context, athleteID int64, filter ActivityFilter) ([]*domain.Activity, int, error)
	ListRange(ctx context.Context, athleteID int64, from, to time.Time) ([]*domain.Activity, error)
	UpsertBatch(ctx context.Context, activities []*domain.Activity) error
}

// SettingsRepository defines methods for user settings operations
type SettingsRepository interface {
	GetByAthleteID(ctx context.Context, athleteID int64) (*domain.UserSettings, error)
	Create(ctx context.Context, settings *domain.UserSettings) error
	Update(ctx context.Context, settings *domain.UserSettings) error
}
