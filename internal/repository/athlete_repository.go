package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/pkg/database"
)

// athleteRepository implements AthleteRepository interface
type athleteRepository struct {
	db *database.Postgres
}

// NewAthleteRepository creates a new athlete repository
func NewAthleteRepository(db *database.Postgres) AthleteRepository {
	return &athleteRepository{db: db}
}

const athleteColumns = `id, strava_id, username, firstname, lastname, profile_medium,
		access_token, refresh_token, expires_at, created_at, updated_at`

func scanAthlete(row interface{ Scan(dest ...any) error }) (*domain.Athlete, error) {
	athlete := &domain.Athlete{}
	var username, firstname, lastname, profileMedium sql.NullString

	err := row.Scan(
		&athlete.ID,
		&athlete.StravaID,
		&username,
		&firstname,
		&lastname,
		&profileMedium,
		&athlete.AccessToken,
		&athlete.RefreshToken,
		&athlete.ExpiresAt,
		&athlete.CreatedAt,
		&athlete.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if username.Valid {
		athlete.Username = &username.String
	}
	if firstname.Valid {
		athlete.Firstname = &firstname.String
	}
	if lastname.Valid {
		athlete.Lastname = &lastname.String
	}
	if profileMedium.Valid {
		athlete.ProfileMedium = &profileMedium.String
	}

	return athlete, nil
}

// GetByID retrieves an athlete by internal id
func (r *athleteRepository) GetByID(ctx context.Context, id int64) (*domain.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE id = $1`

	athlete, err := scanAthlete(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("athlete with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get athlete by id: %w", err)
	}

	return athlete, nil
}

// GetByStravaID retrieves an athlete by remote Strava id
func (r *athleteRepository) GetByStravaID(ctx context.Context, stravaID int64) (*domain.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE strava_id = $1`

	athlete, err := scanAthlete(r.db.DB.QueryRowContext(ctx, query, stravaID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("athlete with strava id %d not found: %w", stravaID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get athlete by strava id: %w", err)
	}

	return athlete, nil
}

// Upsert creates the athlete keyed on strava_id or refreshes profile and
// token fields on conflict. The athlete's ID and CreatedAt are filled from
// the stored row.
func (r *athleteRepository) Upsert(ctx context.Context, athlete *domain.Athlete) error {
	query := `
		INSERT INTO athletes (strava_id, username, firstname, lastname, profile_medium,
			access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (strava_id) DO UPDATE SET
			username = EXCLUDED.username,
			firstname = EXCLUDED.firstname,
			lastname = EXCLUDED.lastname,
			profile_medium = EXCLUDED.profile_medium,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	now := time.Now()
	err := r.db.DB.QueryRowContext(ctx, query,
		athlete.StravaID,
		athlete.Username,
		athlete.Firstname,
		athlete.Lastname,
		athlete.ProfileMedium,
		athlete.AccessToken,
		athlete.RefreshToken,
		athlete.ExpiresAt,
		now,
	).Scan(&athlete.ID, &athlete.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("athlete with strava id %d: %w", athlete.StravaID, ErrDuplicateAthlete)
		}
		return fmt.Errorf("failed to upsert athlete: %w", err)
	}

	athlete.UpdatedAt = now
	return nil
}

// UpdateTokens durably replaces the token triple for an athlete
func (r *athleteRepository) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt int64) error {
	query := `
		UPDATE athletes
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("athlete with id %d not found: %w", id, ErrNotFound)
	}

	return nil
}
