package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/pkg/database"
)

// settingsRepository implements SettingsRepository interface. Zone arrays
// are stored as JSON columns so their length can follow the zone model.
type settingsRepository struct {
	db *database.Postgres
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.Postgres) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByAthleteID retrieves the settings record for an athlete
func (r *settingsRepository) GetByAthleteID(ctx context.Context, athleteID int64) (*domain.UserSettings, error) {
	query := `
		SELECT id, athlete_id, zone_model_type, max_heart_rate, rest_heart_rate,
			hr_zones, pace_zones, calendar_start_day, distance_unit, temperature_unit,
			created_at, updated_at
		FROM user_settings
		WHERE athlete_id = $1
	`

	settings := &domain.UserSettings{}
	var hrZonesJSON, paceZonesJSON []byte

	err := r.db.DB.QueryRowContext(ctx, query, athleteID).Scan(
		&settings.ID,
		&settings.AthleteID,
		&settings.ZoneModelType,
		&settings.MaxHeartRate,
		&settings.RestHeartRate,
		&hrZonesJSON,
		&paceZonesJSON,
		&settings.CalendarStartDay,
		&settings.DistanceUnit,
		&settings.TemperatureUnit,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings for athlete %d not found: %w", athleteID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := json.Unmarshal(hrZonesJSON, &settings.HRZones); err != nil {
		return nil, fmt.Errorf("failed to decode hr zones: %w", err)
	}
	if err := json.Unmarshal(paceZonesJSON, &settings.PaceZones); err != nil {
		return nil, fmt.Errorf("failed to decode pace zones: %w", err)
	}

	return settings, nil
}

// Create inserts a new settings record for an athlete
func (r *settingsRepository) Create(ctx context.Context, settings *domain.UserSettings) error {
	query := `
		INSERT INTO user_settings (athlete_id, zone_model_type, max_heart_rate, rest_heart_rate,
			hr_zones, pace_zones, calendar_start_day, distance_unit, temperature_unit,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`

	hrZonesJSON, paceZonesJSON, err := encodeZones(settings)
	if err != nil {
		return err
	}

	now := time.Now()
	err = r.db.DB.QueryRowContext(ctx, query,
		settings.AthleteID,
		settings.ZoneModelType,
		settings.MaxHeartRate,
		settings.RestHeartRate,
		hrZonesJSON,
		paceZonesJSON,
		settings.CalendarStartDay,
		settings.DistanceUnit,
		settings.TemperatureUnit,
		now,
	).Scan(&settings.ID)
	if err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}

	settings.CreatedAt = now
	settings.UpdatedAt = now
	return nil
}

// Update fully replaces the mutable fields of a settings record
func (r *settingsRepository) Update(ctx context.Context, settings *domain.UserSettings) error {
	query := `
		UPDATE user_settings
		SET zone_model_type = $2, max_heart_rate = $3, rest_heart_rate = $4,
			hr_zones = $5, pace_zones = $6, calendar_start_day = $7,
			distance_unit = $8, temperature_unit = $9, updated_at = $10
		WHERE athlete_id = $1
	`

	hrZonesJSON, paceZonesJSON, err := encodeZones(settings)
	if err != nil {
		return err
	}

	now := time.Now()
	result, err := r.db.DB.ExecContext(ctx, query,
		settings.AthleteID,
		settings.ZoneModelType,
		settings.MaxHeartRate,
		settings.RestHeartRate,
		hrZonesJSON,
		paceZonesJSON,
		settings.CalendarStartDay,
		settings.DistanceUnit,
		settings.TemperatureUnit,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("settings for athlete %d not found: %w", settings.AthleteID, ErrNotFound)
	}

	settings.UpdatedAt = now
	return nil
}

func encodeZones(settings *domain.UserSettings) ([]byte, []byte, error) {
	hrZonesJSON, err := json.Marshal(settings.HRZones)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode hr zones: %w", err)
	}
	paceZonesJSON, err := json.Marshal(settings.PaceZones)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode pace zones: %w", err)
	}
	return hrZonesJSON, paceZonesJSON, nil
}
