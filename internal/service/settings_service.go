package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talaria-app/talaria/internal/analytics"
	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/repository"
	"go.uber.org/zap"
)

// Bounds for heart rate settings in BPM.
const (
	minMaxHeartRate  = 120
	maxMaxHeartRate  = 220
	minRestHeartRate = 30
	maxRestHeartRate = 100
)

// SettingsService manages athlete settings: zone configuration and display
// preferences. Updates are partial; only the fields present in the request
// change, and every changed field is validated against the stored state.
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, logger: logger}
}

// GetOrCreate returns the athlete's settings, creating the default record on
// first access.
func (s *SettingsService) GetOrCreate(ctx context.Context, athleteID int64) (*domain.UserSettings, error) {
	settings, err := s.settingsRepo.GetByAthleteID(ctx, athleteID)
	if errors.Is(err, repository.ErrNotFound) {
		settings = domain.NewDefaultSettings(athleteID)
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, fmt.Errorf("%w: failed to create settings: %v", ErrPersistence, err)
		}
		s.logger.Info("created default settings", zap.Int64("athlete_id", athleteID))
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load settings: %v", ErrPersistence, err)
	}
	return settings, nil
}

// Update applies a partial settings update. Field validation happens against
// the merged state, so raising max HR and rest HR together is checked as a
// pair.
func (s *SettingsService) Update(ctx context.Context, athleteID int64, req *dto.SettingsUpdateRequest) (*domain.UserSettings, error) {
	settings, err := s.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	if req.MaxHeartRate != nil {
		settings.MaxHeartRate = *req.MaxHeartRate
	}
	if req.RestHeartRate != nil {
		settings.RestHeartRate = *req.RestHeartRate
	}
	if req.HRZones != nil {
		settings.HRZones = *req.HRZones
	}
	if req.PaceZones != nil {
		settings.PaceZones = *req.PaceZones
	}
	if req.CalendarStartDay != nil {
		settings.CalendarStartDay = *req.CalendarStartDay
	}
	if req.DistanceUnit != nil {
		settings.DistanceUnit = *req.DistanceUnit
	}
	if req.TemperatureUnit != nil {
		settings.TemperatureUnit = *req.TemperatureUnit
	}

	if err := validateSettings(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("%w: failed to update settings: %v", ErrPersistence, err)
	}
	return settings, nil
}

// ChangeZoneModel switches the zone model and resets both zone arrays to the
// new model's defaults.
func (s *SettingsService) ChangeZoneModel(ctx context.Context, athleteID int64, zoneModelType string) (*domain.UserSettings, error) {
	if _, ok := domain.ZoneModelCounts[zoneModelType]; !ok {
		return nil, fmt.Errorf("%w: invalid zone model: %s", ErrValidation, zoneModelType)
	}

	settings, err := s.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	settings.ZoneModelType = zoneModelType
	settings.ApplyZoneModelDefaults()

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("%w: failed to update settings: %v", ErrPersistence, err)
	}

	s.logger.Info("changed zone model",
		zap.Int64("athlete_id", athleteID),
		zap.String("zone_model_type", zoneModelType),
	)
	return settings, nil
}

// Reset restores the athlete's settings to the defaults of the 5-zone model
func (s *SettingsService) Reset(ctx context.Context, athleteID int64) (*domain.UserSettings, error) {
	settings, err := s.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	defaults := domain.NewDefaultSettings(athleteID)
	defaults.ID = settings.ID
	defaults.CreatedAt = settings.CreatedAt

	if err := s.settingsRepo.Update(ctx, defaults); err != nil {
		return nil, fmt.Errorf("%w: failed to reset settings: %v", ErrPersistence, err)
	}
	return defaults, nil
}

// Zones returns the athlete's computed zone table: absolute BPM bounds and
// pace bounds per zone, with display names and colors for the active model.
func (s *SettingsService) Zones(ctx context.Context, athleteID int64) (*dto.ZonesResponse, error) {
	settings, err := s.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	names := analytics.ZoneNames(settings.ZoneModelType)
	colors := analytics.ZoneColors()

	resp := &dto.ZonesResponse{ZoneModelType: settings.ZoneModelType}

	for i, z := range analytics.CalculateHRZones(settings) {
		resp.HRZones = append(resp.HRZones, dto.HRZoneDetail{
			Zone:   i + 1,
			Name:   names[i],
			Color:  colors[i],
			MinBPM: z.MinBPM,
			MaxBPM: z.MaxBPM,
		})
	}

	for i, z := range analytics.CalculatePaceZones(settings) {
		detail := dto.PaceZoneDetail{
			Zone:   i + 1,
			Name:   names[i],
			Color:  colors[i],
			Faster: analytics.FormatPace(z.Faster),
		}
		if i > 0 {
			detail.Slower = analytics.FormatPace(z.Slower)
		}
		resp.PaceZones = append(resp.PaceZones, detail)
	}

	return resp, nil
}

func validateSettings(settings *domain.UserSettings) error {
	if settings.MaxHeartRate < minMaxHeartRate || settings.MaxHeartRate > maxMaxHeartRate {
		return fmt.Errorf("max heart rate must be between %d and %d", minMaxHeartRate, maxMaxHeartRate)
	}
	if settings.RestHeartRate < minRestHeartRate || settings.RestHeartRate > maxRestHeartRate {
		return fmt.Errorf("rest heart rate must be between %d and %d", minRestHeartRate, maxRestHeartRate)
	}
	if settings.MaxHeartRate <= settings.RestHeartRate {
		return fmt.Errorf("max heart rate must be greater than rest heart rate")
	}

	if err := analytics.ValidateZoneArray(settings.HRZones, "hr", settings.ZoneModelType); err != nil {
		return err
	}
	if err := analytics.ValidateZoneArray(settings.PaceZones, "pace", settings.ZoneModelType); err != nil {
		return err
	}

	switch settings.CalendarStartDay {
	case "monday", "sunday":
	default:
		return fmt.Errorf("calendar start day must be monday or sunday")
	}
	switch settings.DistanceUnit {
	case "km", "miles":
	default:
		return fmt.Errorf("distance unit must be km or miles")
	}
	switch settings.TemperatureUnit {
	case "celsius", "fahrenheit":
	default:
		return fmt.Errorf("temperature unit must be celsius or fahrenheit")
	}

	return nil
}
