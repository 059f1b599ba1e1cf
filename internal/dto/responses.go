package dto

import (
	"time"

	"github.com/talaria-app/talaria/internal/analytics"
	"github.com/talaria-app/talaria/internal/domain"
)

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse is the standard success payload
type SuccessResponse struct {
	Message string `json:"message"`
}

// SessionResponse is returned after a successful OAuth code exchange
type SessionResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Athlete     AthleteResponse `json:"athlete"`
}

// AthleteResponse is the public athlete profile
type AthleteResponse struct {
	ID            int64   `json:"id"`
	StravaID      int64   `json:"strava_id"`
	Username      *string `json:"username,omitempty"`
	Firstname     *string `json:"firstname,omitempty"`
	Lastname      *string `json:"lastname,omitempty"`
	ProfileMedium *string `json:"profile_medium,omitempty"`
}

// NewAthleteResponse converts a domain athlete to its public representation
func NewAthleteResponse(a *domain.Athlete) AthleteResponse {
	return AthleteResponse{
		ID:            a.ID,
		StravaID:      a.StravaID,
		Username:      a.Username,
		Firstname:     a.Firstname,
		Lastname:      a.Lastname,
		ProfileMedium: a.ProfileMedium,
	}
}

// SyncResponse summarizes a completed sync run. Total is the size of the
// synced batch, new plus updated.
type SyncResponse struct {
	Success           bool       `json:"success"`
	ActivitiesSynced  int        `json:"activities_synced"`
	ActivitiesUpdated int        `json:"activities_updated"`
	Total             int        `json:"total"`
	LastSync          *time.Time `json:"last_sync,omitempty"`
	Message           string     `json:"message"`
}

// ActivityResponse is one activity in a list
type ActivityResponse struct {
	ID               int64    `json:"id"`
	StravaID         int64    `json:"strava_id"`
	Name             string   `json:"name"`
	SportType        string   `json:"sport_type"`
	StartDate        string   `json:"start_date"`
	StartDateLocal   string   `json:"start_date_local"`
	Distance         float64  `json:"distance"`
	MovingTime       int      `json:"moving_time"`
	ElapsedTime      int      `json:"elapsed_time"`
	TotalElevation   float64  `json:"total_elevation_gain"`
	AverageSpeed     *float64 `json:"average_speed,omitempty"`
	MaxSpeed         *float64 `json:"max_speed,omitempty"`
	AverageHeartrate *float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate     *int     `json:"max_heartrate,omitempty"`
	AverageCadence   *float64 `json:"average_cadence,omitempty"`
	Calories         *float64 `json:"calories,omitempty"`
	KudosCount       *int     `json:"kudos_count,omitempty"`
	SummaryPolyline  *string  `json:"summary_polyline,omitempty"`
}

// NewActivityResponse converts a domain activity to its list representation
func NewActivityResponse(a *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:               a.ID,
		StravaID:         a.StravaID,
		Name:             a.Name,
		SportType:        a.SportType,
		StartDate:        a.StartDate.Format(time.RFC3339),
		StartDateLocal:   a.StartDateLocal.Format("2006-01-02T15:04:05"),
		Distance:         a.Distance,
		MovingTime:       a.MovingTime,
		ElapsedTime:      a.ElapsedTime,
		TotalElevation:   a.TotalElevationGain,
		AverageSpeed:     a.AverageSpeed,
		MaxSpeed:         a.MaxSpeed,
		AverageHeartrate: a.AverageHeartrate,
		MaxHeartrate:     a.MaxHeartrate,
		AverageCadence:   a.AverageCadence,
		Calories:         a.Calories,
		KudosCount:       a.KudosCount,
		SummaryPolyline:  a.SummaryPolyline,
	}
}

// ActivityListResponse is a filtered page of activities
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Total      int                `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	HasMore    bool               `json:"has_more"`
}

// ActivityDetailResponse enriches an activity with derived analytics
type ActivityDetailResponse struct {
	ActivityResponse
	Route      []analytics.LatLng `json:"route,omitempty"`
	Splits     []analytics.Split  `json:"splits,omitempty"`
	HRZone     *int               `json:"hr_zone,omitempty"`
	PaceZone   *int               `json:"pace_zone,omitempty"`
	PaceMinKm  *float64           `json:"pace_min_per_km,omitempty"`
	PaceString *string            `json:"pace,omitempty"`
}

// SettingsResponse is the athlete's full settings document
type SettingsResponse struct {
	AthleteID        int64     `json:"athlete_id"`
	ZoneModelType    string    `json:"zone_model_type"`
	MaxHeartRate     int       `json:"max_heart_rate"`
	RestHeartRate    int       `json:"rest_heart_rate"`
	HRZones          []float64 `json:"hr_zones"`
	PaceZones        []float64 `json:"pace_zones"`
	CalendarStartDay string    `json:"calendar_start_day"`
	DistanceUnit     string    `json:"distance_unit"`
	TemperatureUnit  string    `json:"temperature_unit"`
}

// NewSettingsResponse converts domain settings to their public representation
func NewSettingsResponse(s *domain.UserSettings) SettingsResponse {
	return SettingsResponse{
		AthleteID:        s.AthleteID,
		ZoneModelType:    s.ZoneModelType,
		MaxHeartRate:     s.MaxHeartRate,
		RestHeartRate:    s.RestHeartRate,
		HRZones:          s.HRZones,
		PaceZones:        s.PaceZones,
		CalendarStartDay: s.CalendarStartDay,
		DistanceUnit:     s.DistanceUnit,
		TemperatureUnit:  s.TemperatureUnit,
	}
}

// HRZoneDetail is one computed heart-rate zone with its display metadata
type HRZoneDetail struct {
	Zone   int    `json:"zone"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	MinBPM int    `json:"min_bpm"`
	MaxBPM int    `json:"max_bpm"`
}

// PaceZoneDetail is one computed pace zone. Slower is empty for the
// unbounded first zone; paces render as "M:SS".
type PaceZoneDetail struct {
	Zone   int    `json:"zone"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Slower string `json:"slower,omitempty"`
	Faster string `json:"faster"`
}

// ZonesResponse is the athlete's computed zone table
type ZonesResponse struct {
	ZoneModelType string           `json:"zone_model_type"`
	HRZones       []HRZoneDetail   `json:"hr_zones"`
	PaceZones     []PaceZoneDetail `json:"pace_zones"`
}

// CalendarWeek is one week bucket of the calendar view, oldest day first
type CalendarWeek struct {
	WeekStart string        `json:"week_start"`
	Days      []CalendarDay `json:"days"`
}

// CalendarDay groups the activities that started on one local date
type CalendarDay struct {
	Date       string             `json:"date"`
	Activities []ActivityResponse `json:"activities"`
}

// CalendarResponse is the ordered month-style calendar of activities
type CalendarResponse struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Weeks []CalendarWeek `json:"weeks"`
}
