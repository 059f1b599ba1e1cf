package dto

// TokenExchangeRequest carries the OAuth authorization code returned by Strava
type TokenExchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

// SettingsUpdateRequest holds a partial settings update. Nil fields are left unchanged.
type SettingsUpdateRequest struct {
	MaxHeartRate     *int       `json:"max_heart_rate"`
	RestHeartRate    *int       `json:"rest_heart_rate"`
	HRZones          *[]float64 `json:"hr_zones"`
	PaceZones        *[]float64 `json:"pace_zones"`
	CalendarStartDay *string    `json:"calendar_start_day"`
	DistanceUnit     *string    `json:"distance_unit"`
	TemperatureUnit  *string    `json:"temperature_unit"`
}

// ChangeZoneModelRequest switches the zone model and resets zones to that model's defaults
type ChangeZoneModelRequest struct {
	ZoneModelType string `json:"zone_model_type" binding:"required"`
}

// ActivityListQuery holds list filtering and pagination parameters
type ActivityListQuery struct {
	SportType string `form:"sport_type"`
	SortBy    string `form:"sort_by,default=start_date"`
	Order     string `form:"order,default=desc"`
	Limit     int    `form:"limit,default=50"`
	Offset    int    `form:"offset,default=0"`
}
