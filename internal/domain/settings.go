package domain

import "time"

// Zone model identifiers. The model selects how many HR/pace training
// zones are configured.
const (
	ZoneModel3 = "3_zone"
	ZoneModel5 = "5_zone"
	ZoneModel7 = "7_zone"
)

// ZoneModelCounts maps a zone model identifier to its zone count.
var ZoneModelCounts = map[string]int{
	ZoneModel3: 3,
	ZoneModel5: 5,
	ZoneModel7: 7,
}

// UserSettings is the 1:1 companion record to an Athlete holding zone
// configuration and display preferences.
//
// HRZones holds upper-bound percentages of max HR, ascending, ending at 100.
// PaceZones holds thresholds in min/km, strictly descending (slower to
// faster). Both arrays always have exactly as many elements as the selected
// zone model's count.
type UserSettings struct {
	ID               int64     `json:"id" db:"id"`
	AthleteID        int64     `json:"athlete_id" db:"athlete_id"`
	ZoneModelType    string    `json:"zone_model_type" db:"zone_model_type"`
	MaxHeartRate     int       `json:"max_heart_rate" db:"max_heart_rate"`
	RestHeartRate    int       `json:"rest_heart_rate" db:"rest_heart_rate"`
	HRZones          []float64 `json:"hr_zones" db:"hr_zones"`
	PaceZones        []float64 `json:"pace_zones" db:"pace_zones"`
	CalendarStartDay string    `json:"calendar_start_day" db:"calendar_start_day"`
	DistanceUnit     string    `json:"distance_unit" db:"distance_unit"`
	TemperatureUnit  string    `json:"temperature_unit" db:"temperature_unit"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultZones returns the default HR percentages and pace thresholds for a
// zone model. Unknown models fall back to the 5-zone defaults.
func DefaultZones(zoneModelType string) (hrZones, paceZones []float64) {
	switch zoneModelType {
	case ZoneModel3:
		return []float64{70, 85, 100}, []float64{6.5, 5.5, 4.5}
	case ZoneModel7:
		return []float64{55, 65, 75, 82, 89, 94, 100}, []float64{7.5, 6.5, 5.5, 5.0, 4.5, 4.0, 3.5}
	default:
		return []float64{60, 70, 80, 90, 100}, []float64{7.0, 6.0, 5.0, 4.5, 4.0}
	}
}

// ApplyZoneModelDefaults resets both zone arrays to the defaults of the
// currently selected zone model.
func (s *UserSettings) ApplyZoneModelDefaults() {
	s.HRZones, s.PaceZones = DefaultZones(s.ZoneModelType)
}

// NewDefaultSettings creates the settings record an athlete gets on first
// access.
func NewDefaultSettings(athleteID int64) *UserSettings {
	s := &UserSettings{
		AthleteID:        athleteID,
		ZoneModelType:    ZoneModel5,
		MaxHeartRate:     190,
		RestHeartRate:    60,
		CalendarStartDay: "monday",
		DistanceUnit:     "km",
		TemperatureUnit:  "celsius",
	}
	s.ApplyZoneModelDefaults()
	return s
}
