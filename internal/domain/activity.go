package domain

import "time"

// Activity represents one recorded workout session owned by an Athlete.
// StravaID is globally unique and is the merge key for sync: the
// (AthleteID, StravaID) pair never changes after creation.
type Activity struct {
	ID                 int64     `json:"id" db:"id"`
	StravaID           int64     `json:"strava_id" db:"strava_id"`
	AthleteID          int64     `json:"athlete_id" db:"athlete_id"`
	Name               string    `json:"name" db:"name"`
	SportType          string    `json:"sport_type" db:"sport_type"`
	Distance           float64   `json:"distance" db:"distance"`
	MovingTime         int       `json:"moving_time" db:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time" db:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain" db:"total_elevation_gain"`
	StartDate          time.Time `json:"start_date" db:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local" db:"start_date_local"`
	Timezone           *string   `json:"timezone" db:"timezone"`
	AverageSpeed       *float64  `json:"average_speed" db:"average_speed"`
	MaxSpeed           *float64  `json:"max_speed" db:"max_speed"`
	AverageHeartrate   *float64  `json:"average_heartrate" db:"average_heartrate"`
	MaxHeartrate       *int      `json:"max_heartrate" db:"max_heartrate"`
	AverageCadence     *float64  `json:"average_cadence" db:"average_cadence"`
	Calories           *float64  `json:"calories" db:"calories"`
	KudosCount         *int      `json:"kudos_count" db:"kudos_count"`
	SummaryPolyline    *string   `json:"summary_polyline" db:"summary_polyline"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// AveragePaceMinPerKm derives the average pace in minutes per kilometer
// from aggregate distance and moving time. Returns 0 when either is zero.
func (a *Activity) AveragePaceMinPerKm() float64 {
	if a.Distance <= 0 || a.MovingTime <= 0 {
		return 0
	}
	return (float64(a.MovingTime) / 60.0) / (a.Distance / 1000.0)
}
