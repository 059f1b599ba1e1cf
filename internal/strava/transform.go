package strava

import (
	"fmt"
	"time"

	"github.com/talaria-app/talaria/internal/domain"
)

// TransformActivity maps a remote activity payload into the internal record
// for the owning athlete. Required fields are mapped totally; missing
// optional numerics stay unset. The sport_type field falls back to the
// legacy type field when absent.
//
// start_date is UTC; start_date_local carries a Z suffix on the wire but
// represents wall-clock time in the activity's timezone, so it is parsed and
// kept as naive local time.
func TransformActivity(payload *Activity, athleteID int64) (*domain.Activity, error) {
	if payload == nil || payload.ID == 0 {
		return nil, fmt.Errorf("activity payload missing id")
	}

	startDate, err := time.Parse(time.RFC3339, payload.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", payload.StartDate, err)
	}
	startDateLocal, err := time.Parse(time.RFC3339, payload.StartDateLocal)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date_local %q: %w", payload.StartDateLocal, err)
	}

	sportType := payload.SportType
	if sportType == "" {
		sportType = payload.Type
	}

	activity := &domain.Activity{
		StravaID:           payload.ID,
		AthleteID:          athleteID,
		Name:               payload.Name,
		SportType:          sportType,
		Distance:           payload.Distance,
		MovingTime:         payload.MovingTime,
		ElapsedTime:        payload.ElapsedTime,
		TotalElevationGain: payload.TotalElevationGain,
		StartDate:          startDate.UTC(),
		StartDateLocal:     stripLocation(startDateLocal),
		AverageSpeed:       payload.AverageSpeed,
		MaxSpeed:           payload.MaxSpeed,
		AverageHeartrate:   payload.AverageHeartrate,
		AverageCadence:     payload.AverageCadence,
		Calories:           payload.Calories,
		KudosCount:         payload.KudosCount,
	}

	if payload.Timezone != "" {
		tz := payload.Timezone
		activity.Timezone = &tz
	}
	if payload.MaxHeartrate != nil {
		maxHR := int(*payload.MaxHeartrate)
		activity.MaxHeartrate = &maxHR
	}
	if payload.Map != nil && payload.Map.SummaryPolyline != "" {
		polyline := payload.Map.SummaryPolyline
		activity.SummaryPolyline = &polyline
	}

	return activity, nil
}

// stripLocation drops the zone marker so the local timestamp stays naive.
func stripLocation(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
