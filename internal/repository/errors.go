package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAthlete is returned when an athlete with the same Strava
	// identity already exists
	ErrDuplicateAthlete = errors.New("athlete with this strava id already exists")

	// ErrDuplicateActivity is returned when an activity with the same
	// Strava identity already exists
	ErrDuplicateActivity = errors.New("activity with this strava id already exists")
)
