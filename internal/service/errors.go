package service

import "errors"

var (
	// ErrValidation indicates invalid input from the caller
	ErrValidation = errors.New("validation error")

	// ErrAuthentication indicates the athlete's Strava credential is no
	// longer usable and re-authorization is required
	ErrAuthentication = errors.New("authentication error")

	// ErrPersistence indicates a storage failure
	ErrPersistence = errors.New("persistence error")

	// ErrSyncInProgress indicates another sync run holds the athlete's lock
	ErrSyncInProgress = errors.New("sync already in progress")
)
