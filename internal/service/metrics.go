package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics holds the counters exported from sync runs. Counters register
// against the global meter provider set up by observability.InitTelemetry.
type SyncMetrics struct {
	Runs              metric.Int64Counter
	ActivitiesCreated metric.Int64Counter
	ActivitiesUpdated metric.Int64Counter
	TokenRefreshes    metric.Int64Counter
}

// NewSyncMetrics creates the sync counters
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter("talaria/sync")

	runs, err := meter.Int64Counter("sync_runs_total",
		metric.WithDescription("Completed sync runs"))
	if err != nil {
		return nil, err
	}

	created, err := meter.Int64Counter("sync_activities_created_total",
		metric.WithDescription("Activities inserted by sync runs"))
	if err != nil {
		return nil, err
	}

	updated, err := meter.Int64Counter("sync_activities_updated_total",
		metric.WithDescription("Activities updated by sync runs"))
	if err != nil {
		return nil, err
	}

	refreshes, err := meter.Int64Counter("strava_token_refreshes_total",
		metric.WithDescription("Strava access token refreshes"))
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		Runs:              runs,
		ActivitiesCreated: created,
		ActivitiesUpdated: updated,
		TokenRefreshes:    refreshes,
	}, nil
}
