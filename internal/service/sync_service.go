package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/strava"
	"go.uber.org/zap"
)

// SyncResult summarizes one completed sync run. Total counts the batch
// handled by this run (created plus updated), not the stored history.
type SyncResult struct {
	Created  int
	Updated  int
	Total    int
	LastSync time.Time
}

// SyncService pulls an athlete's activities from Strava into local storage.
// Runs are incremental: only activities after the newest stored start date
// are fetched, and re-fetched activities overwrite the stored row under the
// same strava_id.
type SyncService struct {
	athleteRepo     repository.AthleteRepository
	activityRepo    repository.ActivityRepository
	tokens          *TokenService
	client          StravaAPI
	retry           strava.RetryPolicy
	pageSize        int
	bootstrapWindow time.Duration
	metrics         *SyncMetrics
	logger          *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(
	athleteRepo repository.AthleteRepository,
	activityRepo repository.ActivityRepository,
	tokens *TokenService,
	client StravaAPI,
	retry strava.RetryPolicy,
	pageSize int,
	bootstrapWindow time.Duration,
	metrics *SyncMetrics,
	logger *zap.Logger,
) *SyncService {
	if pageSize < 1 || pageSize > strava.MaxPerPage {
		pageSize = 100
	}
	return &SyncService{
		athleteRepo:     athleteRepo,
		activityRepo:    activityRepo,
		tokens:          tokens,
		client:          client,
		retry:           retry,
		pageSize:        pageSize,
		bootstrapWindow: bootstrapWindow,
		metrics:         metrics,
		logger:          logger,
	}
}

// Sync runs one incremental sync for the athlete. A mid-run 401 triggers a
// single token refresh and a retry of the failed page; a second 401 means the
// grant is gone and the caller must re-authorize.
func (s *SyncService) Sync(ctx context.Context, athleteID int64) (*SyncResult, error) {
	runID := uuid.New().String()
	log := s.logger.With(zap.String("run_id", runID), zap.Int64("athlete_id", athleteID))

	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load athlete: %w", err)
	}

	access, err := s.tokens.EnsureValidToken(ctx, athlete)
	if err != nil {
		return nil, err
	}

	after := s.horizon(ctx, athleteID)
	log.Info("sync started", zap.Int64("after", after))

	payloads, err := s.fetchAll(ctx, athlete, access, after)
	if err != nil {
		return nil, err
	}

	activities := make([]*domain.Activity, 0, len(payloads))
	for i := range payloads {
		activity, err := strava.TransformActivity(&payloads[i], athleteID)
		if err != nil {
			// One bad payload must not sink the run.
			log.Warn("skipping malformed activity",
				zap.Int64("strava_id", payloads[i].ID),
				zap.Error(err),
			)
			continue
		}
		activities = append(activities, activity)
	}

	created, updated := 0, 0
	for _, activity := range activities {
		_, err := s.activityRepo.GetByStravaID(ctx, activity.StravaID)
		switch {
		case err == nil:
			updated++
		case errors.Is(err, repository.ErrNotFound):
			created++
		default:
			return nil, fmt.Errorf("%w: failed to check activity: %v", ErrPersistence, err)
		}
	}

	if err := s.activityRepo.UpsertBatch(ctx, activities); err != nil {
		return nil, fmt.Errorf("%w: failed to store activities: %v", ErrPersistence, err)
	}

	if s.metrics != nil {
		s.metrics.Runs.Add(ctx, 1)
		s.metrics.ActivitiesCreated.Add(ctx, int64(created))
		s.metrics.ActivitiesUpdated.Add(ctx, int64(updated))
	}
	log.Info("sync finished",
		zap.Int("created", created),
		zap.Int("updated", updated),
	)

	return &SyncResult{
		Created:  created,
		Updated:  updated,
		Total:    created + updated,
		LastSync: time.Now().UTC(),
	}, nil
}

// horizon returns the unix second to fetch from: the newest stored start
// date, or the bootstrap window back from now on first sync.
func (s *SyncService) horizon(ctx context.Context, athleteID int64) int64 {
	latest, err := s.activityRepo.GetLatestByStartDate(ctx, athleteID)
	if err != nil {
		return time.Now().Add(-s.bootstrapWindow).Unix()
	}
	return latest.StartDate.Unix()
}

// fetchAll fetches one incremental batch of at most pageSize activities.
// Strava returns oldest-first for after-filtered lists, so anything beyond
// the cap is picked up by the next run once the horizon moves past this
// batch.
func (s *SyncService) fetchAll(ctx context.Context, athlete *domain.Athlete, access string, after int64) ([]strava.Activity, error) {
	var all []strava.Activity
	refreshed := false

	for page := 1; ; page++ {
		var items []strava.Activity
		err := s.retry.Do(ctx, func() error {
			var opErr error
			items, opErr = s.client.ListActivities(ctx, access, strava.ListOptions{
				After:   after,
				Page:    page,
				PerPage: s.pageSize,
			})
			return opErr
		})
		if errors.Is(err, strava.ErrAuthExpired) && !refreshed {
			refreshed = true
			newAccess, refreshErr := s.tokens.Refresh(ctx, athlete)
			if refreshErr != nil {
				return nil, refreshErr
			}
			access = newAccess
			page--
			continue
		}
		if err != nil {
			if errors.Is(err, strava.ErrAuthExpired) || errors.Is(err, strava.ErrForbidden) {
				return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
			}
			return nil, fmt.Errorf("failed to list activities: %w", err)
		}

		all = append(all, items...)
		if len(items) < s.pageSize || len(all) >= s.pageSize {
			return all, nil
		}
	}
}
