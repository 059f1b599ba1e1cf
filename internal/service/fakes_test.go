package service

import (
	"context"
	"sort"
	"time"

	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/strava"
)

type fakeAthleteRepo struct {
	athletes         map[int64]*domain.Athlete
	updateTokenCalls int
}

func newFakeAthleteRepo(athletes ...*domain.Athlete) *fakeAthleteRepo {
	r := &fakeAthleteRepo{athletes: make(map[int64]*domain.Athlete)}
	for _, a := range athletes {
		copied := *a
		r.athletes[a.ID] = &copied
	}
	return r
}

func (r *fakeAthleteRepo) GetByID(_ context.Context, id int64) (*domain.Athlete, error) {
	a, ok := r.athletes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAthleteRepo) GetByStravaID(_ context.Context, stravaID int64) (*domain.Athlete, error) {
	for _, a := range r.athletes {
		if a.StravaID == stravaID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAthleteRepo) Upsert(_ context.Context, athlete *domain.Athlete) error {
	if athlete.ID == 0 {
		for _, existing := range r.athletes {
			if existing.StravaID == athlete.StravaID {
				athlete.ID = existing.ID
				break
			}
		}
	}
	if athlete.ID == 0 {
		athlete.ID = int64(len(r.athletes) + 1)
	}
	copied := *athlete
	r.athletes[athlete.ID] = &copied
	return nil
}

func (r *fakeAthleteRepo) UpdateTokens(_ context.Context, id int64, accessToken, refreshToken string, expiresAt int64) error {
	a, ok := r.athletes[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.updateTokenCalls++
	a.AccessToken = accessToken
	a.RefreshToken = refreshToken
	a.ExpiresAt = expiresAt
	return nil
}

type fakeActivityRepo struct {
	activities []*domain.Activity
	nextID     int64
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{nextID: 1}
}

func (r *fakeActivityRepo) GetByID(_ context.Context, athleteID, id int64) (*domain.Activity, error) {
	for _, a := range r.activities {
		if a.ID == id && a.AthleteID == athleteID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeActivityRepo) GetByStravaID(_ context.Context, stravaID int64) (*domain.Activity, error) {
	for _, a := range r.activities {
		if a.StravaID == stravaID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeActivityRepo) GetLatestByStartDate(_ context.Context, athleteID int64) (*domain.Activity, error) {
	var latest *domain.Activity
	for _, a := range r.activities {
		if a.AthleteID != athleteID {
			continue
		}
		if latest == nil || a.StartDate.After(latest.StartDate) {
			latest = a
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeActivityRepo) List(_ context.Context, athleteID int64, filter repository.ActivityFilter) ([]*domain.Activity, int, error) {
	var matched []*domain.Activity
	for _, a := range r.activities {
		if a.AthleteID != athleteID {
			continue
		}
		if filter.SportType != "" && a.SportType != filter.SportType {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		if filter.Order == "asc" {
			return matched[i].StartDate.Before(matched[j].StartDate)
		}
		return matched[i].StartDate.After(matched[j].StartDate)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *fakeActivityRepo) ListRange(_ context.Context, athleteID int64, from, to time.Time) ([]*domain.Activity, error) {
	var matched []*domain.Activity
	for _, a := range r.activities {
		if a.AthleteID != athleteID {
			continue
		}
		if a.StartDateLocal.Before(from) || !a.StartDateLocal.Before(to) {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartDateLocal.Before(matched[j].StartDateLocal)
	})
	return matched, nil
}

func (r *fakeActivityRepo) UpsertBatch(_ context.Context, activities []*domain.Activity) error {
	for _, incoming := range activities {
		replaced := false
		for _, existing := range r.activities {
			if existing.StravaID == incoming.StravaID {
				id, created := existing.ID, existing.CreatedAt
				*existing = *incoming
				existing.ID = id
				existing.CreatedAt = created
				replaced = true
				break
			}
		}
		if !replaced {
			copied := *incoming
			copied.ID = r.nextID
			r.nextID++
			r.activities = append(r.activities, &copied)
		}
	}
	return nil
}

type fakeSettingsRepo struct {
	settings map[int64]*domain.UserSettings
	nextID   int64
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*domain.UserSettings), nextID: 1}
}

func (r *fakeSettingsRepo) GetByAthleteID(_ context.Context, athleteID int64) (*domain.UserSettings, error) {
	s, ok := r.settings[athleteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSettingsRepo) Create(_ context.Context, settings *domain.UserSettings) error {
	settings.ID = r.nextID
	r.nextID++
	copied := *settings
	r.settings[settings.AthleteID] = &copied
	return nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, settings *domain.UserSettings) error {
	if _, ok := r.settings[settings.AthleteID]; !ok {
		return repository.ErrNotFound
	}
	copied := *settings
	r.settings[settings.AthleteID] = &copied
	return nil
}

type fakeStrava struct {
	exchangeFunc func(ctx context.Context, code string) (*strava.TokenResponse, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (*strava.TokenResponse, error)
	listFunc     func(ctx context.Context, accessToken string, opts strava.ListOptions) ([]strava.Activity, error)
	detailFunc   func(ctx context.Context, accessToken string, activityID int64) (*strava.Activity, error)
	streamsFunc  func(ctx context.Context, accessToken string, activityID int64, keys []string) (strava.StreamSet, error)

	refreshCalls int
	listCalls    int
	listOpts     []strava.ListOptions
}

func (f *fakeStrava) AuthorizationURL(redirectURI string) string {
	return "https://example.test/oauth/authorize?redirect_uri=" + redirectURI
}

func (f *fakeStrava) ExchangeCode(ctx context.Context, code string) (*strava.TokenResponse, error) {
	return f.exchangeFunc(ctx, code)
}

func (f *fakeStrava) RefreshAccessToken(ctx context.Context, refreshToken string) (*strava.TokenResponse, error) {
	f.refreshCalls++
	return f.refreshFunc(ctx, refreshToken)
}

func (f *fakeStrava) ListActivities(ctx context.Context, accessToken string, opts strava.ListOptions) ([]strava.Activity, error) {
	f.listCalls++
	f.listOpts = append(f.listOpts, opts)
	return f.listFunc(ctx, accessToken, opts)
}

func (f *fakeStrava) GetActivityDetail(ctx context.Context, accessToken string, activityID int64) (*strava.Activity, error) {
	return f.detailFunc(ctx, accessToken, activityID)
}

func (f *fakeStrava) GetActivityStreams(ctx context.Context, accessToken string, activityID int64, keys []string) (strava.StreamSet, error) {
	return f.streamsFunc(ctx, accessToken, activityID, keys)
}

func testRetryPolicy() strava.RetryPolicy {
	return strava.RetryPolicy{
		MaxAttempts:       2,
		InitialDelay:      time.Millisecond,
		Factor:            2.0,
		RateLimitCooldown: time.Millisecond,
	}
}
