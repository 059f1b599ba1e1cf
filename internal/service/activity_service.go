package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talaria-app/talaria/internal/analytics"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/repository"
	"go.uber.org/zap"
)

// ActivityService serves stored activities and their derived analytics
type ActivityService struct {
	activityRepo repository.ActivityRepository
	settings     *SettingsService
	logger       *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repository.ActivityRepository, settings *SettingsService, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		settings:     settings,
		logger:       logger,
	}
}

// List returns a filtered, ordered page of the athlete's activities
func (s *ActivityService) List(ctx context.Context, athleteID int64, query dto.ActivityListQuery) (*dto.ActivityListResponse, error) {
	limit := query.Limit
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	activities, total, err := s.activityRepo.List(ctx, athleteID, repository.ActivityFilter{
		SportType: query.SportType,
		SortBy:    query.SortBy,
		Order:     query.Order,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list activities: %v", ErrPersistence, err)
	}

	items := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, dto.NewActivityResponse(a))
	}

	return &dto.ActivityListResponse{
		Activities: items,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    offset+len(items) < total,
	}, nil
}

// Detail returns one activity enriched with its decoded route, uniform-pace
// splits, and zone classification under the athlete's current settings.
func (s *ActivityService) Detail(ctx context.Context, athleteID, activityID int64) (*dto.ActivityDetailResponse, error) {
	activity, err := s.activityRepo.GetByID(ctx, athleteID, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load activity: %v", ErrPersistence, err)
	}

	settings, err := s.settings.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	detail := &dto.ActivityDetailResponse{
		ActivityResponse: dto.NewActivityResponse(activity),
	}

	if activity.SummaryPolyline != nil && *activity.SummaryPolyline != "" {
		route, err := analytics.DecodePolyline(*activity.SummaryPolyline)
		if err != nil {
			// A truncated polyline still yields the points decoded so far.
			s.logger.Warn("polyline decode incomplete",
				zap.Int64("activity_id", activity.ID),
				zap.Error(err),
			)
		}
		detail.Route = route
	}

	detail.Splits = analytics.ComputeSplits(activity.Distance, activity.MovingTime, analytics.DefaultSplitDistance)

	if activity.AverageHeartrate != nil {
		zone := analytics.HRZoneFor(int(*activity.AverageHeartrate), settings)
		detail.HRZone = &zone
	}

	if pace := activity.AveragePaceMinPerKm(); pace > 0 {
		zone := analytics.PaceZoneFor(pace, settings)
		formatted := analytics.FormatPace(pace)
		detail.PaceMinKm = &pace
		detail.PaceZone = &zone
		detail.PaceString = &formatted
	}

	return detail, nil
}

// Calendar returns the athlete's activities between from and to (local
// dates, inclusive) grouped into week buckets. Weeks start on the athlete's
// configured calendar start day and are ordered oldest first, with every day
// present even when empty.
func (s *ActivityService) Calendar(ctx context.Context, athleteID int64, from, to time.Time) (*dto.CalendarResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: calendar range end before start", ErrValidation)
	}

	settings, err := s.settings.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	from = truncateDay(from)
	to = truncateDay(to)

	activities, err := s.activityRepo.ListRange(ctx, athleteID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load activities: %v", ErrPersistence, err)
	}

	byDate := make(map[string][]dto.ActivityResponse)
	for _, a := range activities {
		key := a.StartDateLocal.Format("2006-01-02")
		byDate[key] = append(byDate[key], dto.NewActivityResponse(a))
	}

	weekStart := startOfWeek(from, settings.CalendarStartDay)
	var weeks []dto.CalendarWeek
	for !weekStart.After(to) {
		week := dto.CalendarWeek{
			WeekStart: weekStart.Format("2006-01-02"),
			Days:      make([]dto.CalendarDay, 0, 7),
		}
		for i := 0; i < 7; i++ {
			day := weekStart.AddDate(0, 0, i)
			key := day.Format("2006-01-02")
			dayActivities := byDate[key]
			if dayActivities == nil {
				dayActivities = []dto.ActivityResponse{}
			}
			week.Days = append(week.Days, dto.CalendarDay{
				Date:       key,
				Activities: dayActivities,
			})
		}
		weeks = append(weeks, week)
		weekStart = weekStart.AddDate(0, 0, 7)
	}

	return &dto.CalendarResponse{
		From:  from.Format("2006-01-02"),
		To:    to.Format("2006-01-02"),
		Weeks: weeks,
	}, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek walks back from t to the configured first day of the week.
func startOfWeek(t time.Time, startDay string) time.Time {
	first := time.Monday
	if startDay == "sunday" {
		first = time.Sunday
	}

	offset := (int(t.Weekday()) - int(first) + 7) % 7
	return t.AddDate(0, 0, -offset)
}
