package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/talaria-app/talaria/internal/domain"
	"github.com/talaria-app/talaria/pkg/database"
)

// activityRepository implements ActivityRepository interface
type activityRepository struct {
	db *database.Postgres
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.Postgres) ActivityRepository {
	return &activityRepository{db: db}
}

// sortColumns is the allow-list for List ordering. Anything else falls back
// to start_date.
var sortColumns = map[string]string{
	"start_date":    "start_date",
	"distance":      "distance",
	"moving_time":   "moving_time",
	"average_speed": "average_speed",
}

const activityColumns = `id, strava_id, athlete_id, name, sport_type, distance, moving_time,
		elapsed_time, total_elevation_gain, start_date, start_date_local, timezone,
		average_speed, max_speed, average_heartrate, max_heartrate, average_cadence,
		calories, kudos_count, summary_polyline, created_at, updated_at`

func scanActivity(row interface{ Scan(dest ...any) error }) (*domain.Activity, error) {
	activity := &domain.Activity{}
	var timezone, summaryPolyline sql.NullString
	var avgSpeed, maxSpeed, avgHeartrate, avgCadence, calories sql.NullFloat64
	var maxHeartrate, kudosCount sql.NullInt64

	err := row.Scan(
		&activity.ID,
		&activity.StravaID,
		&activity.AthleteID,
		&activity.Name,
		&activity.SportType,
		&activity.Distance,
		&activity.MovingTime,
		&activity.ElapsedTime,
		&activity.TotalElevationGain,
		&activity.StartDate,
		&activity.StartDateLocal,
		&timezone,
		&avgSpeed,
		&maxSpeed,
		&avgHeartrate,
		&maxHeartrate,
		&avgCadence,
		&calories,
		&kudosCount,
		&summaryPolyline,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if timezone.Valid {
		activity.Timezone = &timezone.String
	}
	if summaryPolyline.Valid {
		activity.SummaryPolyline = &summaryPolyline.String
	}
	if avgSpeed.Valid {
		activity.AverageSpeed = &avgSpeed.Float64
	}
	if maxSpeed.Valid {
		activity.MaxSpeed = &maxSpeed.Float64
	}
	if avgHeartrate.Valid {
		activity.AverageHeartrate = &avgHeartrate.Float64
	}
	if maxHeartrate.Valid {
		v := int(maxHeartrate.Int64)
		activity.MaxHeartrate = &v
	}
	if avgCadence.Valid {
		activity.AverageCadence = &avgCadence.Float64
	}
	if calories.Valid {
		activity.Calories = &calories.Float64
	}
	if kudosCount.Valid {
		v := int(kudosCount.Int64)
		activity.KudosCount = &v
	}

	return activity, nil
}

// GetByID retrieves an activity by internal id scoped to its owning athlete
func (r *activityRepository) GetByID(ctx context.Context, athleteID, id int64) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1 AND athlete_id = $2`

	activity, err := scanActivity(r.db.DB.QueryRowContext(ctx, query, id, athleteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get activity by id: %w", err)
	}

	return activity, nil
}

// GetByStravaID retrieves an activity by remote Strava id
func (r *activityRepository) GetByStravaID(ctx context.Context, stravaID int64) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE strava_id = $1`

	activity, err := scanActivity(r.db.DB.QueryRowContext(ctx, query, stravaID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity with strava id %d not found: %w", stravaID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get activity by strava id: %w", err)
	}

	return activity, nil
}

// GetLatestByStartDate retrieves the athlete's most recent activity, used
// as the incremental sync horizon
func (r *activityRepository) GetLatestByStartDate(ctx context.Context, athleteID int64) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE athlete_id = $1
		ORDER BY start_date DESC
		LIMIT 1`

	activity, err := scanActivity(r.db.DB.QueryRowContext(ctx, query, athleteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no activities for athlete %d: %w", athleteID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest activity: %w", err)
	}

	return activity, nil
}

// List retrieves a page of activities with the filter applied and returns
// the total matching count
func (r *activityRepository) List(ctx context.Context, athleteID int64, filter ActivityFilter) ([]*domain.Activity, int, error) {
	conditions := []string{"athlete_id = $1"}
	args := []any{athleteID}

	if filter.SportType != "" {
		args = append(args, filter.SportType)
		conditions = append(conditions, fmt.Sprintf("sport_type = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM activities WHERE ` + where
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	sortBy, ok := sortColumns[filter.SortBy]
	if !ok {
		sortBy = "start_date"
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM activities WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		activityColumns, where, sortBy, order, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, total, nil
}

// ListRange retrieves all activities whose local start date falls in
// [from, to), ordered ascending, for calendar views
func (r *activityRepository) ListRange(ctx context.Context, athleteID int64, from, to time.Time) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE athlete_id = $1 AND start_date_local >= $2 AND start_date_local < $3
		ORDER BY start_date_local ASC`

	rows, err := r.db.DB.QueryContext(ctx, query, athleteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity range: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}

// UpsertBatch persists all activities in one transaction: new records are
// inserted, existing ones (matched on strava_id) are overwritten except for
// id and created_at. Any failure rolls back the whole batch.
func (r *activityRepository) UpsertBatch(ctx context.Context, activities []*domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO activities (strava_id, athlete_id, name, sport_type, distance, moving_time,
			elapsed_time, total_elevation_gain, start_date, start_date_local, timezone,
			average_speed, max_speed, average_heartrate, max_heartrate, average_cadence,
			calories, kudos_count, summary_polyline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		ON CONFLICT (strava_id) DO UPDATE SET
			name = EXCLUDED.name,
			sport_type = EXCLUDED.sport_type,
			distance = EXCLUDED.distance,
			moving_time = EXCLUDED.moving_time,
			elapsed_time = EXCLUDED.elapsed_time,
			total_elevation_gain = EXCLUDED.total_elevation_gain,
			start_date = EXCLUDED.start_date,
			start_date_local = EXCLUDED.start_date_local,
			timezone = EXCLUDED.timezone,
			average_speed = EXCLUDED.average_speed,
			max_speed = EXCLUDED.max_speed,
			average_heartrate = EXCLUDED.average_heartrate,
			max_heartrate = EXCLUDED.max_heartrate,
			average_cadence = EXCLUDED.average_cadence,
			calories = EXCLUDED.calories,
			kudos_count = EXCLUDED.kudos_count,
			summary_polyline = EXCLUDED.summary_polyline,
			updated_at = EXCLUDED.updated_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, a := range activities {
		_, err := stmt.ExecContext(ctx,
			a.StravaID,
			a.AthleteID,
			a.Name,
			a.SportType,
			a.Distance,
			a.MovingTime,
			a.ElapsedTime,
			a.TotalElevationGain,
			a.StartDate,
			a.StartDateLocal,
			a.Timezone,
			a.AverageSpeed,
			a.MaxSpeed,
			a.AverageHeartrate,
			a.MaxHeartrate,
			a.AverageCadence,
			a.Calories,
			a.KudosCount,
			a.SummaryPolyline,
			now,
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return fmt.Errorf("activity with strava id %d: %w", a.StravaID, ErrDuplicateActivity)
			}
			return fmt.Errorf("failed to upsert activity %d: %w", a.StravaID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activity batch: %w", err)
	}

	return nil
}
