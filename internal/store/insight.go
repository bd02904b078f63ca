package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"devwell-dashboard/internal/model"
)

// InsightStore manages the activity_insights table. Insights are produced
// by an external analysis process; the dashboard reads them. The Upsert
// write path exists for that collaborator and has no caller inside this
// service.
type InsightStore struct {
	db     DB
	logger *slog.Logger
	cache  *cache[[]model.ActivityInsight]
}

func NewInsightStore(db DB, logger *slog.Logger, cacheTTL time.Duration) *InsightStore {
	return &InsightStore{
		db:     db,
		logger: logger.With("store", "insight"),
		cache:  newCache[[]model.ActivityInsight](cacheTTL),
	}
}

// GetRecords returns the user's insights with dates in [start, end), newest
// first. Failures are logged and surface as an empty result.
func (s *InsightStore) GetRecords(ctx context.Context, userID string, start, end time.Time) []model.ActivityInsight {
	key := rangeKey(userID, start, end)
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, date, productivity_score, sleep_score, commit_count,
		        active_hours, recommendations, created_at, updated_at
		 FROM activity_insights
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC`,
		userID, start, end)
	if err != nil {
		s.logger.Error("Failed to query activity insights", "error", err)
		return nil
	}
	defer rows.Close()

	var insights []model.ActivityInsight
	for rows.Next() {
		var in model.ActivityInsight
		if err := rows.Scan(&in.ID, &in.UserID, &in.Date, &in.ProductivityScore, &in.SleepScore,
			&in.CommitCount, &in.ActiveHours, &in.Recommendations, &in.CreatedAt, &in.UpdatedAt); err != nil {
			s.logger.Error("Failed to scan activity insight", "error", err)
			return nil
		}
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Failed to read activity insights", "error", err)
		return nil
	}

	s.cache.put(key, insights)
	return insights
}

// Upsert inserts or replaces the user's insight for one date.
func (s *InsightStore) Upsert(ctx context.Context, in model.ActivityInsight) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Recommendations == nil {
		in.Recommendations = []string{}
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO activity_insights (id, user_id, date, productivity_score, sleep_score,
		                                commit_count, active_hours, recommendations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		   productivity_score = EXCLUDED.productivity_score,
		   sleep_score = EXCLUDED.sleep_score,
		   commit_count = EXCLUDED.commit_count,
		   active_hours = EXCLUDED.active_hours,
		   recommendations = EXCLUDED.recommendations,
		   updated_at = now()`,
		in.ID, in.UserID, in.Date, in.ProductivityScore, in.SleepScore,
		in.CommitCount, in.ActiveHours, in.Recommendations)
	if err != nil {
		return fmt.Errorf("upsert activity insight: %w", err)
	}

	s.cache.clear()
	return nil
}
