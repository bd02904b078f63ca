package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"devwell-dashboard/internal/apperr"
	"devwell-dashboard/internal/model"
)

// SleepStore manages the sleep_records table.
type SleepStore struct {
	db     DB
	logger *slog.Logger
	cache  *cache[[]model.SleepRecord]
}

func NewSleepStore(db DB, logger *slog.Logger, cacheTTL time.Duration) *SleepStore {
	return &SleepStore{
		db:     db,
		logger: logger.With("store", "sleep"),
		cache:  newCache[[]model.SleepRecord](cacheTTL),
	}
}

const sleepColumns = `id, user_id, date, start_time, end_time, duration_hours, quality, notes, created_at, updated_at`

// GetRecords returns the user's sleep records with dates in [start, end),
// newest first. Failures are logged and surface as an empty result.
func (s *SleepStore) GetRecords(ctx context.Context, userID string, start, end time.Time) []model.SleepRecord {
	key := rangeKey(userID, start, end)
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+sleepColumns+` FROM sleep_records
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC`,
		userID, start, end)
	if err != nil {
		s.logger.Error("Failed to query sleep records", "error", err)
		return nil
	}
	defer rows.Close()

	var records []model.SleepRecord
	for rows.Next() {
		var r model.SleepRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.StartTime, &r.EndTime,
			&r.DurationHours, &r.Quality, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			s.logger.Error("Failed to scan sleep record", "error", err)
			return nil
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Failed to read sleep records", "error", err)
		return nil
	}

	s.cache.put(key, records)
	return records
}

// Create inserts a new sleep record, deriving the duration from the
// start/end timestamps. Returns apperr.ErrDuplicate when the user already
// has a record for that date.
func (s *SleepStore) Create(ctx context.Context, rec model.SleepRecord) (*model.SleepRecord, error) {
	rec.ID = uuid.NewString()
	rec.DurationHours = rec.EndTime.Sub(rec.StartTime).Hours()

	err := s.db.QueryRow(ctx,
		`INSERT INTO sleep_records (id, user_id, date, start_time, end_time, duration_hours, quality, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		rec.ID, rec.UserID, rec.Date, rec.StartTime, rec.EndTime, rec.DurationHours, rec.Quality, rec.Notes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("sleep record for %s: %w", rec.Date.Format("2006-01-02"), apperr.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert sleep record: %w", err)
	}

	s.cache.clear()
	return &rec, nil
}

// Update rewrites a sleep record owned by the user. Returns
// apperr.ErrNotFound when no such record is visible to them.
func (s *SleepStore) Update(ctx context.Context, rec model.SleepRecord) (*model.SleepRecord, error) {
	rec.DurationHours = rec.EndTime.Sub(rec.StartTime).Hours()

	err := s.db.QueryRow(ctx,
		`UPDATE sleep_records
		 SET start_time = $3, end_time = $4, duration_hours = $5, quality = $6, notes = $7, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING date, created_at, updated_at`,
		rec.ID, rec.UserID, rec.StartTime, rec.EndTime, rec.DurationHours, rec.Quality, rec.Notes,
	).Scan(&rec.Date, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("update sleep record: %w", err)
	}

	s.cache.clear()
	return &rec, nil
}

// Delete removes a sleep record owned by the user.
func (s *SleepStore) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM sleep_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete sleep record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	s.cache.clear()
	return nil
}
