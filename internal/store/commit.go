package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"devwell-dashboard/internal/model"
)

// CommitStore manages the commit_records table. Rows are written only by
// the syncer; the unique (user_id, commit_hash) constraint is the dedup
// mechanism, so a conflicting insert is a harmless no-op rather than an
// error.
type CommitStore struct {
	db     DB
	logger *slog.Logger
	cache  *cache[[]model.CommitRecord]
}

func NewCommitStore(db DB, logger *slog.Logger, cacheTTL time.Duration) *CommitStore {
	return &CommitStore{
		db:     db,
		logger: logger.With("store", "commit"),
		cache:  newCache[[]model.CommitRecord](cacheTTL),
	}
}

// GetRecords returns the user's commits with timestamps in [start, end),
// newest first. Failures are logged and surface as an empty result.
func (s *CommitStore) GetRecords(ctx context.Context, userID string, start, end time.Time) []model.CommitRecord {
	key := rangeKey(userID, start, end)
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, repo_name, commit_hash, message, committed_at, created_at
		 FROM commit_records
		 WHERE user_id = $1 AND committed_at >= $2 AND committed_at < $3
		 ORDER BY committed_at DESC`,
		userID, start, end)
	if err != nil {
		s.logger.Error("Failed to query commit records", "error", err)
		return nil
	}
	defer rows.Close()

	var records []model.CommitRecord
	for rows.Next() {
		var r model.CommitRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.RepoName, &r.CommitHash,
			&r.Message, &r.CommittedAt, &r.CreatedAt); err != nil {
			s.logger.Error("Failed to scan commit record", "error", err)
			return nil
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Failed to read commit records", "error", err)
		return nil
	}

	s.cache.put(key, records)
	return records
}

// Insert writes one commit record, ignoring conflicts on the
// (user, commit hash) key. The syncer performs no existence check.
func (s *CommitStore) Insert(ctx context.Context, rec model.CommitRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO commit_records (id, user_id, repo_name, commit_hash, message, committed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, commit_hash) DO NOTHING`,
		rec.ID, rec.UserID, rec.RepoName, rec.CommitHash, rec.Message, rec.CommittedAt)
	if err != nil {
		return fmt.Errorf("insert commit record: %w", err)
	}

	s.cache.clear()
	return nil
}

// GetCommitStats derives the commit count and distinct active hours for one
// calendar day in the day's own location.
func (s *CommitStore) GetCommitStats(ctx context.Context, userID string, day time.Time) model.CommitStats {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	return statsForDay(s.GetRecords(ctx, userID, dayStart, dayEnd), dayStart)
}

// statsForDay counts commits falling on the given calendar day and the
// distinct clock hours they occupy.
func statsForDay(records []model.CommitRecord, day time.Time) model.CommitStats {
	hours := make(map[int]struct{})
	var count int
	for _, r := range records {
		t := r.CommittedAt.In(day.Location())
		if t.Year() != day.Year() || t.Month() != day.Month() || t.Day() != day.Day() {
			continue
		}
		count++
		hours[t.Hour()] = struct{}{}
	}
	return model.CommitStats{Count: count, Hours: len(hours)}
}
