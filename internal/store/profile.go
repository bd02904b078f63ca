package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devwell-dashboard/internal/apperr"
	"devwell-dashboard/internal/model"
)

// ProfileStore manages the profiles table (one row per identity).
type ProfileStore struct {
	db     DB
	logger *slog.Logger
	cache  *cache[*model.Profile]
}

func NewProfileStore(db DB, logger *slog.Logger, cacheTTL time.Duration) *ProfileStore {
	return &ProfileStore{
		db:     db,
		logger: logger.With("store", "profile"),
		cache:  newCache[*model.Profile](cacheTTL),
	}
}

const profileColumns = `user_id, github_username, display_name, avatar_url,
	sleep_goal_hours, commit_goal_daily, created_at, updated_at`

// Get returns the user's profile, or nil when it does not exist or the
// backing store is unreachable.
func (s *ProfileStore) Get(ctx context.Context, userID string) *model.Profile {
	if cached, ok := s.cache.get(userID); ok {
		return cached
	}

	var p model.Profile
	err := s.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.GithubUsername, &p.DisplayName, &p.AvatarURL,
		&p.SleepGoalHours, &p.CommitGoalDaily, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if !isNoRows(err) {
			s.logger.Error("Failed to query profile", "error", err)
		}
		return nil
	}

	s.cache.put(userID, &p)
	return &p
}

// Upsert creates the profile on first sign-in or refreshes its GitHub
// identity fields, leaving user-set goals untouched on update.
func (s *ProfileStore) Upsert(ctx context.Context, p *model.Profile) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO profiles (user_id, github_username, display_name, avatar_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   github_username = EXCLUDED.github_username,
		   display_name = COALESCE(EXCLUDED.display_name, profiles.display_name),
		   avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
		   updated_at = now()`,
		p.UserID, p.GithubUsername, p.DisplayName, p.AvatarURL)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	s.cache.clear()
	return nil
}

// Update rewrites the user-editable profile fields.
func (s *ProfileStore) Update(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	updated := *p
	err := s.db.QueryRow(ctx,
		`UPDATE profiles
		 SET display_name = $2, sleep_goal_hours = $3, commit_goal_daily = $4, updated_at = now()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		p.UserID, p.DisplayName, p.SleepGoalHours, p.CommitGoalDaily,
	).Scan(&updated.UserID, &updated.GithubUsername, &updated.DisplayName, &updated.AvatarURL,
		&updated.SleepGoalHours, &updated.CommitGoalDaily, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.cache.clear()
	return &updated, nil
}
