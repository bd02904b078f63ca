package model

import "time"

// Profile holds the dashboard user's identity and goals. There is exactly
// one row per authenticated identity, created on first sign-in.
type Profile struct {
	UserID          string    `json:"user_id"`
	GithubUsername  *string   `json:"github_username,omitempty"`
	DisplayName     *string   `json:"display_name,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	SleepGoalHours  float64   `json:"sleep_goal_hours"`
	CommitGoalDaily int       `json:"commit_goal_daily"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SleepRecord is one night of sleep, unique per (user, date). Duration is
// derived from the start/end timestamps at write time.
type SleepRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Date          time.Time `json:"date"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
	Quality       int       `json:"quality"` // 0-100
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CommitRecord is one synced commit, unique per (user, commit hash).
// Written only by the syncer and never updated.
type CommitRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	RepoName    string    `json:"repo_name"`
	CommitHash  string    `json:"commit_hash"`
	Message     *string   `json:"message,omitempty"`
	CommittedAt time.Time `json:"committed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityInsight is one day of derived scores produced by an external
// analysis process, unique per (user, date). The dashboard only reads these.
type ActivityInsight struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Date              time.Time `json:"date"`
	ProductivityScore *float64  `json:"productivity_score,omitempty"` // 0-100
	SleepScore        *float64  `json:"sleep_score,omitempty"`        // 0-100
	CommitCount       int       `json:"commit_count"`
	ActiveHours       int       `json:"active_hours"`
	Recommendations   []string  `json:"recommendations"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PushCommit is one commit entry embedded in a push event.
type PushCommit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

// PushEvent is a hosting-provider activity record for one push.
type PushEvent struct {
	RepoName  string       `json:"repo_name"`
	CreatedAt time.Time    `json:"created_at"`
	Commits   []PushCommit `json:"commits"`
}

// CommitStats summarizes one calendar day of commit activity. Hours counts
// distinct clock hours containing at least one commit, not elapsed time.
type CommitStats struct {
	Count int `json:"count"`
	Hours int `json:"hours"`
}
