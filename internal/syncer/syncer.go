// Package syncer copies the user's recent GitHub push activity into the
// commit record store.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"devwell-dashboard/internal/auth"
	"devwell-dashboard/internal/model"
)

// Number of users to resync in parallel during a background pass
const concurrency = 5

// ActivitySource is the hosting-provider client for one identity.
type ActivitySource interface {
	Initialize(ctx context.Context) error
	Refresh(ctx context.Context) error
	ListRecentPushEvents(ctx context.Context, username string, since time.Time) ([]model.PushEvent, error)
	GetAuthenticatedProfile(ctx context.Context) (*model.Profile, error)
}

// CommitWriter is the slice of the commit store the syncer writes through.
type CommitWriter interface {
	Insert(ctx context.Context, rec model.CommitRecord) error
}

// ProfileDirectory resolves and provisions user profiles.
type ProfileDirectory interface {
	Get(ctx context.Context, userID string) *model.Profile
	Upsert(ctx context.Context, p *model.Profile) error
}

// Syncer orchestrates per-user commit synchronization. It reacts to
// session-change events from the auth hub and resyncs every signed-in user
// on an interval.
type Syncer struct {
	commits   CommitWriter
	profiles  ProfileDirectory
	newSource func(userID string) ActivitySource
	hub       *auth.Hub
	logger    *slog.Logger
	lookback  time.Duration
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	sources map[string]ActivitySource
	active  map[string]struct{}
}

// NewSyncer creates a Syncer. newSource builds an ActivitySource bound to
// one identity's token; sources are created lazily and reused.
func NewSyncer(commits CommitWriter, profiles ProfileDirectory, newSource func(userID string) ActivitySource,
	hub *auth.Hub, logger *slog.Logger, lookback, interval time.Duration) *Syncer {
	return &Syncer{
		commits:   commits,
		profiles:  profiles,
		newSource: newSource,
		hub:       hub,
		logger:    logger,
		lookback:  lookback,
		interval:  interval,
		now:       time.Now,
		sources:   make(map[string]ActivitySource),
		active:    make(map[string]struct{}),
	}
}

// SyncCommits pulls the user's push events from the lookback window and
// persists one commit record per embedded commit, relying on the store's
// unique (user, hash) constraint for dedup. The first failure abandons the
// run; rows written before it are kept.
func (s *Syncer) SyncCommits(ctx context.Context, userID string) error {
	logger := s.logger.With("user_id", userID)

	source := s.sourceFor(userID)
	username, err := s.githubUsername(ctx, userID, source)
	if err != nil {
		return err
	}

	since := s.now().Add(-s.lookback)
	events, err := source.ListRecentPushEvents(ctx, username, since)
	if err != nil {
		return err
	}
	logger.Info("Fetched push events", "count", len(events), "since", since.Format(time.RFC3339))

	var inserted int
	for _, event := range events {
		committedAt := event.CreatedAt
		if committedAt.IsZero() {
			committedAt = s.now()
		}
		for _, commit := range event.Commits {
			rec := model.CommitRecord{
				ID:          uuid.NewString(),
				UserID:      userID,
				RepoName:    event.RepoName,
				CommitHash:  commit.Hash,
				Message:     messageOrNil(commit.Message),
				CommittedAt: committedAt,
			}
			if err := s.commits.Insert(ctx, rec); err != nil {
				logger.Error("Commit sync aborted; earlier rows are kept", "inserted", inserted, "error", err)
				return err
			}
			inserted++
		}
	}

	logger.Info("Commit sync finished", "inserted", inserted)
	return nil
}

// Run consumes session events and drives the interval resync loop until the
// context is canceled.
func (s *Syncer) Run(ctx context.Context) {
	s.logger.Info("Starting syncer", "interval", s.interval.String(), "concurrency", concurrency)
	events := s.hub.Subscribe()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			s.handleSessionEvent(ctx, event)
		case <-ticker.C:
			s.resyncActive(ctx)
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

func (s *Syncer) handleSessionEvent(ctx context.Context, event auth.Event) {
	logger := s.logger.With("user_id", event.UserID, "event", string(event.Kind))

	switch event.Kind {
	case auth.SignedOut:
		s.mu.Lock()
		delete(s.active, event.UserID)
		delete(s.sources, event.UserID)
		s.mu.Unlock()
		logger.Info("Dropped user from resync set")
		return
	case auth.TokenRefreshed:
		if err := s.sourceFor(event.UserID).Refresh(ctx); err != nil {
			logger.Error("Failed to rebind activity source", "error", err)
		}
	case auth.SignedIn:
	default:
		return
	}

	s.mu.Lock()
	s.active[event.UserID] = struct{}{}
	s.mu.Unlock()

	if err := s.SyncCommits(ctx, event.UserID); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Session-triggered sync failed", "error", err)
	}
}

// resyncActive re-runs SyncCommits for every signed-in user with bounded
// concurrency.
func (s *Syncer) resyncActive(ctx context.Context) {
	s.mu.Lock()
	users := make([]string, 0, len(s.active))
	for userID := range s.active {
		users = append(users, userID)
	}
	s.mu.Unlock()
	if len(users) == 0 {
		return
	}

	s.logger.Info("Starting resync pass", "users", len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, userID := range users {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := s.SyncCommits(gctx, userID)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Failed to resync user", "user_id", userID, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	s.logger.Info("Resync pass finished")
}

func (s *Syncer) sourceFor(userID string) ActivitySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	source, ok := s.sources[userID]
	if !ok {
		source = s.newSource(userID)
		s.sources[userID] = source
	}
	return source
}

// githubUsername resolves the user's GitHub login from their profile,
// fetching and provisioning the profile on first use.
func (s *Syncer) githubUsername(ctx context.Context, userID string, source ActivitySource) (string, error) {
	if p := s.profiles.Get(ctx, userID); p != nil && p.GithubUsername != nil && *p.GithubUsername != "" {
		return *p.GithubUsername, nil
	}

	fetched, err := source.GetAuthenticatedProfile(ctx)
	if err != nil {
		return "", err
	}
	fetched.UserID = userID
	if err := s.profiles.Upsert(ctx, fetched); err != nil {
		return "", err
	}
	if fetched.GithubUsername == nil || *fetched.GithubUsername == "" {
		return "", fmt.Errorf("authenticated profile for user %s carries no github username", userID)
	}
	return *fetched.GithubUsername, nil
}

func messageOrNil(message string) *string {
	if message == "" {
		return nil
	}
	return &message
}
