// Package github wraps the hosting provider's REST API for the
// authenticated identity's activity feed and profile.
package github

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"devwell-dashboard/internal/apperr"
	"devwell-dashboard/internal/auth"
	"devwell-dashboard/internal/model"
)

const eventsPerPage = 100

// Client is a wrapper around the go-github client. The underlying REST
// client is bound lazily to whatever token the TokenProvider currently
// holds; Initialize is a no-op while a binding exists.
type Client struct {
	tokens  auth.TokenProvider
	logger  *slog.Logger
	baseURL string

	mu sync.Mutex
	gh *github.Client
}

// NewClient creates a Client for one identity's token provider.
func NewClient(tokens auth.TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		tokens: tokens,
		logger: logger,
	}
}

// WithBaseURL points the client at a non-public API endpoint (GitHub
// Enterprise or a test server). Must be called before the first Initialize.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Initialize binds a REST client to the current token. It fails with
// apperr.ErrNoToken when the provider has no token, and is idempotent while
// a token remains bound.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gh != nil {
		return nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))
	if c.baseURL != "" {
		gh, err = gh.WithEnterpriseURLs(c.baseURL, c.baseURL)
		if err != nil {
			return &apperr.FetchError{Op: "configure base url", Err: err}
		}
	}
	c.gh = gh
	return nil
}

// Refresh clears the bound client and re-runs Initialize. Used after an
// external token rotation.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.gh = nil
	c.mu.Unlock()
	return c.Initialize(ctx)
}

func (c *Client) client(ctx context.Context) (*github.Client, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gh, nil
}

// ListRecentPushEvents fetches up to 100 of the identity's most recent
// activity events and filters them down to push events since the given time
// that carry a non-empty commit list. It does not retry and does not
// paginate beyond the first page.
func (c *Client) ListRecentPushEvents(ctx context.Context, username string, since time.Time) ([]model.PushEvent, error) {
	gh, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetching activity events", "username", username, "since", since.Format(time.RFC3339))
	events, _, err := gh.Activity.ListEventsPerformedByUser(ctx, username, false, &github.ListOptions{
		PerPage: eventsPerPage,
	})
	if err != nil {
		return nil, &apperr.FetchError{Op: "list events", Err: err}
	}

	var pushes []model.PushEvent
	for _, ev := range events {
		if ev.GetType() != "PushEvent" || ev.GetCreatedAt().Time.Before(since) {
			continue
		}
		payload, err := ev.ParsePayload()
		if err != nil {
			c.logger.Warn("Skipping undecodable push event", "event_id", ev.GetID(), "error", err)
			continue
		}
		push, ok := payload.(*github.PushEvent)
		if !ok || len(push.Commits) == 0 {
			continue
		}

		pe := model.PushEvent{
			RepoName:  ev.GetRepo().GetName(),
			CreatedAt: ev.GetCreatedAt().Time,
		}
		for _, commit := range push.Commits {
			hash := commit.GetSHA()
			if hash == "" {
				hash = commit.GetID()
			}
			pe.Commits = append(pe.Commits, model.PushCommit{
				Hash:    hash,
				Message: commit.GetMessage(),
			})
		}
		pushes = append(pushes, pe)
	}

	return pushes, nil
}

// GetAuthenticatedProfile fetches the calling identity's public profile.
func (c *Client) GetAuthenticatedProfile(ctx context.Context) (*model.Profile, error) {
	gh, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	user, _, err := gh.Users.Get(ctx, "")
	if err != nil {
		return nil, &apperr.FetchError{Op: "get authenticated user", Err: err}
	}

	return &model.Profile{
		GithubUsername: user.Login,
		DisplayName:    user.Name,
		AvatarURL:      user.AvatarURL,
	}, nil
}
