package auth

import (
	"context"
	"sync"

	"devwell-dashboard/internal/apperr"
)

// EventKind classifies a session-change notification.
type EventKind string

const (
	SignedIn       EventKind = "signed_in"
	SignedOut      EventKind = "signed_out"
	TokenRefreshed EventKind = "token_refreshed"
)

// Event is one session-change notification.
type Event struct {
	Kind   EventKind
	UserID string
}

// Hub tracks which identities currently hold a session and publishes
// session-change events to subscribers. The HTTP middleware calls Observe on
// every authenticated request; the syncer subscribes.
type Hub struct {
	mu     sync.Mutex
	tokens map[string]string // userID -> last seen provider token
	subs   []chan Event
}

func NewHub() *Hub {
	return &Hub{tokens: make(map[string]string)}
}

// Subscribe returns a channel of session events. Delivery is best-effort: a
// subscriber that falls behind misses events rather than blocking requests.
func (h *Hub) Subscribe() <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, 16)
	h.subs = append(h.subs, ch)
	return ch
}

// Observe records a session sighting. The first sighting of an identity
// publishes SignedIn; a sighting with a different provider token publishes
// TokenRefreshed.
func (h *Hub) Observe(s *Session) {
	h.mu.Lock()
	prev, seen := h.tokens[s.UserID]
	h.tokens[s.UserID] = s.GithubToken
	h.mu.Unlock()

	switch {
	case !seen:
		h.publish(Event{Kind: SignedIn, UserID: s.UserID})
	case prev != s.GithubToken:
		h.publish(Event{Kind: TokenRefreshed, UserID: s.UserID})
	}
}

// SignOut drops the identity's session state and publishes SignedOut.
func (h *Hub) SignOut(userID string) {
	h.mu.Lock()
	_, seen := h.tokens[userID]
	delete(h.tokens, userID)
	h.mu.Unlock()

	if seen {
		h.publish(Event{Kind: SignedOut, UserID: userID})
	}
}

func (h *Hub) publish(e Event) {
	h.mu.Lock()
	subs := make([]chan Event, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}

type hubTokenProvider struct {
	hub    *Hub
	userID string
}

func (p hubTokenProvider) Token(ctx context.Context) (string, error) {
	p.hub.mu.Lock()
	tok, ok := p.hub.tokens[p.userID]
	p.hub.mu.Unlock()
	if !ok || tok == "" {
		return "", apperr.ErrNoToken
	}
	return tok, nil
}

// Provider returns a TokenProvider that reads the identity's most recently
// observed provider token.
func (h *Hub) Provider(userID string) TokenProvider {
	return hubTokenProvider{hub: h, userID: userID}
}
