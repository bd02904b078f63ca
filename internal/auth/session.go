// Package auth handles the session tokens minted by the external auth
// provider and fans out session-change notifications to subscribers.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"devwell-dashboard/internal/apperr"
)

// Session is the parsed state of one signed-in identity. GithubToken is the
// provider token the auth collaborator embeds in the session; it may be
// empty when the user signed in without linking GitHub.
type Session struct {
	UserID      string
	GithubToken string
	ExpiresAt   time.Time
}

type sessionClaims struct {
	ProviderToken string `json:"provider_token"`
	jwt.RegisteredClaims
}

// Parser validates HS256 session tokens.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates the raw token and extracts the session.
func (p *Parser) Parse(raw string) (*Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("session token has no subject")
	}

	s := &Session{
		UserID:      claims.Subject,
		GithubToken: claims.ProviderToken,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// TokenProvider supplies the current GitHub access token for one identity.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type sessionTokenProvider struct {
	session *Session
}

func (p sessionTokenProvider) Token(ctx context.Context) (string, error) {
	if p.session == nil || p.session.GithubToken == "" {
		return "", apperr.ErrNoToken
	}
	return p.session.GithubToken, nil
}

// ProviderFor returns a TokenProvider backed by an already-parsed session.
func ProviderFor(s *Session) TokenProvider {
	return sessionTokenProvider{session: s}
}
