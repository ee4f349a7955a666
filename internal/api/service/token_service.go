package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/api/response"

	"go.opentelemetry.io/otel"
)

var tokenTracer = otel.Tracer("service.token")

const (
	// tokenBytes is the entropy width of a bearer token: 16 random bytes,
	// rendered as 32 hex characters.
	tokenBytes = 16

	// maxIssueAttempts bounds the retry loop on token collisions. With 128
	// bits of entropy a single retry should never be needed in practice.
	maxIssueAttempts = 5
)

// TokenService issues and verifies opaque bearer tokens. A user's live
// token is stored on their row; expiry is lazy, checked at verification
// time, and there is no revocation path.
type TokenService interface {
	IssueOrRefresh(ctx context.Context, user *models.User) (string, time.Time, error)
	Verify(ctx context.Context, token string) (*models.User, error)
}

type tokenService struct {
	userRepo      repository.UserRepository
	cache         repository.TokenCache
	ttl           time.Duration
	refreshMargin time.Duration
	now           func() time.Time
}

// NewTokenService creates a new TokenService. ttl is the lifetime of a
// fresh token; refreshMargin is the window before expiration inside which
// a login rotates the token instead of reusing it.
func NewTokenService(userRepo repository.UserRepository, cache repository.TokenCache, ttl, refreshMargin time.Duration) TokenService {
	return &tokenService{
		userRepo:      userRepo,
		cache:         cache,
		ttl:           ttl,
		refreshMargin: refreshMargin,
		now:           time.Now,
	}
}

// IssueOrRefresh returns the user's current token if it is still valid
// beyond the refresh margin, and otherwise rotates in a new one.
func (s *tokenService) IssueOrRefresh(ctx context.Context, user *models.User) (string, time.Time, error) {
	ctx, span := tokenTracer.Start(ctx, "TokenService.IssueOrRefresh")
	defer span.End()

	now := s.now().UTC()
	if user.Token.Valid && user.TokenExpiration.Valid && user.TokenExpiration.Time.After(now.Add(s.refreshMargin)) {
		return user.Token.String, user.TokenExpiration.Time, nil
	}

	expiration := now.Add(s.ttl)
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		token, err := generateToken()
		if err != nil {
			return "", time.Time{}, err
		}

		if err := s.userRepo.SetToken(ctx, user.ID, token, expiration); err != nil {
			if repository.IsUniqueViolation(err) {
				continue
			}
			return "", time.Time{}, err
		}

		// Best effort: drop the dethroned token and cache the new one.
		// The store remains authoritative if redis is unavailable.
		if user.Token.Valid {
			if err := s.cache.Delete(ctx, user.Token.String); err != nil {
				slog.WarnContext(ctx, "failed to evict rotated token from cache", "error", err)
			}
		}
		if err := s.cache.Set(ctx, token, user.ID, expiration.Sub(now)); err != nil {
			slog.WarnContext(ctx, "failed to cache issued token", "error", err)
		}

		user.Token.String = token
		user.Token.Valid = true
		user.TokenExpiration.Time = expiration
		user.TokenExpiration.Valid = true
		return token, expiration, nil
	}

	return "", time.Time{}, fmt.Errorf("failed to issue token after %d attempts", maxIssueAttempts)
}

// Verify resolves a bearer token to its user. It rejects unknown tokens
// and tokens past their expiration instant.
func (s *tokenService) Verify(ctx context.Context, token string) (*models.User, error) {
	ctx, span := tokenTracer.Start(ctx, "TokenService.Verify")
	defer span.End()

	if token == "" {
		return nil, response.ErrInvalidToken
	}

	user, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Token.Valid || user.Token.String != token {
		return nil, response.ErrInvalidToken
	}
	if !user.TokenExpiration.Valid || !user.TokenExpiration.Time.After(s.now().UTC()) {
		return nil, response.ErrInvalidToken
	}
	return user, nil
}

// lookup tries the cache first and falls back to the token-indexed query.
// The caller re-checks the token and expiration against the row, so a
// stale cache entry can never extend a token's life.
func (s *tokenService) lookup(ctx context.Context, token string) (*models.User, error) {
	userID, ok, err := s.cache.Get(ctx, token)
	if err != nil {
		slog.WarnContext(ctx, "token cache lookup failed", "error", err)
	} else if ok {
		return s.userRepo.GetByID(ctx, userID)
	}

	user, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user != nil && user.TokenExpiration.Valid && user.TokenExpiration.Time.After(s.now().UTC()) {
		if err := s.cache.Set(ctx, token, user.ID, user.TokenExpiration.Time.Sub(s.now().UTC())); err != nil {
			slog.WarnContext(ctx, "failed to cache verified token", "error", err)
		}
	}
	return user, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
