package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lectopus/internal/platform/crypto"
)

// Session is the result of a successful sign-in.
type Session struct {
	User        User      `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Service struct {
	repo      Repository
	blacklist Blacklist
	secret    string
	ttl       time.Duration
	logger    *slog.Logger
}

func NewService(repo Repository, blacklist Blacklist, secret string, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, blacklist: blacklist, secret: secret, ttl: ttl, logger: logger}
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (Session, error) {
	email = normalizeEmail(email)

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, ErrAlreadyExists
	case !errors.Is(err, ErrNotFound):
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		return Session{}, err
	}
	s.logger.Info("account created", "user_id", u.ID)

	return s.issue(*u)
}

// SignIn checks credentials and issues an access token.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrUnauthorized
	}
	return s.issue(u)
}

// SignOut revokes token until it would have expired.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrUnauthorized
	}
	return s.blacklist.Add(ctx, claims.ID, claims.UserID(), claims.Expiry())
}

func (s *Service) Current(ctx context.Context, userID string) (User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Authenticate resolves a bearer token to its user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return "", ErrUnauthorized
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return "", ErrUnauthorized
	}
	return claims.UserID(), nil
}

func (s *Service) issue(u User) (Session, error) {
	token, _, err := crypto.GenerateToken(s.secret, u.ID, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{
		User:        u,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(s.ttl),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
