package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
	"github.com/tubehub/api/internal/pkg/metrics"
)

const minPasswordLength = 8

// LoginThrottle abstracts the failed-login counter (Redis).
type LoginThrottle interface {
	Allow(ctx context.Context, identifier string) (bool, error)
	Fail(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// AuthOptions tunes optional behaviour of AuthService.
type AuthOptions struct {
	// UnifyLoginErrors reports unknown accounts as invalid credentials
	// instead of not found.
	UnifyLoginErrors bool
	Throttle         LoginThrottle
	Audit            ports.AuditRecorder
	BcryptCost       int
}

// AuthService implements the session lifecycle: register, login, refresh,
// logout and password changes.
type AuthService struct {
	repo   ports.CredentialStore
	tokens *TokenIssuer
	opts   AuthOptions
	log    zerolog.Logger
}

func NewAuthService(repo ports.CredentialStore, tokens *TokenIssuer, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{repo: repo, tokens: tokens, opts: opts, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := domain.NormalizeIdentifier(in.Username)
	email := domain.NormalizeIdentifier(in.Email)
	if username == "" || email == "" || in.FullName == "" || in.Password == "" {
		return nil, domain.Validation("All fields are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Validation("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, domain.Internal("Failed to create user", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:             username,
		Email:                email,
		FullName:             in.FullName,
		PasswordHash:         string(hash),
		WatchHistory:         []string{},
		ChannelTags:          []string{},
		NotificationSettings: domain.DefaultNotificationSettings(),
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		return nil, err
	}

	s.record(domain.AuthEvent{Type: domain.EventRegister, UserID: created.ID})
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	username := domain.NormalizeIdentifier(in.Username)
	email := domain.NormalizeIdentifier(in.Email)
	if username == "" && email == "" {
		return nil, domain.Validation("Email or username is required")
	}
	if in.Password == "" {
		return nil, domain.Validation("Password is required")
	}

	identifier := email
	if identifier == "" {
		identifier = username
	}

	identifiers := loginIdentifiers(username, email)
	if s.throttled(ctx, identifiers...) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.failLogin(ctx, "", identifier, identifiers, "unknown_user")
			if s.opts.UnifyLoginErrors {
				return nil, domain.ErrInvalidCredentials
			}
		}
		return nil, err
	}

	// Whatever identifier matched, failures against a known account share
	// one counter.
	accountKey := accountThrottleKey(user.ID)
	if s.throttled(ctx, accountKey) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		s.failLogin(ctx, user.ID, identifier, []string{accountKey}, "bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.opts.Throttle != nil {
		for _, key := range append(identifiers, accountKey) {
			if err := s.opts.Throttle.Reset(ctx, key); err != nil {
				s.log.Warn().Err(err).Msg("failed to reset login throttle")
			}
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.record(domain.AuthEvent{Type: domain.EventLogin, UserID: user.ID})
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{User: user.Public(), Tokens: tokens}, nil
}

// throttled reports whether any of keys is locked out. Throttle errors
// fail open.
func (s *AuthService) throttled(ctx context.Context, keys ...string) bool {
	if s.opts.Throttle == nil {
		return false
	}
	for _, key := range keys {
		allowed, err := s.opts.Throttle.Allow(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
			continue
		}
		if !allowed {
			return true
		}
	}
	return false
}

func (s *AuthService) failLogin(ctx context.Context, userID, identifier string, keys []string, reason string) {
	metrics.LoginsTotal.WithLabelValues(reason).Inc()
	if s.opts.Throttle != nil {
		for _, key := range keys {
			if err := s.opts.Throttle.Fail(ctx, key); err != nil {
				s.log.Warn().Err(err).Msg("failed to count login failure")
			}
		}
	}
	s.record(domain.AuthEvent{Type: domain.EventLoginFailed, UserID: userID, Identifier: identifier, Reason: reason})
}

func accountThrottleKey(userID string) string {
	return "user:" + userID
}

// loginIdentifiers returns the throttle keys for identifiers that do not
// resolve to an account.
func loginIdentifiers(username, email string) []string {
	var keys []string
	if username != "" {
		keys = append(keys, "username:"+username)
	}
	if email != "" {
		keys = append(keys, "email:"+email)
	}
	return keys
}

// Refresh exchanges the presented refresh token for a new pair. Each token
// is good for exactly one exchange.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	if refreshToken == "" {
		metrics.RefreshTotal.WithLabelValues("missing").Inc()
		return ports.TokenPair{}, domain.ErrRefreshTokenRequired
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("invalid").Inc()
		return ports.TokenPair{}, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.RefreshTotal.WithLabelValues("invalid").Inc()
			return ports.TokenPair{}, domain.ErrInvalidRefreshToken
		}
		return ports.TokenPair{}, fmt.Errorf("refresh: load user: %w", err)
	}

	if refreshToken != user.RefreshToken {
		s.reuseDetected(userID)
		return ports.TokenPair{}, domain.ErrRefreshTokenReused
	}

	tokens, err := s.tokens.Rotate(ctx, user, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenReused) {
			// Lost a race with a concurrent exchange of the same token.
			s.reuseDetected(userID)
		} else {
			metrics.RefreshTotal.WithLabelValues("error").Inc()
		}
		return ports.TokenPair{}, err
	}

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	s.record(domain.AuthEvent{Type: domain.EventRefresh, UserID: userID})
	return tokens, nil
}

func (s *AuthService) reuseDetected(userID string) {
	metrics.RefreshTotal.WithLabelValues("reused").Inc()
	s.record(domain.AuthEvent{Type: domain.EventRefreshReuse, UserID: userID})
	s.log.Warn().Str("user_id", userID).Msg("stale refresh token presented")
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	metrics.LogoutsTotal.WithLabelValues(fmt.Sprint(userID != "")).Inc()
	if userID == "" {
		return nil
	}
	if err := s.repo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.record(domain.AuthEvent{Type: domain.EventLogout, UserID: userID})
	return nil
}

func (s *AuthService) LogoutRefreshToken(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return s.Logout(ctx, userID)
	}
	metrics.LogoutsTotal.WithLabelValues("true").Inc()
	cleared, err := s.repo.SwapRefreshToken(ctx, userID, refreshToken, "")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if !cleared {
		s.reuseDetected(userID)
		return nil
	}
	s.record(domain.AuthEvent{Type: domain.EventLogout, UserID: userID})
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return domain.Validation("Old password and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return domain.Validation("Password must be at least 8 characters")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.opts.BcryptCost)
	if err != nil {
		return domain.Internal("Failed to change password", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.record(domain.AuthEvent{Type: domain.EventPasswordChanged, UserID: userID})
	return nil
}

// RevokeSessions drops the user's refresh token so the next refresh fails.
func (s *AuthService) RevokeSessions(ctx context.Context, userID string) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.record(domain.AuthEvent{Type: domain.EventSessionRevoked, UserID: userID})
	return nil
}

func (s *AuthService) record(e domain.AuthEvent) {
	if s.opts.Audit == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	s.opts.Audit.Record(e)
}
