package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tubehub/api/internal/core/domain"
	"github.com/tubehub/api/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 10 * 24 * time.Hour
)

// TokenConfig holds the two independent signing secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type accessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenIssuer mints access/refresh pairs and keeps the stored refresh token
// in step with what it hands out.
type TokenIssuer struct {
	store ports.RefreshTokenStore
	cfg   TokenConfig
	now   func() time.Time
}

func NewTokenIssuer(store ports.RefreshTokenStore, cfg TokenConfig) *TokenIssuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{store: store, cfg: cfg, now: time.Now}
}

// Issue mints a pair and overwrites the user's stored refresh token. No
// tokens are returned unless the write succeeded.
func (t *TokenIssuer) Issue(ctx context.Context, user *domain.User) (ports.TokenPair, error) {
	pair, err := t.mint(user)
	if err != nil {
		return ports.TokenPair{}, domain.ErrTokenIssuance.Wrap(err)
	}
	if err := t.store.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return ports.TokenPair{}, domain.ErrTokenIssuance.Wrap(fmt.Errorf("persist refresh token: %w", err))
	}
	return pair, nil
}

// Rotate mints a pair and stores its refresh token in place of presented.
// If presented is no longer the stored value the exchange is refused and
// the stored token is left as is.
func (t *TokenIssuer) Rotate(ctx context.Context, user *domain.User, presented string) (ports.TokenPair, error) {
	pair, err := t.mint(user)
	if err != nil {
		return ports.TokenPair{}, domain.ErrTokenIssuance.Wrap(err)
	}
	swapped, err := t.store.SwapRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return ports.TokenPair{}, domain.ErrTokenIssuance.Wrap(fmt.Errorf("rotate refresh token: %w", err))
	}
	if !swapped {
		return ports.TokenPair{}, domain.ErrRefreshTokenReused
	}
	return pair, nil
}

func (t *TokenIssuer) mint(user *domain.User) (ports.TokenPair, error) {
	now := t.now().UTC()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
		},
	})
	accessToken, err := access.SignedString([]byte(t.cfg.AccessSecret))
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
		},
	})
	refreshToken, err := refresh.SignedString([]byte(t.cfg.RefreshSecret))
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return ports.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess checks signature and expiry of an access token.
func (t *TokenIssuer) VerifyAccess(token string) (*ports.AccessClaims, error) {
	claims := &accessClaims{}
	if _, err := t.parse(token, claims, t.cfg.AccessSecret); err != nil {
		return nil, domain.ErrInvalidAccessToken.Wrap(err)
	}
	if claims.UserID == "" {
		return nil, domain.ErrInvalidAccessToken
	}

	out := &ports.AccessClaims{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// AccessSubject verifies only the signature, so an expired token still
// identifies its user.
func (t *TokenIssuer) AccessSubject(token string) (string, error) {
	claims := &accessClaims{}
	if _, err := t.parse(token, claims, t.cfg.AccessSecret, jwt.WithoutClaimsValidation()); err != nil {
		return "", domain.ErrInvalidAccessToken.Wrap(err)
	}
	if claims.UserID == "" {
		return "", domain.ErrInvalidAccessToken
	}
	return claims.UserID, nil
}

// VerifyRefresh checks a refresh token and returns the user id it names.
func (t *TokenIssuer) VerifyRefresh(token string) (string, error) {
	claims := &refreshClaims{}
	if _, err := t.parse(token, claims, t.cfg.RefreshSecret); err != nil {
		return "", domain.ErrInvalidRefreshToken.Wrap(err)
	}
	if claims.UserID == "" {
		return "", domain.ErrInvalidRefreshToken
	}
	return claims.UserID, nil
}

func (t *TokenIssuer) parse(token string, claims jwt.Claims, secret string, opts ...jwt.ParserOption) (*jwt.Token, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token not valid")
	}
	return parsed, nil
}
