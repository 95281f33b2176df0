// Package token issues, verifies, and revokes the JWT pair that drives
// session lifecycle.
//
// Verification is a fixed pipeline: parse, signature, expiry, revocation
// state. Each stage rejects with its own sentinel and short-circuits the
// rest. Revocation state lives in the cache store; when that store cannot be
// read the pipeline fails closed with ErrVerificationUnavailable rather than
// letting a possibly revoked token through.
package token

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nmelnikov/authcove/internal/cache"
	"github.com/nmelnikov/authcove/internal/config"
	"github.com/nmelnikov/authcove/internal/observability"
	"github.com/nmelnikov/authcove/internal/users"
)

// blacklistMarker is the value stored under a blacklist key. Presence of the
// key is what matters; the value is never inspected.
const blacklistMarker = "revoked"

// Service mints and verifies tokens and tracks their revocation state.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      cache.Store
	logger     observability.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewService wires a token service from configuration.
func NewService(cfg *config.TokenConfig, store cache.Store,
	logger observability.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Service{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL.Duration(),
		refreshTTL: cfg.RefreshTTL.Duration(),
		store:      store,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// hashToken derives the cache key material for a raw token. Hashing keeps
// raw bearer tokens out of the cache backend.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func blacklistKey(tokenHash string) string {
	return "blacklist:" + tokenHash
}

func refreshKey(userID int64) string {
	return fmt.Sprintf("refresh:%d", userID)
}

func (s *Service) sign(user *users.User, kind Kind, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return raw, nil
}

// IssueAccessToken mints a short-lived access token for the user.
func (s *Service) IssueAccessToken(user *users.User) (string, error) {
	raw, err := s.sign(user, KindAccess, s.accessTTL)
	if err != nil {
		return "", err
	}
	s.metrics.TokensIssued.WithLabelValues(string(KindAccess)).Inc()
	return raw, nil
}

// IssueRefreshToken mints a refresh token and records its hash as the single
// active refresh token for the user. Issuing a new one overwrites the
// previous record, so at most one refresh token per user is ever accepted.
// The record write is required: a refresh token whose hash was never stored
// can never be redeemed.
func (s *Service) IssueRefreshToken(ctx context.Context, user *users.User) (string, error) {
	raw, err := s.sign(user, KindRefresh, s.refreshTTL)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, refreshKey(user.ID), []byte(hashToken(raw)), s.refreshTTL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	s.metrics.TokensIssued.WithLabelValues(string(KindRefresh)).Inc()
	return raw, nil
}

// parse validates structure, signature, and expiry, then checks the token is
// of the expected kind.
func (s *Service) parse(raw string, kind Kind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}

	if claims.Kind != kind {
		return nil, ErrTokenKindMismatch
	}
	return claims, nil
}

// checkBlacklist rejects tokens whose hash is on the blacklist. An
// unreadable blacklist rejects too.
func (s *Service) checkBlacklist(ctx context.Context, raw string) error {
	revoked, err := s.store.Exists(ctx, blacklistKey(hashToken(raw)))
	if err != nil {
		s.logger.Error("blacklist lookup failed, rejecting token",
			observability.Error(err))
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *Service) observeVerification(kind Kind, err error) {
	outcome := "valid"
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenExpired):
		outcome = "expired"
	case errors.Is(err, ErrTokenRevoked):
		outcome = "revoked"
	case errors.Is(err, ErrTokenSignatureInvalid):
		outcome = "signature_invalid"
	case errors.Is(err, ErrVerificationUnavailable):
		outcome = "unavailable"
	default:
		outcome = "malformed"
	}
	s.metrics.TokenVerifications.WithLabelValues(string(kind), outcome).Inc()
}

// VerifyAccessToken runs the full verification pipeline on an access token.
func (s *Service) VerifyAccessToken(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.verifyAccessToken(ctx, raw)
	s.observeVerification(KindAccess, err)
	return claims, err
}

func (s *Service) verifyAccessToken(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.parse(raw, KindAccess)
	if err != nil {
		return nil, err
	}
	if err := s.checkBlacklist(ctx, raw); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken runs the verification pipeline on a refresh token and
// additionally requires it to match the single active record for its user.
func (s *Service) VerifyRefreshToken(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.verifyRefreshToken(ctx, raw)
	s.observeVerification(KindRefresh, err)
	return claims, err
}

func (s *Service) verifyRefreshToken(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.parse(raw, KindRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkBlacklist(ctx, raw); err != nil {
		return nil, err
	}

	stored, err := s.store.Get(ctx, refreshKey(claims.UserID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrRefreshNotCurrent
		}
		s.logger.Error("refresh record lookup failed, rejecting token",
			observability.Int64("userId", claims.UserID),
			observability.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	if subtle.ConstantTimeCompare(stored, []byte(hashToken(raw))) != 1 {
		return nil, ErrRefreshNotCurrent
	}
	return claims, nil
}

// RevokeAccessToken blacklists an access token for the remainder of its
// natural lifetime. Once the token would have expired anyway, the blacklist
// entry lapses with it. Revoking an already expired token is a no-op.
func (s *Service) RevokeAccessToken(ctx context.Context, raw string) error {
	claims, err := s.parse(raw, KindAccess)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return err
	}

	if claims.ExpiresAt == nil {
		return ErrTokenMalformed
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}

	if err := s.store.Set(ctx, blacklistKey(hashToken(raw)), []byte(blacklistMarker), remaining); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	s.logger.Debug("access token revoked",
		observability.Int64("userId", claims.UserID),
		observability.Duration("remaining", remaining))
	return nil
}

// RevokeRefreshToken deletes the active refresh record for a user, ending
// their ability to mint new access tokens without re-authenticating.
func (s *Service) RevokeRefreshToken(ctx context.Context, userID int64) error {
	if err := s.store.Delete(ctx, refreshKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return nil
}
