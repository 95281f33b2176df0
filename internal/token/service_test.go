package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmelnikov/authcove/internal/cache"
	"github.com/nmelnikov/authcove/internal/config"
	"github.com/nmelnikov/authcove/internal/users"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, store cache.Store) *Service {
	t.Helper()
	if store == nil {
		store = cache.NewMemory()
	}
	cfg := &config.TokenConfig{
		Secret:     testSecret,
		Issuer:     "authcove-test",
		AccessTTL:  config.Duration(15 * time.Minute),
		RefreshTTL: config.Duration(4 * time.Hour),
	}
	return NewService(cfg, store, nil, nil)
}

func testUser() *users.User {
	return &users.User{ID: 42, Email: "alice@example.com", Active: true}
}

// brokenStore simulates an unreachable cache backend.
type brokenStore struct{}

var errStoreDown = errors.New("connection refused")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (brokenStore) Delete(context.Context, string) error        { return errStoreDown }
func (brokenStore) Exists(context.Context, string) (bool, error) { return false, errStoreDown }
func (brokenStore) Close() error                                 { return nil }

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	user := testUser()

	raw, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.VerifyAccessToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, KindAccess, claims.Kind)
}

func TestVerifyAccessTokenRejections(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	otherSvc := newTestService(t, nil)
	otherSvc.secret = []byte("ffffffffffffffffffffffffffffffff")

	validToken, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	foreignToken, err := otherSvc.IssueAccessToken(testUser())
	require.NoError(t, err)

	expiredSvc := newTestService(t, nil)
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expiredSvc.IssueAccessToken(testUser())
	require.NoError(t, err)

	refreshToken, err := svc.IssueRefreshToken(context.Background(), testUser())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: validToken, wantErr: nil},
		{name: "garbage", token: "not-a-token", wantErr: ErrTokenMalformed},
		{name: "empty", token: "", wantErr: ErrTokenMalformed},
		{name: "wrong secret", token: foreignToken, wantErr: ErrTokenSignatureInvalid},
		{name: "expired", token: expiredToken, wantErr: ErrTokenExpired},
		{name: "refresh token presented as access", token: refreshToken, wantErr: ErrTokenKindMismatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.VerifyAccessToken(context.Background(), tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpiredBeatsRevoked(t *testing.T) {
	t.Parallel()

	// An expired token reports expiry even if it was also revoked; the
	// pipeline stops at the first failing stage.
	svc := newTestService(t, nil)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	raw, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	raw, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(context.Background(), raw)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAccessToken(context.Background(), raw))

	_, err = svc.VerifyAccessToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking again is harmless.
	require.NoError(t, svc.RevokeAccessToken(context.Background(), raw))
}

func TestRevokeAccessTokenExpiredIsNoop(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	live := newTestService(t, nil)
	live.secret = []byte(testSecret)
	assert.NoError(t, live.RevokeAccessToken(context.Background(), raw))
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	user := testUser()

	raw, err := svc.IssueRefreshToken(context.Background(), user)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, KindRefresh, claims.Kind)
}

func TestRefreshRotationInvalidatesPrevious(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	user := testUser()

	first, err := svc.IssueRefreshToken(context.Background(), user)
	require.NoError(t, err)
	second, err := svc.IssueRefreshToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.VerifyRefreshToken(context.Background(), second)
	assert.NoError(t, err)

	_, err = svc.VerifyRefreshToken(context.Background(), first)
	assert.ErrorIs(t, err, ErrRefreshNotCurrent)
}

func TestRevokeRefreshToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	user := testUser()

	raw, err := svc.IssueRefreshToken(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRefreshToken(context.Background(), user.ID))

	_, err = svc.VerifyRefreshToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrRefreshNotCurrent)
}

func TestRefreshTokensAreScopedPerUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	alice := &users.User{ID: 1, Email: "alice@example.com"}
	bob := &users.User{ID: 2, Email: "bob@example.com"}

	aliceToken, err := svc.IssueRefreshToken(context.Background(), alice)
	require.NoError(t, err)
	_, err = svc.IssueRefreshToken(context.Background(), bob)
	require.NoError(t, err)

	// Bob's issuance must not disturb Alice's active record.
	_, err = svc.VerifyRefreshToken(context.Background(), aliceToken)
	assert.NoError(t, err)
}

func TestVerificationFailsClosedWhenStoreDown(t *testing.T) {
	t.Parallel()

	healthy := newTestService(t, nil)
	accessToken, err := healthy.IssueAccessToken(testUser())
	require.NoError(t, err)
	refreshToken, err := healthy.IssueRefreshToken(context.Background(), testUser())
	require.NoError(t, err)

	down := newTestService(t, brokenStore{})

	_, err = down.VerifyAccessToken(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrVerificationUnavailable)

	_, err = down.VerifyRefreshToken(context.Background(), refreshToken)
	assert.ErrorIs(t, err, ErrVerificationUnavailable)

	err = down.RevokeAccessToken(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrVerificationUnavailable)

	_, err = down.IssueRefreshToken(context.Background(), testUser())
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}

func TestHashTokenStableAndDistinct(t *testing.T) {
	t.Parallel()

	assert.Equal(t, hashToken("abc"), hashToken("abc"))
	assert.NotEqual(t, hashToken("abc"), hashToken("abd"))
	assert.Len(t, hashToken("abc"), 64)
}
