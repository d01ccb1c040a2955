package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-for-access-tokens",
		RefreshSecret:          "test-secret-key-for-refresh-tokens",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "resolvd-test",
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair("admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "resolvd-test", claims.Issuer)

	refreshClaims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair("admin")
	require.NoError(t, err)

	// Access and refresh tokens are signed with different secrets here,
	// so the cross-validation fails at signature check.
	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	// With a shared secret the type claim is what rejects the swap.
	shared := testJWTConfig()
	shared.RefreshSecret = ""
	sharedSvc := NewJWTService(shared)
	sharedPair, err := sharedSvc.GenerateTokenPair("admin")
	require.NoError(t, err)

	_, err = sharedSvc.ValidateAccessToken(sharedPair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	other := testJWTConfig()
	other.Secret = "a-completely-different-secret-key"
	otherSvc := NewJWTService(other)

	pair, err := otherSvc.GenerateTokenPair("admin")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenExpiration = -time.Minute
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair("admin")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair("admin")
	require.NoError(t, err)

	renewed, err := svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = svc.RefreshTokenPair(pair.AccessToken)
	assert.Error(t, err, "access token must not be usable for refresh")
}
