package services

import (
	"testing"

	"github.com/Rafael-TF/EffiDo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
}

func TestAuthTokenRoundTrip(t *testing.T) {
	setTestSecrets(t)
	jwtService := &JWTService{}

	token, err := jwtService.GenerateAuthToken("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	userID, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", userID)
}

func TestShortAccessTokenRoundTrip(t *testing.T) {
	setTestSecrets(t)
	jwtService := &JWTService{}

	token, err := jwtService.GenerateShortAccessToken("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	userID, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", userID)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	setTestSecrets(t)
	jwtService := &JWTService{}

	refreshToken, err := jwtService.GenerateRefreshToken("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	userID, err := utils.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", userID)

	// A refresh token must not pass as an access token.
	_, err = utils.ValidateToken(refreshToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	setTestSecrets(t)

	_, err := utils.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	setTestSecrets(t)
	jwtService := &JWTService{}

	token, err := jwtService.GenerateAuthToken("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "rotated-secret")
	_, err = utils.ValidateToken(token)
	assert.Error(t, err)
}
