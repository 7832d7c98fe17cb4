package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("abc-123", "DIRECTOR")
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", claims.UserID)
	assert.Equal(t, "DIRECTOR", claims.Role)
	assert.Equal(t, TokenAccess, claims.TokenType)
}

func TestRefreshTokenIsNotAccepted(t *testing.T) {
	refresh, err := GenerateRefreshToken("abc-123", "DIRECTOR")
	require.NoError(t, err)

	// El verificador de acceso rechaza tokens de refresco y viceversa
	_, err = VerifyToken(refresh)
	assert.Error(t, err)

	claims, err := VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, claims.TokenType)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := VerifyToken("no-es-un-token")
	assert.Error(t, err)
}
