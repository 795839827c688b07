package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtract(t *testing.T) {
	s := NewJWTService("secret")

	token, err := s.GenerateToken("0b5f4c1e-6a55-4b0f-9a83-7cdbf0b4c8e2")
	require.NoError(t, err)

	userID, err := s.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, "0b5f4c1e-6a55-4b0f-9a83-7cdbf0b4c8e2", userID)
}

func TestExtractRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("other").GenerateToken("u1")
	require.NoError(t, err)

	_, err = NewJWTService("secret").ExtractUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractRejectsExpiredToken(t *testing.T) {
	s := NewJWTService("secret")
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := s.GenerateToken("u1")
	require.NoError(t, err)

	_, err = NewJWTService("secret").ExtractUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractRejectsMissingUserID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret").ExtractUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
