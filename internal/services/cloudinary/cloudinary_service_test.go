package cloudinary

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

func TestUploadParamsSignature(t *testing.T) {
	s := NewCloudinaryService(config.CloudinaryConfig{
		CloudName:    "demo",
		APIKey:       "key",
		APISecret:    "secret",
		UploadFolder: "avatars",
	}, logger.Discard())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	p, err := s.UploadParams("u1")
	require.NoError(t, err)

	assert.Equal(t, "1700000000", p.Timestamp)
	assert.Equal(t, "avatar_u1", p.PublicID)
	assert.Equal(t, "avatars", p.Folder)
	assert.Equal(t, "demo", p.CloudName)

	// подпись Cloudinary: SHA-1 от отсортированных параметров и секрета
	sum := sha1.Sum([]byte("folder=avatars&public_id=avatar_u1&timestamp=1700000000secret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), p.Signature)
}

func TestUploadParamsRequiresConfig(t *testing.T) {
	s := NewCloudinaryService(config.CloudinaryConfig{CloudName: "demo"}, logger.Discard())
	_, err := s.UploadParams("u1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUploadParamsRequiresUser(t *testing.T) {
	s := NewCloudinaryService(config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"}, logger.Discard())
	_, err := s.UploadParams("")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestUploadParamsRoute(t *testing.T) {
	s := NewCloudinaryService(config.CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
	}, logger.Discard())
	jwtService := utils.NewJWTService("test-secret")

	app := fiber.New()
	s.SetupRoutes(app, middleware.AuthMiddleware(jwtService))

	req := httptest.NewRequest(http.MethodGet, "/api/upload/params", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, string(body), "signature")

	userID := uuid.NewString()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/upload/params", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var p UploadParams
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, AvatarPublicID(userID), p.PublicID)
	assert.NotEmpty(t, p.Signature)
}
